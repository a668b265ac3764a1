package department

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDepartment_Label(t *testing.T) {
	require.Equal(t, "🏢 Sales", Department{Name: "Sales"}.Label())
	require.Equal(t, "💻 IT", Department{Name: "IT", Emoji: "💻"}.Label())
}

func TestDepartment_MatchesLabel(t *testing.T) {
	d := Department{Name: "IT", Emoji: "💻"}
	require.True(t, d.MatchesLabel("💻 IT"))
	require.True(t, d.MatchesLabel("it"))
	require.True(t, d.MatchesLabel("🏢 IT"))
	require.False(t, d.MatchesLabel("Sales"))
}
