package employee

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/payroll-bot/pkg/serrors"
)

func TestParseSelection(t *testing.T) {
	cases := []struct {
		in   string
		want Selection
	}{
		{"12: Ivan Petrov", Selection{ID: 12, Name: "Ivan Petrov"}},
		{"12: Ivan Petrov (Developer)", Selection{ID: 12, Name: "Ivan Petrov"}},
		{"12:Ivan: Jr", Selection{ID: 12, Name: "Ivan: Jr"}},
		{"👤 Ivan Petrov", Selection{Name: "Ivan Petrov"}},
		{"👔  Anna   Smirnova ", Selection{Name: "Anna Smirnova"}},
		{"Note: not an id", Selection{Name: "Note: not an id"}},
		{"-3: negative", Selection{Name: "-3: negative"}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			require.Equal(t, tc.want, ParseSelection(tc.in))
		})
	}
}

func TestEmployee_Labels(t *testing.T) {
	e := Employee{ID: 7, FullName: "Anna", Role: RoleManager, Position: "Lead"}
	require.Equal(t, "👔 Anna", e.Label())
	require.Equal(t, "7: Anna (Lead)", e.QualifiedLabel())
	require.Equal(t, Selection{ID: 7, Name: "Anna"}, ParseSelection(e.QualifiedLabel()))

	e.Role = RoleEmployee
	require.Equal(t, "👤 Anna", e.Label())
}

func TestCreateDTO_Validate(t *testing.T) {
	dto := &CreateDTO{FullName: "  👤 Ivan  Petrov ", Position: "Dev", DepartmentID: 1}
	require.NoError(t, dto.Validate())
	require.Equal(t, "Ivan Petrov", dto.FullName)
	require.Equal(t, RoleEmployee, dto.Role)

	bad := &CreateDTO{Role: "boss", Salary: decimal.NewFromInt(-1)}
	err := bad.Validate()
	require.ErrorIs(t, err, serrors.ErrValidation)

	var verrs serrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Contains(t, verrs, "FullName")
	require.Contains(t, verrs, "Position")
	require.Contains(t, verrs, "DepartmentID")
	require.Contains(t, verrs, "Role")
	require.Contains(t, verrs, "Salary")
}
