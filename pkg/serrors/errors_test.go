package serrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseError_IsMatchesByCode(t *testing.T) {
	sentinel := NewError("PAYROLL_NOT_FOUND", "not found", "Errors.NotFound")

	derived := sentinel.WithTemplateData(map[string]string{"id": "42"})
	require.ErrorIs(t, derived, sentinel)

	wrapped := fmt.Errorf("lookup: %w", derived.Wrap(errors.New("no rows")))
	require.ErrorIs(t, wrapped, sentinel)
	require.Equal(t, "PAYROLL_NOT_FOUND", Code(wrapped))

	other := NewError("PAYROLL_FORBIDDEN", "forbidden", "")
	require.NotErrorIs(t, other, sentinel)
}

func TestBaseError_ErrorIncludesCause(t *testing.T) {
	err := NewError("X", "store failed", "").Wrap(errors.New("connection reset"))
	require.Equal(t, "store failed: connection reset", err.Error())
	require.Equal(t, "store failed", err.Localize(nil))
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		"Name":     NewError("VALIDATION_REQUIRED", "Name is required", ""),
		"Position": NewError("VALIDATION_REQUIRED", "Position is required", ""),
	}
	require.ErrorIs(t, errs, ErrValidation)
	require.Equal(t, "validation failed: Name: Name is required; Position: Position is required", errs.Error())
}
