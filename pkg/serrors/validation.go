package serrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrValidation = NewError("VALIDATION_FAILED", "validation failed", "Errors.ValidationFailed")

// ValidationErrors maps a struct field name to its failure.
type ValidationErrors map[string]*BaseError

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, v[field].Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return errors.Is(ErrValidation, target)
}

// ProcessValidatorErrors converts validator output into coded errors.
// fieldLocaleKey names the locale key of the field label and may return "".
func ProcessValidatorErrors(errs validator.ValidationErrors, fieldLocaleKey func(field string) string) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = NewError(
			"VALIDATION_"+strings.ToUpper(fe.Tag()),
			fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag()),
			"Validations."+fe.Tag(),
		).WithTemplateData(map[string]string{
			"Field": fieldLocaleKey(fe.Field()),
			"Param": fe.Param(),
		})
	}
	return out
}
