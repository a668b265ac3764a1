package employee

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/payroll-bot/pkg/constants"
	"github.com/iota-uz/payroll-bot/pkg/serrors"
)

type CreateDTO struct {
	FullName     string          `validate:"required,max=200"`
	Position     string          `validate:"required,max=200"`
	DepartmentID int64           `validate:"gt=0"`
	ExternalID   *int64          `validate:"omitempty,gt=0"`
	Role         Role            `validate:"required,oneof=employee manager"`
	Salary       decimal.Decimal `validate:"-"`
}

func (d *CreateDTO) Normalize() {
	d.FullName = NormalizeName(d.FullName)
	d.Position = strings.Join(strings.Fields(d.Position), " ")
	if d.Role == "" {
		d.Role = RoleEmployee
	}
}

// Validate normalizes d and returns serrors.ValidationErrors on failure.
func (d *CreateDTO) Validate() error {
	d.Normalize()

	errs := make(serrors.ValidationErrors)
	if err := constants.Validate.Struct(d); err != nil {
		var validatorErrs validator.ValidationErrors
		if !errors.As(err, &validatorErrs) {
			return err
		}
		for field, fe := range serrors.ProcessValidatorErrors(validatorErrs, fieldLocaleKey) {
			errs[field] = fe
		}
	}
	if d.Salary.IsNegative() {
		errs["Salary"] = serrors.NewError("VALIDATION_GTE", "Salary must not be negative", "Validations.gte").
			WithTemplateData(map[string]string{"Field": fieldLocaleKey("Salary"), "Param": "0"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (d *CreateDTO) ToEntity() Employee {
	return Employee{
		FullName:     d.FullName,
		ExternalID:   d.ExternalID,
		DepartmentID: d.DepartmentID,
		Role:         d.Role,
		Position:     d.Position,
		Salary:       d.Salary,
		IsActive:     true,
	}
}

func fieldLocaleKey(field string) string {
	switch field {
	case "FullName", "Position", "DepartmentID", "ExternalID", "Role", "Salary":
		return fmt.Sprintf("Employee.Fields.%s", field)
	default:
		return ""
	}
}
