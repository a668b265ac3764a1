package services

import (
	"context"
	"io"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/entities/department"
	"github.com/iota-uz/payroll-bot/pkg/serrors"
)

var ErrInvalidSeed = serrors.NewError("SEED_INVALID", "seed file is invalid", "")

// SeedFile is the YAML company structure loaded by `payrollctl seed`.
type SeedFile struct {
	Departments []SeedDepartment `yaml:"departments"`
}

type SeedDepartment struct {
	Name      string         `yaml:"name"`
	Emoji     string         `yaml:"emoji"`
	Employees []SeedEmployee `yaml:"employees"`
}

type SeedEmployee struct {
	FullName   string `yaml:"full_name"`
	Position   string `yaml:"position"`
	Role       string `yaml:"role"`
	Salary     string `yaml:"salary"`
	TelegramID int64  `yaml:"telegram_id"`
}

type SeedResult struct {
	Skipped     bool
	Departments int
	Employees   int
}

func ParseSeedFile(r io.Reader) (SeedFile, error) {
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return SeedFile{}, ErrInvalidSeed.Wrap(err)
	}
	if len(f.Departments) == 0 {
		return SeedFile{}, ErrInvalidSeed
	}
	return f, nil
}

type SeedService struct {
	departments department.Repository
	employees   employee.Repository
	logger      *logrus.Entry
}

func NewSeedService(departments department.Repository, employees employee.Repository, logger *logrus.Logger) *SeedService {
	return &SeedService{
		departments: departments,
		employees:   employees,
		logger:      logger.WithField("component", "seed"),
	}
}

// Seed imports the company structure in one transaction. It is a no-op once any department exists.
func (s *SeedService) Seed(ctx context.Context, f SeedFile) (SeedResult, error) {
	var result SeedResult
	err := inTxFn(ctx, func(txCtx context.Context) error {
		n, err := s.departments.Count(txCtx)
		if err != nil {
			return err
		}
		if n > 0 {
			result.Skipped = true
			return nil
		}
		for _, sd := range f.Departments {
			d, err := s.departments.Create(txCtx, department.Department{Name: sd.Name, Emoji: sd.Emoji})
			if err != nil {
				return err
			}
			result.Departments++
			for _, se := range sd.Employees {
				dto, err := seedEmployeeDTO(d.ID, se)
				if err != nil {
					return err
				}
				if err := dto.Validate(); err != nil {
					return err
				}
				if _, err := s.employees.Create(txCtx, dto.ToEntity()); err != nil {
					return err
				}
				result.Employees++
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	if result.Skipped {
		s.logger.Info("departments already present, seed skipped")
	} else {
		s.logger.WithFields(logrus.Fields{
			"departments": result.Departments,
			"employees":   result.Employees,
		}).Info("company structure imported")
	}
	return result, nil
}

func seedEmployeeDTO(departmentID int64, se SeedEmployee) (*employee.CreateDTO, error) {
	salary := decimal.Zero
	if se.Salary != "" {
		d, err := decimal.NewFromString(se.Salary)
		if err != nil {
			return nil, ErrInvalidSeed.Wrap(err)
		}
		salary = d
	}
	var externalID *int64
	if se.TelegramID != 0 {
		id := se.TelegramID
		externalID = &id
	}
	return &employee.CreateDTO{
		FullName:     se.FullName,
		Position:     se.Position,
		DepartmentID: departmentID,
		ExternalID:   externalID,
		Role:         employee.Role(se.Role),
		Salary:       salary,
	}, nil
}
