package department

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/payroll-bot/pkg/serrors"
)

// DefaultEmoji is shown next to departments that have no glyph of their own.
const DefaultEmoji = "🏢"

var (
	ErrDepartmentExists   = serrors.NewError("DEPARTMENT_EXISTS", "department already exists", "Errors.DepartmentExists")
	ErrDepartmentNotFound = serrors.NewError("DEPARTMENT_NOT_FOUND", "department not found", "Errors.DepartmentNotFound")
	ErrEmptyName          = serrors.NewError("DEPARTMENT_EMPTY_NAME", "department name is empty", "Errors.EmptyName")
)

type Department struct {
	ID        int64
	Name      string
	Emoji     string
	CreatedAt time.Time
}

// Label is the menu text for the department, e.g. "🏢 Sales".
func (d Department) Label() string {
	emoji := d.Emoji
	if emoji == "" {
		emoji = DefaultEmoji
	}
	return emoji + " " + d.Name
}

// MatchesLabel reports whether text names this department, with or without its glyph.
func (d Department) MatchesLabel(text string) bool {
	text = strings.TrimSpace(text)
	if text == d.Label() {
		return true
	}
	if d.Emoji != "" {
		text = strings.TrimSpace(strings.TrimPrefix(text, d.Emoji))
	}
	text = strings.TrimSpace(strings.TrimPrefix(text, DefaultEmoji))
	return strings.EqualFold(text, d.Name)
}

type Repository interface {
	List(ctx context.Context) ([]Department, error)
	GetByID(ctx context.Context, id int64) (Department, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, d Department) (Department, error)
}

type CreatedEvent struct {
	ID         uuid.UUID
	OccurredAt time.Time
	Result     Department
	CreatedBy  int64
}

func NewCreatedEvent(d Department, createdBy int64) *CreatedEvent {
	return &CreatedEvent{
		ID:         uuid.New(),
		OccurredAt: time.Now().UTC(),
		Result:     d,
		CreatedBy:  createdBy,
	}
}
