package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Meta is common to every employee event.
type Meta struct {
	ID         uuid.UUID
	OccurredAt time.Time
	ActorID    int64
}

func newMeta(actorID int64) Meta {
	return Meta{ID: uuid.New(), OccurredAt: time.Now().UTC(), ActorID: actorID}
}

type CreatedEvent struct {
	Meta
	Result Employee
}

type SalaryChangedEvent struct {
	Meta
	EmployeeID int64
	Salary     decimal.Decimal
}

type RoleChangedEvent struct {
	Meta
	EmployeeID int64
	Role       Role
}

type IdentityBoundEvent struct {
	Meta
	EmployeeID int64
	ExternalID int64
}

type DeactivatedEvent struct {
	Meta
	EmployeeID int64
}

func NewCreatedEvent(actorID int64, result Employee) *CreatedEvent {
	return &CreatedEvent{Meta: newMeta(actorID), Result: result}
}

func NewSalaryChangedEvent(actorID, employeeID int64, salary decimal.Decimal) *SalaryChangedEvent {
	return &SalaryChangedEvent{Meta: newMeta(actorID), EmployeeID: employeeID, Salary: salary}
}

func NewRoleChangedEvent(actorID, employeeID int64, role Role) *RoleChangedEvent {
	return &RoleChangedEvent{Meta: newMeta(actorID), EmployeeID: employeeID, Role: role}
}

func NewIdentityBoundEvent(actorID, employeeID, externalID int64) *IdentityBoundEvent {
	return &IdentityBoundEvent{Meta: newMeta(actorID), EmployeeID: employeeID, ExternalID: externalID}
}

func NewDeactivatedEvent(actorID, employeeID int64) *DeactivatedEvent {
	return &DeactivatedEvent{Meta: newMeta(actorID), EmployeeID: employeeID}
}
