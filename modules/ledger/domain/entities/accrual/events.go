package accrual

import (
	"time"

	"github.com/google/uuid"
)

// RecordedEvent is published after a record has been committed.
type RecordedEvent struct {
	ID         uuid.UUID
	OccurredAt time.Time
	Record     Record
}

func NewRecordedEvent(r Record) *RecordedEvent {
	return &RecordedEvent{ID: uuid.New(), OccurredAt: time.Now().UTC(), Record: r}
}
