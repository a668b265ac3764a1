package models

import (
	"encoding/json"
	"time"
)

// Conversation is the stored form of conversation.Context. Flow holds the
// variant named by FlowKind.
type Conversation struct {
	UserID           int64           `json:"user_id"`
	FlowKind         string          `json:"flow_kind,omitempty"`
	Flow             json.RawMessage `json:"flow,omitempty"`
	Retries          int             `json:"retries,omitempty"`
	PinnedDepartment int64           `json:"pinned_department_id,omitempty"`
	PinnedEmployee   int64           `json:"pinned_employee_id,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type AddEmployeeFlow struct {
	Step     string `json:"step"`
	FullName string `json:"full_name,omitempty"`
	Position string `json:"position,omitempty"`
}

type StepOnlyFlow struct {
	Step string `json:"step"`
}

type RecordAccrualFlow struct {
	Step       string `json:"step"`
	Kind       string `json:"kind"`
	EmployeeID int64  `json:"employee_id,omitempty"`
	Amount     string `json:"amount,omitempty"`
}
