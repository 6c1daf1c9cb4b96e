package models

import (
	"encoding/json"
	"time"
)

// ItemStatus queue item lifecycle state
type ItemStatus string

const (
	ItemStatusNew        ItemStatus = "new"
	ItemStatusInProgress ItemStatus = "in_progress"
	ItemStatusFailed     ItemStatus = "failed"
	ItemStatusCompleted  ItemStatus = "completed"
)

// QueueItem work item owned by the work queue
type QueueItem struct {
	ID        string
	Workqueue string
	Reference string
	Status    ItemStatus
	Data      json.RawMessage
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorklistEntry one activity of a named backend worklist
type WorklistEntry struct {
	ID  string
	Raw json.RawMessage
}

// AuditRecord description of a state change made on a citizen's case
type AuditRecord struct {
	CPR     string `json:"cpr"`
	Subject string `json:"subject"`
	Action  string `json:"action"`
}
