package models

import "time"

// TaskUpdate is one entry in a task's append-only progress ledger.
// CreatedAt is server-assigned; entries are never mutated after insert —
// corrections are new entries.
type TaskUpdate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"index" json:"task_id"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
