package models

import "time"

// TaskAudit records notable lifecycle events: admin overrides, reopens,
// deletions, and progress regressions.
type TaskAudit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"index" json:"task_id"`
	Action    string    `json:"action"`
	ActorID   uint      `json:"actor_id"`
	Comments  string    `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
}
