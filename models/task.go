package models

import "time"

// Task is the unit of onboarding work assigned to an employee. Status is
// owned by the server-side transition rules in the services package; the
// Overdue field is computed from the due date on every read and never
// written to the database.
type Task struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Priority     string    `gorm:"default:'medium'" json:"priority"`
	Status       string    `gorm:"default:'assigned'" json:"status"`
	Progress     int       `gorm:"default:0" json:"progress"`
	DueDate      time.Time `json:"due_date"`
	Notes        string    `json:"notes"`
	AssignedToID uint      `json:"assigned_to_id"`
	AssignedByID uint      `json:"assigned_by_id"`

	// DeadlineStatus is the persisted snapshot written by the periodic
	// sweep. The read path ignores it and derives Overdue directly.
	DeadlineStatus string     `gorm:"default:'on_time'" json:"deadline_status"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`

	Overdue bool `gorm:"-" json:"overdue"`

	Updates     []TaskUpdate     `json:"updates,omitempty"`
	Reviews     []TaskReview     `json:"reviews,omitempty"`
	Attachments []TaskAttachment `json:"attachments,omitempty"`
	AuditTrail  []TaskAudit      `json:"audit_trail,omitempty"`
}
