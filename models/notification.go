package models

import "time"

// Notification is the row written by the database-backed notification hook.
// Delivery and fan-out happen outside this service; rows are removed when
// their task is deleted.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecipientID uint      `gorm:"index" json:"recipient_id"`
	TaskID      uint      `gorm:"index" json:"task_id"`
	Event       string    `json:"event"`
	Message     string    `json:"message"`
	Read        bool      `gorm:"default:false" json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
