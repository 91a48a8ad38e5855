package models

import "time"

// TaskAttachment holds the original file name and the opaque reference
// returned by the file storage collaborator. The blob itself never lives
// in this database.
type TaskAttachment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TaskID     uint      `gorm:"index" json:"task_id"`
	FileName   string    `json:"file_name"`
	StorageRef string    `json:"storage_ref"`
	UploadedBy uint      `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}
