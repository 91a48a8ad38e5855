package models

import "time"

// TaskReview records one reviewer decision on a task that reached review.
// Rating is optional (1-5 when present). Rows are append-only; history is
// retained across rejections and reopens.
type TaskReview struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TaskID       uint      `gorm:"index" json:"task_id"`
	ReviewedByID uint      `json:"reviewed_by_id"`
	Feedback     string    `json:"feedback"`
	Rating       *int      `json:"rating"`
	Decision     string    `json:"decision"`
	CreatedAt    time.Time `json:"created_at"`
}
