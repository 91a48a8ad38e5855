package services

import (
	"time"

	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/constants"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/models"
)

// nextStatusForProgress applies the progress-driven transition rules:
// 100 always moves an open task to review, and the first nonzero report
// moves a freshly assigned task to in_progress. Anything else leaves the
// status alone — review is only left through a reviewer decision or an
// admin override.
func nextStatusForProgress(current string, progress int) string {
	if progress == 100 {
		return constants.TaskStatusReview
	}
	if current == constants.TaskStatusAssigned && progress > 0 {
		return constants.TaskStatusInProgress
	}
	return current
}

// canOverride reports whether an explicit admin status edit from one stored
// status to another is legal. Reopening a completed task is the only way
// out of the terminal state.
func canOverride(from, to string) bool {
	switch from {
	case constants.TaskStatusReview:
		return to == constants.TaskStatusCompleted || to == constants.TaskStatusInProgress
	case constants.TaskStatusCompleted:
		return to == constants.TaskStatusInProgress
	}
	return false
}

func isStoredStatus(s string) bool {
	switch s {
	case constants.TaskStatusAssigned, constants.TaskStatusInProgress,
		constants.TaskStatusReview, constants.TaskStatusCompleted:
		return true
	}
	return false
}

func isPriority(p string) bool {
	switch p {
	case constants.PriorityLow, constants.PriorityMedium,
		constants.PriorityHigh, constants.PriorityUrgent:
		return true
	}
	return false
}

// isOverdue is the read-time overdue derivation: a pure function of the
// due date, the stored status and the clock. It must run on every read
// path; the persisted deadline_status column is reporting-only.
func isOverdue(t models.Task, now time.Time) bool {
	return t.Status != constants.TaskStatusCompleted && t.DueDate.Before(now)
}

func decorate(t *models.Task, now time.Time) {
	t.Overdue = isOverdue(*t, now)
}
