package constants

const (
	TaskStatusAssigned   = "assigned"
	TaskStatusInProgress = "in_progress"
	TaskStatusReview     = "review"
	TaskStatusCompleted  = "completed"

	// TaskStatusOverdue is never stored on a task. It is derived from the
	// due date at read time; the optional sweep only persists it into
	// deadline_status for reporting.
	TaskStatusOverdue = "overdue"
)

const (
	DeadlineOnTime  = "on_time"
	DeadlineOverdue = "overdue"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	ReviewApprove = "approve"
	ReviewReject  = "reject"
)
