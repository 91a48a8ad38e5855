package constants

// Notification event types emitted by the task lifecycle.
const (
	EventAssigned        = "assigned"
	EventProgressUpdated = "progress-updated"
	EventStatusChanged   = "status-changed"
	EventReviewed        = "reviewed"
)

// Audit trail actions.
const (
	AuditTaskCreated        = "task_created"
	AuditProgressRegressed  = "progress_regressed"
	AuditReviewApproved     = "review_approved"
	AuditReviewRejected     = "review_rejected"
	AuditStatusOverridden   = "status_overridden"
	AuditTaskReopened       = "task_reopened"
	AuditTaskDeleted        = "task_deleted"
	AuditAttachmentUploaded = "attachment_uploaded"
)
