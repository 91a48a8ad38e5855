package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/constants"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/models"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/notify"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/storage"

	"gorm.io/gorm"
)

// Actor is the authenticated caller of an operation. Identity and role are
// supplied by the auth middleware and trusted here.
type Actor struct {
	ID   uint
	Role string
}

func (a Actor) IsAdmin() bool { return a.Role == constants.RoleAdmin }

func (a Actor) CanManage() bool {
	return a.Role == constants.RoleAdmin || a.Role == constants.RoleManager
}

// TaskService owns the task lifecycle: creation, the progress ledger, the
// status machine, the review workflow and destructive deletion. Every
// mutation runs inside a per-task lock and a single transaction, so a
// failed operation persists nothing.
type TaskService struct {
	db    *gorm.DB
	log   *slog.Logger
	hook  notify.Notifier
	files storage.FileStore
	locks *taskLocks
}

func NewTaskService(db *gorm.DB, log *slog.Logger, hook notify.Notifier, files storage.FileStore) *TaskService {
	return &TaskService{
		db:    db,
		log:   log,
		hook:  hook,
		files: files,
		locks: newTaskLocks(),
	}
}

type CreateTaskInput struct {
	Title        string
	Description  string
	AssignedToID uint
	Priority     string
	DueDate      time.Time
	Notes        string
}

func (s *TaskService) Create(ctx context.Context, actor Actor, in CreateTaskInput) (models.Task, error) {
	if !actor.CanManage() {
		return models.Task{}, fmt.Errorf("%w: only admins and managers may create tasks", ErrForbidden)
	}
	if strings.TrimSpace(in.Title) == "" {
		return models.Task{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(in.Description) == "" {
		return models.Task{}, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if in.AssignedToID == 0 {
		return models.Task{}, fmt.Errorf("%w: assigned_to_id is required", ErrValidation)
	}
	if in.DueDate.IsZero() {
		return models.Task{}, fmt.Errorf("%w: due_date is required", ErrValidation)
	}
	if in.DueDate.Before(time.Now()) {
		return models.Task{}, fmt.Errorf("%w: due_date must not be in the past", ErrValidation)
	}
	if in.Priority == "" {
		in.Priority = constants.PriorityMedium
	}
	if !isPriority(in.Priority) {
		return models.Task{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, in.Priority)
	}

	var assignee models.User
	if err := s.db.WithContext(ctx).First(&assignee, in.AssignedToID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, fmt.Errorf("%w: assignee %d does not exist", ErrValidation, in.AssignedToID)
		}
		return models.Task{}, err
	}

	task := models.Task{
		Title:        in.Title,
		Description:  in.Description,
		Priority:     in.Priority,
		Status:       constants.TaskStatusAssigned,
		Progress:     0,
		DueDate:      in.DueDate,
		Notes:        in.Notes,
		AssignedToID: in.AssignedToID,
		AssignedByID: actor.ID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		return tx.Create(&models.TaskAudit{
			TaskID:  task.ID,
			Action:  constants.AuditTaskCreated,
			ActorID: actor.ID,
		}).Error
	})
	if err != nil {
		return models.Task{}, err
	}

	notify.EmitAsync(s.hook, s.log, constants.EventAssigned, task.ID, task.AssignedToID,
		fmt.Sprintf("You have been assigned: %s", task.Title))

	decorate(&task, time.Now())
	return task, nil
}

// Get loads a task with its full ledgers and derives the overdue flag.
func (s *TaskService) Get(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).
		Preload("Updates", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("AuditTrail", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, fmt.Errorf("%w: task %d", ErrNotFound, id)
		}
		return models.Task{}, err
	}
	decorate(&task, time.Now())
	return task, nil
}

// ListFilter narrows List; nil fields mean "any". Status may be one of the
// stored statuses or the derived "overdue" view.
type ListFilter struct {
	AssigneeID *uint
	Status     *string
	Priority   *string
}

func (s *TaskService) List(ctx context.Context, f ListFilter) ([]models.Task, error) {
	now := time.Now()

	q := s.db.WithContext(ctx).Model(&models.Task{})
	if f.AssigneeID != nil {
		q = q.Where("assigned_to_id = ?", *f.AssigneeID)
	}
	if f.Priority != nil {
		if !isPriority(*f.Priority) {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, *f.Priority)
		}
		q = q.Where("priority = ?", *f.Priority)
	}
	if f.Status != nil {
		switch {
		case *f.Status == constants.TaskStatusOverdue:
			q = q.Where("status <> ? AND due_date < ?", constants.TaskStatusCompleted, now)
		case isStoredStatus(*f.Status):
			q = q.Where("status = ?", *f.Status)
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *f.Status)
		}
	}

	var tasks []models.Task
	if err := q.Order("created_at DESC, id DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	for i := range tasks {
		decorate(&tasks[i], now)
	}
	return tasks, nil
}

// RecordProgress appends a ledger entry and re-evaluates the status
// machine. The ledger accepts a decreased percentage but flags it in the
// audit trail; regressing after review is a meaningful signal.
func (s *TaskService) RecordProgress(ctx context.Context, taskID uint, actor Actor, progress int, message string) (models.Task, error) {
	if progress < 0 || progress > 100 {
		return models.Task{}, fmt.Errorf("%w: progress must be within [0,100], got %d", ErrValidation, progress)
	}

	unlock := s.locks.lock(taskID)
	defer unlock()

	var (
		task          models.Task
		statusChanged bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
			}
			return err
		}
		if actor.ID != task.AssignedToID {
			return fmt.Errorf("%w: only the assignee may report progress", ErrForbidden)
		}
		if task.Status == constants.TaskStatusCompleted {
			return fmt.Errorf("%w: task is completed", ErrInvalidState)
		}

		if err := tx.Create(&models.TaskUpdate{
			TaskID:   task.ID,
			Progress: progress,
			Message:  message,
		}).Error; err != nil {
			return err
		}

		if progress < task.Progress {
			s.log.Warn("progress regressed",
				"task_id", task.ID, "from", task.Progress, "to", progress, "actor_id", actor.ID)
			if err := tx.Create(&models.TaskAudit{
				TaskID:   task.ID,
				Action:   constants.AuditProgressRegressed,
				ActorID:  actor.ID,
				Comments: fmt.Sprintf("progress dropped from %d to %d", task.Progress, progress),
			}).Error; err != nil {
				return err
			}
		}

		next := nextStatusForProgress(task.Status, progress)
		statusChanged = next != task.Status
		task.Progress = progress
		task.Status = next

		return tx.Model(&models.Task{}).Where("id = ?", task.ID).
			Updates(map[string]any{"progress": task.Progress, "status": task.Status}).Error
	})
	if err != nil {
		return models.Task{}, err
	}

	notify.EmitAsync(s.hook, s.log, constants.EventProgressUpdated, task.ID, task.AssignedByID,
		fmt.Sprintf("%s is now at %d%%", task.Title, progress))
	if statusChanged {
		notify.EmitAsync(s.hook, s.log, constants.EventStatusChanged, task.ID, task.AssignedToID,
			fmt.Sprintf("%s moved to %s", task.Title, task.Status))
	}

	return s.Get(ctx, task.ID)
}

type ReviewInput struct {
	Feedback string
	Rating   *int
	Decision string

	// ResetProgress optionally sets the progress a rejected task falls
	// back to. When nil a rejection forces progress to 99.
	ResetProgress *int
}

// SubmitReview closes out (or sends back) a task sitting in review. On
// rejection the forced progress value is itself appended to the ledger so
// history explains the drop from 100.
func (s *TaskService) SubmitReview(ctx context.Context, taskID uint, reviewer Actor, in ReviewInput) (models.Task, error) {
	if !reviewer.CanManage() {
		return models.Task{}, fmt.Errorf("%w: only admins and managers may review", ErrForbidden)
	}
	if strings.TrimSpace(in.Feedback) == "" {
		return models.Task{}, fmt.Errorf("%w: feedback is required", ErrValidation)
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return models.Task{}, fmt.Errorf("%w: rating must be within [1,5]", ErrValidation)
	}
	if in.Decision != constants.ReviewApprove && in.Decision != constants.ReviewReject {
		return models.Task{}, fmt.Errorf("%w: decision must be approve or reject", ErrValidation)
	}
	if in.ResetProgress != nil && (*in.ResetProgress < 0 || *in.ResetProgress > 99) {
		return models.Task{}, fmt.Errorf("%w: reset progress must be within [0,99]", ErrValidation)
	}

	unlock := s.locks.lock(taskID)
	defer unlock()

	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
			}
			return err
		}
		if task.Status != constants.TaskStatusReview {
			return fmt.Errorf("%w: task is %s, review requires status %s",
				ErrInvalidState, task.Status, constants.TaskStatusReview)
		}

		if err := tx.Create(&models.TaskReview{
			TaskID:       task.ID,
			ReviewedByID: reviewer.ID,
			Feedback:     in.Feedback,
			Rating:       in.Rating,
			Decision:     in.Decision,
		}).Error; err != nil {
			return err
		}

		if in.Decision == constants.ReviewApprove {
			now := time.Now()
			task.Status = constants.TaskStatusCompleted
			task.CompletedAt = &now
			if err := tx.Create(&models.TaskAudit{
				TaskID:   task.ID,
				Action:   constants.AuditReviewApproved,
				ActorID:  reviewer.ID,
				Comments: in.Feedback,
			}).Error; err != nil {
				return err
			}
			return tx.Model(&models.Task{}).Where("id = ?", task.ID).
				Updates(map[string]any{"status": task.Status, "completed_at": task.CompletedAt}).Error
		}

		// Reject: back to in_progress with progress forced below 100.
		forced := 99
		if in.ResetProgress != nil {
			forced = *in.ResetProgress
		}
		task.Status = constants.TaskStatusInProgress
		task.Progress = forced

		if err := tx.Create(&models.TaskUpdate{
			TaskID:   task.ID,
			Progress: forced,
			Message:  "progress reset by review rejection",
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.TaskAudit{
			TaskID:   task.ID,
			Action:   constants.AuditReviewRejected,
			ActorID:  reviewer.ID,
			Comments: in.Feedback,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Task{}).Where("id = ?", task.ID).
			Updates(map[string]any{"status": task.Status, "progress": task.Progress}).Error
	})
	if err != nil {
		return models.Task{}, err
	}

	notify.EmitAsync(s.hook, s.log, constants.EventReviewed, task.ID, task.AssignedToID,
		fmt.Sprintf("%s was %sd by a reviewer", task.Title, in.Decision))

	return s.Get(ctx, task.ID)
}

// OverrideStatus is the audited admin escape hatch: approve from review
// without a review entry, send back from review, or reopen a completed
// task. Any other edit is rejected rather than coerced.
func (s *TaskService) OverrideStatus(ctx context.Context, taskID uint, actor Actor, newStatus, comment string) (models.Task, error) {
	if !actor.IsAdmin() {
		return models.Task{}, fmt.Errorf("%w: only admins may override status", ErrForbidden)
	}
	if !isStoredStatus(newStatus) {
		return models.Task{}, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}

	unlock := s.locks.lock(taskID)
	defer unlock()

	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
			}
			return err
		}
		if !canOverride(task.Status, newStatus) {
			return fmt.Errorf("%w: cannot override %s to %s", ErrInvalidState, task.Status, newStatus)
		}

		reopen := task.Status == constants.TaskStatusCompleted
		updates := map[string]any{"status": newStatus}

		if reopen {
			updates["completed_at"] = nil
			if task.Progress == 100 {
				task.Progress = 99
				updates["progress"] = 99
			}
		}
		if newStatus == constants.TaskStatusCompleted {
			now := time.Now()
			task.CompletedAt = &now
			updates["completed_at"] = task.CompletedAt
		}

		action := constants.AuditStatusOverridden
		if reopen {
			action = constants.AuditTaskReopened
		}
		if err := tx.Create(&models.TaskAudit{
			TaskID:   task.ID,
			Action:   action,
			ActorID:  actor.ID,
			Comments: comment,
		}).Error; err != nil {
			return err
		}

		task.Status = newStatus
		return tx.Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error
	})
	if err != nil {
		return models.Task{}, err
	}

	notify.EmitAsync(s.hook, s.log, constants.EventStatusChanged, task.ID, task.AssignedToID,
		fmt.Sprintf("%s moved to %s", task.Title, task.Status))

	return s.Get(ctx, task.ID)
}

// Delete removes a task and everything hanging off it, including enqueued
// notifications. Admin only; deletion is allowed in any state.
func (s *TaskService) Delete(ctx context.Context, taskID uint, actor Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins may delete tasks", ErrForbidden)
	}

	unlock := s.locks.lock(taskID)
	defer unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
			}
			return err
		}

		for _, m := range []any{
			&models.TaskUpdate{}, &models.TaskReview{}, &models.TaskAttachment{},
			&models.TaskAudit{}, &models.Notification{},
		} {
			if err := tx.Where("task_id = ?", taskID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Task{}, taskID).Error
	})
	if err != nil {
		return err
	}

	s.log.Info("task deleted", "task_id", taskID, "actor_id", actor.ID)
	return nil
}

// AddAttachment stores the blob with the file storage collaborator and
// appends the returned reference. The blob write happens before the lock;
// an orphaned blob on a failed append is logged and left for cleanup.
func (s *TaskService) AddAttachment(ctx context.Context, taskID uint, actor Actor, fileName string, content io.Reader) (models.Task, error) {
	if strings.TrimSpace(fileName) == "" {
		return models.Task{}, fmt.Errorf("%w: file name is required", ErrValidation)
	}

	ref, err := s.files.Save(ctx, fileName, content)
	if err != nil {
		return models.Task{}, fmt.Errorf("store attachment: %w", err)
	}

	unlock := s.locks.lock(taskID)
	defer unlock()

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
			}
			return err
		}
		if actor.ID != task.AssignedToID && !actor.IsAdmin() {
			return fmt.Errorf("%w: only the assignee or an admin may attach files", ErrForbidden)
		}

		if err := tx.Create(&models.TaskAttachment{
			TaskID:     taskID,
			FileName:   fileName,
			StorageRef: ref,
			UploadedBy: actor.ID,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.TaskAudit{
			TaskID:   taskID,
			Action:   constants.AuditAttachmentUploaded,
			ActorID:  actor.ID,
			Comments: fileName,
		}).Error
	})
	if txErr != nil {
		s.log.Warn("attachment row not recorded, blob orphaned", "ref", ref, "error", txErr)
		return models.Task{}, txErr
	}

	return s.Get(ctx, taskID)
}
