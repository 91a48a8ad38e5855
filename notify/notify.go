// Package notify is the core's outbound notification hook. The core emits
// lifecycle events through it; delivery (mail, push, broadcast fan-out) is
// someone else's job.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/models"

	"gorm.io/gorm"
)

// Notifier receives task lifecycle events. Implementations must tolerate
// being called concurrently; callers never retry on failure.
type Notifier interface {
	Emit(ctx context.Context, event string, taskID, recipientID uint, message string) error
}

// DBNotifier enqueues notifications as rows for the delivery service to
// pick up.
type DBNotifier struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewDBNotifier(db *gorm.DB, log *slog.Logger) *DBNotifier {
	return &DBNotifier{db: db, log: log}
}

func (n *DBNotifier) Emit(ctx context.Context, event string, taskID, recipientID uint, message string) error {
	row := models.Notification{
		RecipientID: recipientID,
		TaskID:      taskID,
		Event:       event,
		Message:     message,
	}
	return n.db.WithContext(ctx).Create(&row).Error
}

// EmitAsync fires the hook in the background with a short deadline and logs
// any failure. It never blocks or fails the caller.
func EmitAsync(n Notifier, log *slog.Logger, event string, taskID, recipientID uint, message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := n.Emit(ctx, event, taskID, recipientID, message); err != nil {
			log.Error("notification emit failed",
				"event", event, "task_id", taskID, "recipient_id", recipientID, "error", err)
		}
	}()
}
