package services

import (
	"log/slog"
	"time"

	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/constants"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StartOverdueSweep runs a periodic job that persists the overdue flag
// into deadline_status for reporting queries. The read path derives
// overdue from the due date on every call and does not depend on this.
func StartOverdueSweep(db *gorm.DB, log *slog.Logger, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		res := db.Model(&models.Task{}).
			Where("due_date < ? AND status <> ? AND deadline_status <> ?",
				time.Now(), constants.TaskStatusCompleted, constants.DeadlineOverdue).
			Update("deadline_status", constants.DeadlineOverdue)
		if res.Error != nil {
			log.Error("overdue sweep failed", "error", res.Error)
			return
		}
		if res.RowsAffected > 0 {
			log.Info("overdue sweep marked tasks", "count", res.RowsAffected)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
