package controllers

import (
	"net/http"
	"strconv"

	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NotificationController is the thin read side of the notification queue:
// callers poll their own notifications and mark them read. Delivery lives
// elsewhere.
type NotificationController struct {
	DB *gorm.DB
}

func (nc *NotificationController) GetNotifications(c *gin.Context) {
	actor := currentActor(c)

	var notifications []models.Notification
	nc.DB.Where("recipient_id = ?", actor.ID).
		Order("created_at DESC, id DESC").
		Find(&notifications)

	c.JSON(http.StatusOK, notifications)
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}

	actor := currentActor(c)

	var notification models.Notification
	if err := nc.DB.First(&notification, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if notification.RecipientID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your notification"})
		return
	}

	notification.Read = true
	nc.DB.Save(&notification)

	c.JSON(http.StatusOK, notification)
}
