package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/services"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TaskController struct {
	DB      *gorm.DB
	Service *services.TaskService
}

func (tc *TaskController) CreateTask(c *gin.Context) {
	var input struct {
		Title        string    `json:"title"`
		Description  string    `json:"description"`
		AssignedToID uint      `json:"assigned_to_id"`
		Priority     string    `json:"priority"`
		DueDate      time.Time `json:"due_date"`
		Notes        string    `json:"notes"`
	}
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := currentActor(c)

	ok, err := utils.CanAssignTask(actor.ID, actor.Role, input.AssignedToID, tc.DB)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Assignee not found"})
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot assign tasks to this user"})
		return
	}

	task, err := tc.Service.Create(c.Request.Context(), actor, services.CreateTaskInput{
		Title:        input.Title,
		Description:  input.Description,
		AssignedToID: input.AssignedToID,
		Priority:     input.Priority,
		DueDate:      input.DueDate,
		Notes:        input.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) GetTasks(c *gin.Context) {
	actor := currentActor(c)

	var filter services.ListFilter
	if v := c.Query("assignee"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee id"})
			return
		}
		u := uint(id)
		filter.AssigneeID = &u
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("priority"); v != "" {
		filter.Priority = &v
	}

	tasks, err := tc.Service.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Trim the listing to tasks this caller may see.
	visible := tasks[:0]
	for _, task := range tasks {
		if utils.CanAccessTask(task, actor.ID, actor.Role, tc.DB) {
			visible = append(visible, task)
		}
	}

	c.JSON(http.StatusOK, visible)
}

func (tc *TaskController) GetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := tc.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	actor := currentActor(c)
	if !utils.CanAccessTask(task, actor.ID, actor.Role, tc.DB) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this task"})
		return
	}

	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) DeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := tc.Service.Delete(c.Request.Context(), id, currentActor(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

func (tc *TaskController) RecordProgress(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var input struct {
		Progress int    `json:"progress"`
		Message  string `json:"message"`
	}
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tc.Service.RecordProgress(c.Request.Context(), id, currentActor(c), input.Progress, input.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) SubmitReview(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var input struct {
		Feedback      string `json:"feedback"`
		Rating        *int   `json:"rating"`
		Decision      string `json:"decision"`
		ResetProgress *int   `json:"reset_progress"`
	}
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := currentActor(c)

	// Managers may only review tasks inside their hierarchy.
	if task, err := tc.Service.Get(c.Request.Context(), id); err == nil {
		if !utils.CanAccessTask(task, actor.ID, actor.Role, tc.DB) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this task"})
			return
		}
	}

	task, err := tc.Service.SubmitReview(c.Request.Context(), id, actor, services.ReviewInput{
		Feedback:      input.Feedback,
		Rating:        input.Rating,
		Decision:      input.Decision,
		ResetProgress: input.ResetProgress,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) OverrideStatus(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var input struct {
		Status  string `json:"status"`
		Comment string `json:"comment"`
	}
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tc.Service.OverrideStatus(c.Request.Context(), id, currentActor(c), input.Status, input.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) AddAttachment(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file upload is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	task, err := tc.Service.AddAttachment(c.Request.Context(), id, currentActor(c), fileHeader.Filename, f)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func taskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task id"})
		return 0, false
	}
	return uint(id), true
}
