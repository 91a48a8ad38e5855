package controllers

import (
	"errors"
	"net/http"

	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/services"

	"github.com/gin-gonic/gin"
)

// currentActor rebuilds the authenticated actor from the claims the auth
// middleware stashed on the context. JWT numbers decode as float64.
func currentActor(c *gin.Context) services.Actor {
	var a services.Actor
	if v, ok := c.Get("user_id"); ok {
		if f, ok := v.(float64); ok {
			a.ID = uint(f)
		}
	}
	if v, ok := c.Get("role"); ok {
		if s, ok := v.(string); ok {
			a.Role = s
		}
	}
	return a
}

func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrInvalidState):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
