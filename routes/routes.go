package routes

import (
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/constants"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/controllers"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/middleware"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, svc *services.TaskService) *gin.Engine {
	r := gin.Default()

	authController := controllers.AuthController{DB: db}
	userController := controllers.UserController{DB: db}
	taskController := controllers.TaskController{DB: db, Service: svc}
	notificationController := controllers.NotificationController{DB: db}

	r.POST("/register", authController.Register)
	r.POST("/login", authController.Login)

	auth := r.Group("/", middleware.AuthMiddleware())

	auth.GET("/users",
		middleware.RoleMiddleware(constants.RoleAdmin),
		userController.GetUsers)
	auth.PUT("/users/:id",
		middleware.RoleMiddleware(constants.RoleAdmin),
		userController.UpdateUser)

	auth.POST("/tasks",
		middleware.RoleMiddleware(constants.RoleAdmin, constants.RoleManager),
		taskController.CreateTask)
	auth.GET("/tasks", taskController.GetTasks)
	auth.GET("/tasks/:id", taskController.GetTask)
	auth.DELETE("/tasks/:id",
		middleware.RoleMiddleware(constants.RoleAdmin),
		taskController.DeleteTask)

	auth.POST("/tasks/:id/progress", taskController.RecordProgress)
	auth.POST("/tasks/:id/reviews",
		middleware.RoleMiddleware(constants.RoleAdmin, constants.RoleManager),
		taskController.SubmitReview)
	auth.POST("/tasks/:id/status",
		middleware.RoleMiddleware(constants.RoleAdmin),
		taskController.OverrideStatus)
	auth.POST("/tasks/:id/attachments", taskController.AddAttachment)

	auth.GET("/notifications", notificationController.GetNotifications)
	auth.POST("/notifications/:id/read", notificationController.MarkRead)

	return r
}
