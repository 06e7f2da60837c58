package routes

import (
	controller "go-food-delivery/controllers"
	"go-food-delivery/middleware"

	"github.com/gin-gonic/gin"
)

func UserRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.POST("/users/signup", controller.SignUp())
	incomingRoutes.POST("/users/login", controller.Login())
	incomingRoutes.GET("/ws", controller.HandleWebSocket())

	authorized := incomingRoutes.Group("/")
	authorized.Use(middleware.Authentication())
	authorized.GET("/users", middleware.AuthorizeRoles("ADMIN"), controller.GetUsers())
	authorized.GET("/users/:user_id", controller.GetUser())
	authorized.PATCH("/users/:user_id", controller.UpdateUser())
	authorized.GET("/notifications", controller.GetMyNotifications())
	authorized.PATCH("/notifications/read", controller.MarkNotificationsRead())
}
