package routes

import (
	controller "go-food-delivery/controllers"
	"go-food-delivery/middleware"

	"github.com/gin-gonic/gin"
)

func AdminRoutes(incomingRoutes *gin.Engine) {
	admin := incomingRoutes.Group("/admin")
	admin.Use(middleware.Authentication(), middleware.AuthorizeRoles("ADMIN"))
	admin.GET("/dashboard", controller.GetDashboardSummary())
	admin.GET("/revenue", controller.GetRevenueByDay())
	admin.GET("/topitems", controller.GetTopMenuItems())
}
