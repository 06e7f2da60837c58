package routes

import (
	controller "go-food-delivery/controllers"
	"go-food-delivery/middleware"

	"github.com/gin-gonic/gin"
)

func OrderRoutes(incomingRoutes *gin.Engine) {
	// The gateway calls the webhook unauthenticated; the HMAC signature is
	// its credential.
	incomingRoutes.POST("/payments/webhook", controller.PaymentWebhook())

	authorized := incomingRoutes.Group("/")
	authorized.Use(middleware.Authentication())
	authorized.GET("/orders", middleware.AuthorizeRoles("ADMIN"), controller.GetOrders())
	authorized.GET("/orders/mine", controller.GetMyOrders())
	authorized.GET("/orders/:order_id", controller.GetOrder())
	authorized.POST("/orders", controller.CreateOrder())
	authorized.POST("/orders/:order_id/cancel", controller.CancelOrder())
	authorized.PATCH("/orders/:order_id/status", middleware.AuthorizeRoles("ADMIN"), controller.UpdateOrderStatus())

	authorized.POST("/payments", controller.CreatePayment())
	authorized.GET("/payments", middleware.AuthorizeRoles("ADMIN"), controller.GetPayments())
	authorized.GET("/payments/:payment_id", controller.GetPayment())

	authorized.GET("/feedback", middleware.AuthorizeRoles("ADMIN"), controller.GetFeedbacks())
	authorized.POST("/feedback", controller.CreateFeedback())
	authorized.DELETE("/feedback/:feedback_id", middleware.AuthorizeRoles("ADMIN"), controller.DeleteFeedback())
}
