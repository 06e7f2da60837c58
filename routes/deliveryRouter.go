package routes

import (
	controller "go-food-delivery/controllers"
	"go-food-delivery/middleware"

	"github.com/gin-gonic/gin"
)

func DeliveryRoutes(incomingRoutes *gin.Engine) {
	authorized := incomingRoutes.Group("/")
	authorized.Use(middleware.Authentication())
	authorized.GET("/orders/:order_id/tracking", controller.GetDeliveryTracking())

	admin := incomingRoutes.Group("/")
	admin.Use(middleware.Authentication(), middleware.AuthorizeRoles("ADMIN"))
	admin.GET("/deliverypartners", controller.GetDeliveryPartners())
	admin.POST("/deliverypartners", controller.CreateDeliveryPartner())
	admin.PATCH("/deliverypartners/:partner_id", controller.UpdateDeliveryPartner())
	admin.GET("/deliverypartners/:partner_id/deliveries", controller.GetPartnerDeliveries())
	admin.POST("/orders/:order_id/assign", controller.AssignDeliveryPartner())

	// Partners toggle their own availability from the driver app.
	partner := incomingRoutes.Group("/")
	partner.Use(middleware.Authentication(), middleware.AuthorizeRoles("ADMIN", "DELIVERY"))
	partner.GET("/deliverypartners/:partner_id", controller.GetDeliveryPartner())
	partner.PATCH("/deliverypartners/:partner_id/status", controller.UpdatePartnerStatus())
}
