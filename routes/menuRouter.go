package routes

import (
	controller "go-food-delivery/controllers"
	"go-food-delivery/middleware"

	"github.com/gin-gonic/gin"
)

func MenuRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.GET("/categories", controller.GetCategories())
	incomingRoutes.GET("/menuitems", controller.GetMenuItems())
	incomingRoutes.GET("/menuitems/:item_id", controller.GetMenuItem())
	incomingRoutes.GET("/menuitemsbycategory/:category_id", controller.GetMenuItemsByCategory())

	admin := incomingRoutes.Group("/")
	admin.Use(middleware.Authentication(), middleware.AuthorizeRoles("ADMIN"))
	admin.POST("/categories", controller.CreateCategory())
	admin.PATCH("/categories/:category_id", controller.UpdateCategory())
	admin.DELETE("/categories/:category_id", controller.DeleteCategory())
	admin.POST("/menuitems", controller.CreateMenuItem())
	admin.PATCH("/menuitems/:item_id", controller.UpdateMenuItem())
	admin.DELETE("/menuitems/:item_id", controller.DeleteMenuItem())
	admin.GET("/promocodes", controller.GetPromoCodes())
	admin.POST("/promocodes", controller.CreatePromoCode())
	admin.PATCH("/promocodes/:promo_id", controller.UpdatePromoCode())
	admin.DELETE("/promocodes/:promo_id", controller.DeletePromoCode())
}
