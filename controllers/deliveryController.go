package controllers

import (
	"context"
	"net/http"
	"time"

	"go-food-delivery/automation"
	"go-food-delivery/database"
	"go-food-delivery/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var deliveryPartnerCollection *mongo.Collection = database.OpenCollection(database.Client, "deliveryPartner")

var orderStore *automation.MongoOrderStore = automation.NewMongoOrderStore(orderCollection)
var partnerStore *automation.MongoPartnerStore = automation.NewMongoPartnerStore(deliveryPartnerCollection)

// deliveryScheduler owns every in-flight order timeline. It lives for the
// whole process; a restart drops pending automations (known gap, reconciled
// manually by the kitchen).
var deliveryScheduler *automation.Scheduler = automation.NewScheduler(automation.Config{
	Orders:       orderStore,
	Partners:     partnerStore,
	OnTransition: notifyDeliveryUpdate,
})

// GetDeliveryTracking returns the embedded delivery document as-is. Clients
// poll this endpoint; there is no push interface for location data.
func GetDeliveryTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		orderId := c.Param("order_id")

		var order models.Order
		err := orderCollection.FindOne(ctx, bson.M{"order_id": orderId}).Decode(&order)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		if order.Delivery == nil {
			// First poll before assignment: materialize the tracking document.
			now, _ := time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
			delivery := models.Delivery{
				Status:              models.DeliverySearching,
				Restaurant_location: order.Restaurant_location,
				Customer_location:   order.Customer_location,
				Status_history: []models.DeliveryStatusEntry{{
					Status:    models.DeliverySearching,
					Timestamp: now,
					Message:   "Looking for a delivery partner near the restaurant",
				}},
			}
			_, err := orderCollection.UpdateOne(ctx,
				bson.M{"order_id": orderId, "delivery": bson.M{"$exists": false}},
				bson.M{"$set": bson.M{"delivery": delivery, "updated_at": now}},
			)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not initialise tracking"})
				return
			}
			order.Delivery = &delivery
		}

		c.JSON(http.StatusOK, gin.H{
			"order_id":     order.Order_id,
			"order_status": order.Status,
			"delivery":     order.Delivery,
		})
	}
}

// AssignDeliveryPartner is the admin fallback for orders the automation left
// unassigned (e.g., no partner was available at the scheduled time).
func AssignDeliveryPartner() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		orderId := c.Param("order_id")
		var body struct {
			Partner_id string `json:"partner_id" validate:"required"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(&body); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		order, err := orderStore.FindByID(ctx, orderId)
		if err != nil || order == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if models.IsTerminalOrderStatus(order.Status) {
			c.JSON(http.StatusConflict, gin.H{"error": "order is already completed or cancelled"})
			return
		}
		if order.Delivery_partner_id != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "order already has a delivery partner"})
			return
		}

		partner, err := partnerStore.FindByID(ctx, body.Partner_id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "delivery partner not found"})
			return
		}
		if partner.Status == models.PartnerOffline {
			c.JSON(http.StatusConflict, gin.H{"error": "delivery partner is offline"})
			return
		}

		if partner.Status == models.PartnerFree {
			if err := partnerStore.SetStatus(ctx, partner.Partner_id, models.PartnerBusy); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reserve the delivery partner"})
				return
			}
		}

		now := time.Now()
		entry := models.DeliveryStatusEntry{
			Status:    models.DeliveryAssigned,
			Timestamp: now,
			Message:   "Delivery partner assigned by support",
		}
		ok, err := orderStore.ApplyTransition(ctx, orderId, automation.TransitionUpdate{
			OrderStatus:        models.OrderStatusReady,
			DeliveryStatus:     models.DeliveryAssigned,
			Entry:              &entry,
			Milestone:          models.DeliveryAssigned,
			At:                 now,
			Partner:            partner,
			RestaurantLocation: order.Restaurant_location,
			CustomerLocation:   order.Customer_location,
		})
		if err != nil || !ok {
			if partner.Status == models.PartnerFree {
				_ = partnerStore.SetStatus(ctx, partner.Partner_id, models.PartnerFree)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "partner assignment failed"})
			return
		}

		notifyDeliveryUpdate(orderId, entry)
		c.JSON(http.StatusOK, gin.H{"message": "delivery partner assigned", "partner_id": partner.Partner_id})
	}
}
