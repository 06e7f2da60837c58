package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"go-food-delivery/database"
	"go-food-delivery/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var orderCollection *mongo.Collection = database.OpenCollection(database.Client, "order")

// The backend serves a single restaurant; its coordinates seed every
// delivery route.
var restaurantLocation = models.Location{Lat: 12.9716, Lng: 77.5946}

func GetOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		result, err := orderCollection.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing orders"})
			return
		}
		var allOrders []bson.M
		if err := result.All(ctx, &allOrders); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing orders"})
			return
		}
		c.JSON(http.StatusOK, allOrders)
	}
}

func GetMyOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		uid := c.GetString("uid")
		result, err := orderCollection.Find(ctx, bson.M{"user_id": uid})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing orders"})
			return
		}
		var orders []bson.M
		if err := result.All(ctx, &orders); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func GetOrder() gin.HandlerFunc {
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
		c.JSON(http.StatusOK, order)
	}
}

// CreateOrder places an order and kicks off the delivery automation. The
// automation is fire-and-forget: the response never waits on any scheduled
// transition. Orders scheduled for later fulfilment skip automation and are
// handled by the kitchen manually.
func CreateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		var order models.Order

		if err := c.BindJSON(&order); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(&order); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		// Price from the menu, never from the client.
		var subtotal float64
		for i, orderItem := range order.Items {
			var item models.MenuItem
			if err := menuItemCollection.FindOne(ctx, bson.M{"item_id": orderItem.Item_id}).Decode(&item); err != nil {
				msg := fmt.Sprintf("message: menu item was not found")
				c.JSON(http.StatusBadRequest, gin.H{"error": msg})
				return
			}
			if item.Is_available != nil && !*item.Is_available {
				c.JSON(http.StatusBadRequest, gin.H{"error": "menu item is currently unavailable"})
				return
			}
			order.Items[i].Name = item.Name
			order.Items[i].Unit_price = item.Price
			subtotal += *item.Price * float64(*orderItem.Quantity)
		}

		order.Discount = 0
		if order.Promo_code != nil && *order.Promo_code != "" {
			discount, msg := applyPromo(ctx, *order.Promo_code, subtotal)
			if msg != "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": msg})
				return
			}
			order.Discount = discount
		}
		order.Total_amount = subtotal - order.Discount

		uid := c.GetString("uid")
		order.User_id = &uid
		if order.Customer_location == nil {
			var user models.User
			if err := userCollection.FindOne(ctx, bson.M{"user_id": uid}).Decode(&user); err == nil &&
				user.Address != nil && user.Address.Lat != nil && user.Address.Lng != nil {
				order.Customer_location = &models.Location{Lat: *user.Address.Lat, Lng: *user.Address.Lng}
			}
		}
		if order.Customer_location == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "delivery location is required"})
			return
		}
		order.Restaurant_location = &restaurantLocation

		order.Created_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		order.Updated_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		order.ID = primitive.NewObjectID()
		order.Order_id = order.ID.Hex()
		order.Status = models.OrderStatusPending
		order.Payment_status = models.PaymentPending
		order.Status_timestamps = map[string]time.Time{models.OrderStatusPending: order.Created_at}

		result, err := orderCollection.InsertOne(ctx, order)
		if err != nil {
			msg := fmt.Sprintf("message: order was not created")
			c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
			return
		}

		if order.Scheduled_for == nil || !order.Scheduled_for.After(time.Now()) {
			deliveryScheduler.Start(order.Order_id)
		}

		c.JSON(http.StatusOK, gin.H{"order_id": order.Order_id, "result": result})
	}
}

// CancelOrder freezes the order and reaches the scheduler so pending timers
// are cleared. The terminal guard in the update filter makes the write a
// no-op when the order already completed.
func CancelOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		orderId := c.Param("order_id")

		var order models.Order
		if err := orderCollection.FindOne(ctx, bson.M{"order_id": orderId}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		uid := c.GetString("uid")
		role := c.GetString("user_role")
		if role != "ADMIN" && (order.User_id == nil || *order.User_id != uid) {
			c.JSON(http.StatusForbidden, gin.H{"error": "you can only cancel your own orders"})
			return
		}

		now, _ := time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		result, err := orderCollection.UpdateOne(ctx,
			bson.M{
				"order_id": orderId,
				"status":   bson.M{"$nin": []string{models.OrderStatusCancelled, models.OrderStatusCompleted}},
			},
			bson.M{"$set": bson.M{
				"status":     models.OrderStatusCancelled,
				"updated_at": now,
				"status_timestamps." + models.OrderStatusCancelled: now,
			}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order cancellation failed"})
			return
		}
		if result.MatchedCount == 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "order is already completed or cancelled"})
			return
		}

		deliveryScheduler.Cancel(orderId)

		// A partner mid-delivery goes back into rotation.
		if order.Delivery_partner_id != nil {
			if err := partnerStore.SetStatus(ctx, *order.Delivery_partner_id, models.PartnerFree); err != nil {
				log.Println("could not free partner after cancellation:", err)
			}
		}

		if order.Payment_status == models.PaymentPaid {
			refundPayment(ctx, orderId)
		}

		c.JSON(http.StatusOK, gin.H{"message": "order cancelled"})
	}
}

// UpdateOrderStatus is the admin override for order status.
func UpdateOrderStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		orderId := c.Param("order_id")
		var body struct {
			Status string `json:"status" validate:"required,eq=pending|eq=received|eq=preparing|eq=almost_ready|eq=ready|eq=processing|eq=completed|eq=cancelled|eq=confirmed"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(&body); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		now, _ := time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		result, err := orderCollection.UpdateOne(ctx,
			bson.M{"order_id": orderId},
			bson.M{"$set": bson.M{
				"status":     body.Status,
				"updated_at": now,
				"status_timestamps." + body.Status: now,
			}},
		)
		if err != nil {
			fmt.Printf("failed to update order status: %v\n", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order status update failed"})
			return
		}
		if models.IsTerminalOrderStatus(body.Status) {
			deliveryScheduler.Cancel(orderId)
		}
		c.JSON(http.StatusOK, result)
	}
}
