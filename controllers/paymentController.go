package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"go-food-delivery/database"
	"go-food-delivery/helpers"
	"go-food-delivery/models"
	"go-food-delivery/payments"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var paymentCollection *mongo.Collection = database.OpenCollection(database.Client, "payment")

var paymentGateway payments.Gateway = payments.SimulatedGateway{}
var emailSender helpers.EmailSender = helpers.NewEmailSender()

func GetPayments() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		result, err := paymentCollection.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing payments"})
			return
		}
		var allPayments []bson.M
		if err := result.All(ctx, &allPayments); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing payments"})
			return
		}
		c.JSON(http.StatusOK, allPayments)
	}
}

func GetPayment() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		paymentId := c.Param("payment_id")
		var payment models.Payment
		err := paymentCollection.FindOne(ctx, bson.M{"payment_id": paymentId}).Decode(&payment)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		c.JSON(http.StatusOK, payment)
	}
}

// CreatePayment initiates a charge with the gateway for an order.
func CreatePayment() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		var payment models.Payment
		if err := c.BindJSON(&payment); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(&payment); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		var order models.Order
		if err := orderCollection.FindOne(ctx, bson.M{"order_id": payment.Order_id}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if order.Payment_status == models.PaymentPaid {
			c.JSON(http.StatusConflict, gin.H{"error": "order is already paid"})
			return
		}

		charge, err := paymentGateway.InitiateCharge(order.Order_id, order.Total_amount, *payment.Method)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		uid := c.GetString("uid")
		payment.User_id = &uid
		amount := order.Total_amount
		payment.Amount = &amount
		payment.Currency = "INR"
		payment.Status = charge.Status
		payment.Transaction_id = charge.TransactionID
		payment.Created_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		payment.Updated_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		payment.ID = primitive.NewObjectID()
		payment.Payment_id = uuid.NewString()

		result, insertErr := paymentCollection.InsertOne(ctx, payment)
		if insertErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payment was not recorded"})
			return
		}

		if charge.Status == models.PaymentPaid {
			markOrderPaid(ctx, order)
		}

		c.JSON(http.StatusOK, gin.H{"result": result, "payment_id": payment.Payment_id, "gateway": charge})
	}
}

// PaymentWebhook receives asynchronous gateway callbacks. The raw body is
// verified with HMAC-SHA256 before anything is trusted.
func PaymentWebhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read webhook body"})
			return
		}
		if !payments.VerifyWebhook(body, c.GetHeader("X-Webhook-Signature")) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
			return
		}

		var event struct {
			Transaction_id string `json:"transaction_id"`
			Order_id       string `json:"order_id"`
			Status         string `json:"status"`
		}
		if err := json.Unmarshal(body, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed webhook payload"})
			return
		}

		now, _ := time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		_, err = paymentCollection.UpdateOne(ctx,
			bson.M{"transaction_id": event.Transaction_id},
			bson.M{"$set": bson.M{"status": event.Status, "updated_at": now}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payment update failed"})
			return
		}

		if event.Status == models.PaymentPaid {
			var order models.Order
			if err := orderCollection.FindOne(ctx, bson.M{"order_id": event.Order_id}).Decode(&order); err == nil {
				markOrderPaid(ctx, order)
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "webhook processed"})
	}
}

func markOrderPaid(ctx context.Context, order models.Order) {
	now, _ := time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
	_, err := orderCollection.UpdateOne(ctx,
		bson.M{"order_id": order.Order_id},
		bson.M{"$set": bson.M{"payment_status": models.PaymentPaid, "updated_at": now}},
	)
	if err != nil {
		log.Println("could not mark order paid:", err)
		return
	}

	if order.User_id != nil {
		var user models.User
		if err := userCollection.FindOne(ctx, bson.M{"user_id": order.User_id}).Decode(&user); err == nil && user.Email != nil {
			if err := emailSender.Send(*user.Email, "Your order is confirmed",
				helpers.OrderReceiptBody(order.Order_id, order.Total_amount)); err != nil {
				log.Println("receipt email failed:", err)
			}
		}
	}
}

// refundPayment reverses the paid charge for a cancelled order.
func refundPayment(ctx context.Context, orderId string) {
	var payment models.Payment
	err := paymentCollection.FindOne(ctx, bson.M{"order_id": orderId, "status": models.PaymentPaid}).Decode(&payment)
	if err != nil {
		return
	}
	if payment.Amount != nil {
		if err := paymentGateway.Refund(payment.Transaction_id, *payment.Amount); err != nil {
			log.Println("refund failed:", err)
			return
		}
	}
	now, _ := time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
	_, err = paymentCollection.UpdateOne(ctx,
		bson.M{"payment_id": payment.Payment_id},
		bson.M{"$set": bson.M{"status": models.PaymentRefunded, "updated_at": now}},
	)
	if err != nil {
		log.Println("could not record refund:", err)
	}
	_, err = orderCollection.UpdateOne(ctx,
		bson.M{"order_id": orderId},
		bson.M{"$set": bson.M{"payment_status": models.PaymentRefunded, "updated_at": now}},
	)
	if err != nil {
		log.Println("could not record refund on order:", err)
	}
}
