package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"go-food-delivery/database"
	"go-food-delivery/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var notificationCollection *mongo.Collection = database.OpenCollection(database.Client, "notification")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}
var clients = make(map[*websocket.Conn]bool)
var mu sync.Mutex

func HandleWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			fmt.Println("Error during connection upgrade:", err)
			return
		}
		defer conn.Close()

		mu.Lock()
		clients[conn] = true
		mu.Unlock()

		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				mu.Lock()
				delete(clients, conn)
				mu.Unlock()
				break
			}
		}
	}
}

type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

func sendMessageToAllClients(message Message) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		fmt.Println("Error marshaling message:", err)
		return
	}

	for client := range clients {
		err := client.WriteMessage(websocket.TextMessage, messageBytes)
		if err != nil {
			fmt.Println("Error writing message:", err)
			client.Close()
			delete(clients, client)
		}
	}
}

// notifyDeliveryUpdate runs on the automation goroutine after every persisted
// transition: it broadcasts the event to websocket clients and stores a
// notification record for the order's owner.
func notifyDeliveryUpdate(orderId string, entry models.DeliveryStatusEntry) {
	mu.Lock()
	sendMessageToAllClients(Message{
		Event: "deliveryUpdate",
		Payload: gin.H{
			"order_id":  orderId,
			"status":    entry.Status,
			"message":   entry.Message,
			"timestamp": entry.Timestamp,
		},
	})
	mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var order models.Order
	opts := options.FindOne().SetProjection(bson.M{"user_id": 1})
	if err := orderCollection.FindOne(ctx, bson.M{"order_id": orderId}, opts).Decode(&order); err != nil {
		log.Println("could not load order for notification:", err)
		return
	}
	userId := ""
	if order.User_id != nil {
		userId = *order.User_id
	}
	notification := models.Notification{
		ID:         primitive.NewObjectID(),
		User_id:    userId,
		Order_id:   orderId,
		Title:      "Order update",
		Body:       entry.Message,
		Created_at: entry.Timestamp,
	}
	if _, err := notificationCollection.InsertOne(ctx, notification); err != nil {
		log.Println("could not store notification:", err)
	}
}

func GetMyNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		uid := c.GetString("uid")
		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(50)
		result, err := notificationCollection.Find(ctx, bson.M{"user_id": uid}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing notifications"})
			return
		}
		var notifications []bson.M
		if err := result.All(ctx, &notifications); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing notifications"})
			return
		}
		c.JSON(http.StatusOK, notifications)
	}
}

func MarkNotificationsRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		uid := c.GetString("uid")
		result, err := notificationCollection.UpdateMany(ctx,
			bson.M{"user_id": uid, "is_read": false},
			bson.M{"$set": bson.M{"is_read": true}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while updating notifications"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
