package controllers

import (
	"context"
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

var feedbackCollection *mongo.Collection = database.OpenCollection(database.Client, "feedback")

func GetFeedbacks() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		result, err := feedbackCollection.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing feedback"})
			return
		}
		var allFeedback []bson.M
		if err := result.All(ctx, &allFeedback); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing feedback"})
			return
		}
		c.JSON(http.StatusOK, allFeedback)
	}
}

func CreateFeedback() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		var feedback models.Feedback
		if err := c.BindJSON(&feedback); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(&feedback); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		var order models.Order
		if err := orderCollection.FindOne(ctx, bson.M{"order_id": feedback.Order_id}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		uid := c.GetString("uid")
		if order.User_id == nil || *order.User_id != uid {
			c.JSON(http.StatusForbidden, gin.H{"error": "you can only review your own orders"})
			return
		}
		if order.Status != models.OrderStatusCompleted {
			c.JSON(http.StatusBadRequest, gin.H{"error": "order is not completed yet"})
			return
		}

		feedback.User_id = &uid
		feedback.Created_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		feedback.ID = primitive.NewObjectID()
		feedback.Feedback_id = feedback.ID.Hex()

		result, insertErr := feedbackCollection.InsertOne(ctx, feedback)
		if insertErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "feedback was not created"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func DeleteFeedback() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		feedbackId := c.Param("feedback_id")
		result, err := feedbackCollection.DeleteOne(ctx, bson.M{"feedback_id": feedbackId})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "feedback delete failed"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
