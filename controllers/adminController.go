package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"go-food-delivery/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/now"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetDashboardSummary aggregates the numbers the admin home screen shows:
// order counts by status, today's revenue and active partner utilisation.
func GetDashboardSummary() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		groupByStatus := bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}}
		cursor, err := orderCollection.Aggregate(ctx, mongo.Pipeline{groupByStatus})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while aggregating orders"})
			return
		}
		var statusCounts []bson.M
		if err := cursor.All(ctx, &statusCounts); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while aggregating orders"})
			return
		}

		startOfDay := now.BeginningOfDay()
		revenueMatch := bson.D{{Key: "$match", Value: bson.D{
			{Key: "status", Value: models.OrderStatusCompleted},
			{Key: "created_at", Value: bson.D{{Key: "$gte", Value: startOfDay}}},
		}}}
		revenueGroup := bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total_amount"}}},
			{Key: "orders", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}}
		cursor, err = orderCollection.Aggregate(ctx, mongo.Pipeline{revenueMatch, revenueGroup})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while aggregating revenue"})
			return
		}
		var todayRevenue []bson.M
		if err := cursor.All(ctx, &todayRevenue); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while aggregating revenue"})
			return
		}

		partnerGroup := bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}}
		cursor, err = deliveryPartnerCollection.Aggregate(ctx, mongo.Pipeline{partnerGroup})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while aggregating partners"})
			return
		}
		var partnerCounts []bson.M
		if err := cursor.All(ctx, &partnerCounts); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while aggregating partners"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders_by_status":   statusCounts,
			"today":              todayRevenue,
			"partners_by_status": partnerCounts,
			"active_automations": deliveryScheduler.Active(),
		})
	}
}

// GetRevenueByDay returns completed-order revenue for each of the last seven
// days, bucketed on calendar-day boundaries.
func GetRevenueByDay() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		weekAgo := now.With(time.Now().AddDate(0, 0, -6)).BeginningOfDay()
		match := bson.D{{Key: "$match", Value: bson.D{
			{Key: "status", Value: models.OrderStatusCompleted},
			{Key: "created_at", Value: bson.D{{Key: "$gte", Value: weekAgo}}},
		}}}
		group := bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$created_at"},
			}}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total_amount"}}},
			{Key: "orders", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}}
		sort := bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}}

		cursor, err := orderCollection.Aggregate(ctx, mongo.Pipeline{match, group, sort})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while aggregating revenue"})
			return
		}
		var days []bson.M
		if err := cursor.All(ctx, &days); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while aggregating revenue"})
			return
		}
		c.JSON(http.StatusOK, days)
	}
}

// GetTopMenuItems joins completed orders against their item snapshots and
// ranks items by quantity sold.
func GetTopMenuItems() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		match := bson.D{{Key: "$match", Value: bson.D{{Key: "status", Value: models.OrderStatusCompleted}}}}
		unwind := bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$items"},
			{Key: "preserveNullAndEmptyArrays", Value: false},
		}}}
		group := bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$items.item_id"},
			{Key: "name", Value: bson.D{{Key: "$first", Value: "$items.name"}}},
			{Key: "quantity_sold", Value: bson.D{{Key: "$sum", Value: "$items.quantity"}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$multiply", Value: bson.A{"$items.unit_price", "$items.quantity"}}}}}},
		}}}
		sort := bson.D{{Key: "$sort", Value: bson.D{{Key: "quantity_sold", Value: -1}}}}
		limit := bson.D{{Key: "$limit", Value: 10}}

		cursor, err := orderCollection.Aggregate(ctx, mongo.Pipeline{match, unwind, group, sort, limit})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while aggregating menu items"})
			return
		}
		var topItems []bson.M
		if err := cursor.All(ctx, &topItems); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while aggregating menu items"})
			return
		}
		c.JSON(http.StatusOK, topItems)
	}
}
