package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"go-food-delivery/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func GetDeliveryPartners() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
		result, err := deliveryPartnerCollection.Find(ctx, bson.M{}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing delivery partners"})
			return
		}
		var allPartners []bson.M
		if err := result.All(ctx, &allPartners); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing delivery partners"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  http.StatusOK,
			"message": "Delivery partners fetched successfully",
			"data":    allPartners,
		})
	}
}

func GetDeliveryPartner() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		partnerId := c.Param("partner_id")
		var partner models.DeliveryPartner
		err := deliveryPartnerCollection.FindOne(ctx, bson.M{"partner_id": partnerId}).Decode(&partner)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "delivery partner not found"})
			return
		}
		c.JSON(http.StatusOK, partner)
	}
}

func CreateDeliveryPartner() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		var partner models.DeliveryPartner
		if err := c.BindJSON(&partner); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(&partner); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}
		partner.Created_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		partner.Updated_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		partner.ID = primitive.NewObjectID()
		partner.Partner_id = partner.ID.Hex()
		if partner.Status == "" {
			partner.Status = models.PartnerFree
		}

		result, insertErr := deliveryPartnerCollection.InsertOne(ctx, partner)
		if insertErr != nil {
			msg := fmt.Sprintf("delivery partner was not created")
			c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func UpdateDeliveryPartner() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		var partner models.DeliveryPartner
		partnerId := c.Param("partner_id")
		if err := c.BindJSON(&partner); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var updateObj primitive.D
		if partner.Name != nil {
			updateObj = append(updateObj, bson.E{Key: "name", Value: partner.Name})
		}
		if partner.Phone != nil {
			updateObj = append(updateObj, bson.E{Key: "phone", Value: partner.Phone})
		}
		if partner.Vehicle_type != nil {
			updateObj = append(updateObj, bson.E{Key: "vehicle_type", Value: partner.Vehicle_type})
		}
		if partner.Vehicle_number != nil {
			updateObj = append(updateObj, bson.E{Key: "vehicle_number", Value: partner.Vehicle_number})
		}
		partner.Updated_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		updateObj = append(updateObj, bson.E{Key: "updated_at", Value: partner.Updated_at})

		result, err := deliveryPartnerCollection.UpdateOne(
			ctx,
			bson.M{"partner_id": partnerId},
			bson.D{{Key: "$set", Value: updateObj}},
		)
		if err != nil {
			msg := "delivery partner update failed"
			c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// UpdatePartnerStatus toggles availability. Partners toggle themselves
// between free and offline; busy is only ever set by assignment.
func UpdatePartnerStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		partnerId := c.Param("partner_id")
		var body struct {
			Status string `json:"status" validate:"required,eq=free|eq=busy|eq=offline"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(&body); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}
		if err := partnerStore.SetStatus(ctx, partnerId, body.Status); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "partner status update failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "partner status updated"})
	}
}

// GetPartnerDeliveries lists the orders a partner has carried, newest first.
func GetPartnerDeliveries() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		partnerId := c.Param("partner_id")
		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
		result, err := orderCollection.Find(ctx, bson.M{"delivery_partner_id": partnerId}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing deliveries"})
			return
		}
		var deliveries []bson.M
		if err := result.All(ctx, &deliveries); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing deliveries"})
			return
		}
		c.JSON(http.StatusOK, deliveries)
	}
}
