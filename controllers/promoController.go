package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"go-food-delivery/database"
	"go-food-delivery/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var promoCollection *mongo.Collection = database.OpenCollection(database.Client, "promoCode")

func GetPromoCodes() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		result, err := promoCollection.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing promo codes"})
			return
		}
		var allPromos []bson.M
		if err := result.All(ctx, &allPromos); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing promo codes"})
			return
		}
		c.JSON(http.StatusOK, allPromos)
	}
}

func CreatePromoCode() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		var promo models.PromoCode
		if err := c.BindJSON(&promo); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(&promo); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}
		code := strings.ToUpper(*promo.Code)
		promo.Code = &code

		count, err := promoCollection.CountDocuments(ctx, bson.M{"code": promo.Code})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while checking the promo code"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "promo code already exists"})
			return
		}

		promo.Created_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		promo.Updated_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		promo.ID = primitive.NewObjectID()
		promo.Promo_id = promo.ID.Hex()

		result, insertErr := promoCollection.InsertOne(ctx, promo)
		if insertErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "promo code was not created"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func UpdatePromoCode() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		var promo models.PromoCode
		promoId := c.Param("promo_id")
		if err := c.BindJSON(&promo); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var updateObj primitive.D
		if promo.Discount_type != nil {
			updateObj = append(updateObj, bson.E{Key: "discount_type", Value: promo.Discount_type})
		}
		if promo.Discount_value != nil {
			updateObj = append(updateObj, bson.E{Key: "discount_value", Value: promo.Discount_value})
		}
		if promo.Min_order > 0 {
			updateObj = append(updateObj, bson.E{Key: "min_order", Value: promo.Min_order})
		}
		if promo.Max_uses > 0 {
			updateObj = append(updateObj, bson.E{Key: "max_uses", Value: promo.Max_uses})
		}
		if promo.Expires_at != nil {
			updateObj = append(updateObj, bson.E{Key: "expires_at", Value: promo.Expires_at})
		}
		if promo.Is_active != nil {
			updateObj = append(updateObj, bson.E{Key: "is_active", Value: promo.Is_active})
		}
		promo.Updated_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		updateObj = append(updateObj, bson.E{Key: "updated_at", Value: promo.Updated_at})

		result, err := promoCollection.UpdateOne(
			ctx,
			bson.M{"promo_id": promoId},
			bson.D{{Key: "$set", Value: updateObj}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "promo code update failed"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func DeletePromoCode() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		promoId := c.Param("promo_id")
		result, err := promoCollection.DeleteOne(ctx, bson.M{"promo_id": promoId})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "promo code delete failed"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// applyPromo validates a code against the order subtotal and returns the
// discount amount. Invalid or exhausted codes return a zero discount and a
// message for the client.
func applyPromo(ctx context.Context, code string, subtotal float64) (float64, string) {
	var promo models.PromoCode
	err := promoCollection.FindOne(ctx, bson.M{"code": strings.ToUpper(code)}).Decode(&promo)
	if err != nil {
		return 0, "promo code not found"
	}
	if promo.Is_active != nil && !*promo.Is_active {
		return 0, "promo code is not active"
	}
	if promo.Expires_at != nil && promo.Expires_at.Before(time.Now()) {
		return 0, "promo code has expired"
	}
	if promo.Max_uses > 0 && promo.Used_count >= promo.Max_uses {
		return 0, "promo code usage limit reached"
	}
	if subtotal < promo.Min_order {
		return 0, "order amount is below the promo minimum"
	}

	var discount float64
	if *promo.Discount_type == "PERCENT" {
		discount = subtotal * *promo.Discount_value / 100
	} else {
		discount = *promo.Discount_value
	}
	if discount > subtotal {
		discount = subtotal
	}

	_, err = promoCollection.UpdateOne(ctx,
		bson.M{"promo_id": promo.Promo_id},
		bson.M{"$inc": bson.M{"used_count": 1}},
	)
	if err != nil {
		log.Println("could not increment promo usage:", err)
	}
	return discount, ""
}
