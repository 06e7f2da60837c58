package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"go-food-delivery/cache"
	"go-food-delivery/database"
	"go-food-delivery/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var validate *validator.Validate = validator.New()

var categoryCollection *mongo.Collection = database.OpenCollection(database.Client, "category")
var menuItemCollection *mongo.Collection = database.OpenCollection(database.Client, "menuItem")

var menuCache *cache.Cache = cache.New()

const (
	categoriesCacheKey = "categories:all"
	menuItemsCacheKey  = "menuItems:all"
)

func GetCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var allCategories []bson.M
		if menuCache.Get(ctx, categoriesCacheKey, &allCategories) {
			c.JSON(http.StatusOK, gin.H{
				"status":  http.StatusOK,
				"message": "Categories fetched successfully",
				"data":    allCategories,
			})
			return
		}

		result, err := categoryCollection.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing categories"})
			return
		}
		if err := result.All(ctx, &allCategories); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing categories"})
			return
		}
		menuCache.Set(ctx, categoriesCacheKey, allCategories)
		c.JSON(http.StatusOK, gin.H{
			"status":  http.StatusOK,
			"message": "Categories fetched successfully",
			"data":    allCategories,
		})
	}
}

func CreateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		var category models.Category
		if err := c.BindJSON(&category); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(&category); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}
		category.Created_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		category.Updated_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		category.ID = primitive.NewObjectID()
		category.Category_id = category.ID.Hex()

		result, insertErr := categoryCollection.InsertOne(ctx, category)
		if insertErr != nil {
			msg := fmt.Sprintf("category was not created")
			c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
			return
		}
		menuCache.Invalidate(ctx, categoriesCacheKey)
		c.JSON(http.StatusOK, result)
	}
}

func UpdateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		var category models.Category
		categoryId := c.Param("category_id")
		if err := c.BindJSON(&category); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var updateObj primitive.D
		if category.Name != nil {
			updateObj = append(updateObj, bson.E{Key: "name", Value: category.Name})
		}
		if category.Description != nil {
			updateObj = append(updateObj, bson.E{Key: "description", Value: category.Description})
		}
		if category.Image_url != nil {
			updateObj = append(updateObj, bson.E{Key: "image_url", Value: category.Image_url})
		}
		if category.Is_active != nil {
			updateObj = append(updateObj, bson.E{Key: "is_active", Value: category.Is_active})
		}
		category.Updated_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		updateObj = append(updateObj, bson.E{Key: "updated_at", Value: category.Updated_at})

		upsert := true
		opt := options.UpdateOptions{Upsert: &upsert}
		result, err := categoryCollection.UpdateOne(
			ctx,
			bson.M{"category_id": categoryId},
			bson.D{{Key: "$set", Value: updateObj}},
			&opt,
		)
		if err != nil {
			msg := "category update failed"
			c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
			return
		}
		menuCache.Invalidate(ctx, categoriesCacheKey)
		c.JSON(http.StatusOK, result)
	}
}

func DeleteCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		categoryId := c.Param("category_id")
		result, err := categoryCollection.DeleteOne(ctx, bson.M{"category_id": categoryId})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "category delete failed"})
			return
		}
		menuCache.Invalidate(ctx, categoriesCacheKey)
		c.JSON(http.StatusOK, result)
	}
}

func GetMenuItems() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var allItems []bson.M
		if menuCache.Get(ctx, menuItemsCacheKey, &allItems) {
			c.JSON(http.StatusOK, allItems)
			return
		}

		result, err := menuItemCollection.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing menu items"})
			return
		}
		if err := result.All(ctx, &allItems); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing menu items"})
			return
		}
		menuCache.Set(ctx, menuItemsCacheKey, allItems)
		c.JSON(http.StatusOK, allItems)
	}
}

func GetMenuItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		itemId := c.Param("item_id")
		var item models.MenuItem

		err := menuItemCollection.FindOne(ctx, bson.M{"item_id": itemId}).Decode(&item)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func GetMenuItemsByCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		categoryId := c.Param("category_id")

		result, err := menuItemCollection.Find(ctx, bson.M{"category_id": categoryId})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing menu items"})
			return
		}
		var items []bson.M
		if err := result.All(ctx, &items); err != nil {
			log.Println(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing menu items"})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func CreateMenuItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		var item models.MenuItem
		var category models.Category
		if err := c.BindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(&item); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}
		if err := categoryCollection.FindOne(ctx, bson.M{"category_id": item.Category_id}).Decode(&category); err != nil {
			msg := fmt.Sprintf("message: category was not found")
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		item.Created_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		item.Updated_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		item.ID = primitive.NewObjectID()
		item.Item_id = item.ID.Hex()

		result, insertErr := menuItemCollection.InsertOne(ctx, item)
		if insertErr != nil {
			msg := fmt.Sprintf("menu item was not created")
			c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
			return
		}
		menuCache.Invalidate(ctx, menuItemsCacheKey)
		c.JSON(http.StatusOK, result)
	}
}

func UpdateMenuItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		var item models.MenuItem
		itemId := c.Param("item_id")
		if err := c.BindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var updateObj primitive.D
		if item.Name != nil {
			updateObj = append(updateObj, bson.E{Key: "name", Value: item.Name})
		}
		if item.Description != nil {
			updateObj = append(updateObj, bson.E{Key: "description", Value: item.Description})
		}
		if item.Price != nil {
			updateObj = append(updateObj, bson.E{Key: "price", Value: item.Price})
		}
		if item.Image_url != nil {
			updateObj = append(updateObj, bson.E{Key: "image_url", Value: item.Image_url})
		}
		if item.Category_id != nil {
			updateObj = append(updateObj, bson.E{Key: "category_id", Value: item.Category_id})
		}
		if item.Is_veg != nil {
			updateObj = append(updateObj, bson.E{Key: "is_veg", Value: item.Is_veg})
		}
		if item.Is_available != nil {
			updateObj = append(updateObj, bson.E{Key: "is_available", Value: item.Is_available})
		}
		item.Updated_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		updateObj = append(updateObj, bson.E{Key: "updated_at", Value: item.Updated_at})

		result, err := menuItemCollection.UpdateOne(
			ctx,
			bson.M{"item_id": itemId},
			bson.D{{Key: "$set", Value: updateObj}},
		)
		if err != nil {
			msg := "menu item update failed"
			c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
			return
		}
		menuCache.Invalidate(ctx, menuItemsCacheKey)
		c.JSON(http.StatusOK, result)
	}
}

func DeleteMenuItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		itemId := c.Param("item_id")
		result, err := menuItemCollection.DeleteOne(ctx, bson.M{"item_id": itemId})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "menu item delete failed"})
			return
		}
		menuCache.Invalidate(ctx, menuItemsCacheKey)
		c.JSON(http.StatusOK, result)
	}
}
