package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        *string            `json:"name" validate:"required,min=2,max=100"`
	Description *string            `json:"description"`
	Image_url   *string            `json:"image_url"`
	Is_active   *bool              `json:"is_active"`
	Created_at  time.Time          `json:"created_at"`
	Updated_at  time.Time          `json:"updated_at"`
	Category_id string             `json:"category_id"`
}

type MenuItem struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         *string            `json:"name" validate:"required,min=2,max=100"`
	Description  *string            `json:"description"`
	Price        *float64           `json:"price" validate:"required,gt=0"`
	Image_url    *string            `json:"image_url"`
	Category_id  *string            `json:"category_id" validate:"required"`
	Is_veg       *bool              `json:"is_veg"`
	Is_available *bool              `json:"is_available"`
	Created_at   time.Time          `json:"created_at"`
	Updated_at   time.Time          `json:"updated_at"`
	Item_id      string             `json:"item_id"`
}
