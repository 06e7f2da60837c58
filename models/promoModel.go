package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PromoCode struct {
	ID             primitive.ObjectID `bson:"_id"`
	Code           *string            `json:"code" validate:"required,min=3,max=20"`
	Discount_type  *string            `json:"discount_type" validate:"required,eq=PERCENT|eq=FLAT"`
	Discount_value *float64           `json:"discount_value" validate:"required,gt=0"`
	Min_order      float64            `json:"min_order"`
	Max_uses       int                `json:"max_uses"`
	Used_count     int                `json:"used_count"`
	Expires_at     *time.Time         `json:"expires_at"`
	Is_active      *bool              `json:"is_active"`
	Created_at     time.Time          `json:"created_at"`
	Updated_at     time.Time          `json:"updated_at"`
	Promo_id       string             `json:"promo_id"`
}
