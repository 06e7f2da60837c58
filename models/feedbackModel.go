package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Feedback struct {
	ID          primitive.ObjectID `bson:"_id"`
	Feedback_id string             `json:"feedback_id"`
	Order_id    *string            `json:"order_id" validate:"required"`
	User_id     *string            `json:"user_id"`
	Rating      *int               `json:"rating" validate:"required,min=1,max=5"`
	Comment     *string            `json:"comment"`
	Created_at  time.Time          `json:"created_at"`
}
