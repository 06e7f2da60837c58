package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	ID         primitive.ObjectID `bson:"_id"`
	User_id    string             `json:"user_id"`
	Order_id   string             `json:"order_id"`
	Title      string             `json:"title"`
	Body       string             `json:"body"`
	Is_read    bool               `json:"is_read"`
	Created_at time.Time          `json:"created_at"`
}
