package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment statuses as reported by the gateway.
const (
	PaymentPending  = "PENDING"
	PaymentPaid     = "PAID"
	PaymentFailed   = "FAILED"
	PaymentRefunded = "REFUNDED"
)

type Payment struct {
	ID             primitive.ObjectID `bson:"_id"`
	Payment_id     string             `json:"payment_id"`
	Order_id       *string            `json:"order_id" validate:"required"`
	User_id        *string            `json:"user_id"`
	Amount         *float64           `json:"amount" validate:"required,gt=0"`
	Currency       string             `json:"currency"`
	Method         *string            `json:"method" validate:"required,eq=CARD|eq=UPI|eq=COD|eq=WALLET"`
	Status         string             `json:"status"`
	Transaction_id string             `json:"transaction_id"`
	Created_at     time.Time          `json:"created_at"`
	Updated_at     time.Time          `json:"updated_at"`
}
