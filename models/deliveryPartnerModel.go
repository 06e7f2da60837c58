package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Delivery partner availability.
const (
	PartnerFree    = "free"
	PartnerBusy    = "busy"
	PartnerOffline = "offline"
)

type DeliveryPartner struct {
	ID             primitive.ObjectID `bson:"_id"`
	Name           *string            `json:"name" validate:"required,min=2,max=100"`
	Phone          *string            `json:"phone" validate:"required"`
	Vehicle_type   *string            `json:"vehicle_type" validate:"required,eq=Bike|eq=Scooter|eq=Car|eq=Auto|eq=Cycle"`
	Vehicle_number *string            `json:"vehicle_number" validate:"required"`
	Status         string             `bson:"status" json:"status"`
	Created_at     time.Time          `bson:"created_at" json:"created_at"`
	Updated_at     time.Time          `json:"updated_at"`
	Partner_id     string             `bson:"partner_id" json:"partner_id"`
}
