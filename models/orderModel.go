package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Cancelled and completed are terminal: no automated
// transition may touch an order after it reaches either one.
const (
	OrderStatusPending     = "pending"
	OrderStatusReceived    = "received"
	OrderStatusPreparing   = "preparing"
	OrderStatusAlmostReady = "almost_ready"
	OrderStatusReady       = "ready"
	OrderStatusProcessing  = "processing"
	OrderStatusCompleted   = "completed"
	OrderStatusCancelled   = "cancelled"
	// OrderStatusConfirmed is kept for orders written by older clients.
	OrderStatusConfirmed = "confirmed"
)

// Delivery statuses, in fulfilment order.
const (
	DeliverySearching      = "searching"
	DeliveryAssigned       = "assigned"
	DeliveryArrivingPickup = "arriving_pickup"
	DeliveryReachedPickup  = "reached_pickup"
	DeliveryPickedUp       = "picked_up"
	DeliveryEnroute        = "enroute"
	DeliveryArriving       = "arriving"
	DeliveryDelivered      = "delivered"
)

// IsTerminalOrderStatus reports whether status freezes the order for automation.
func IsTerminalOrderStatus(status string) bool {
	return status == OrderStatusCancelled || status == OrderStatusCompleted
}

type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// DeliveryDriver is a snapshot of the partner copied at assignment time,
// not a live reference.
type DeliveryDriver struct {
	Partner_id     string `bson:"partner_id" json:"partner_id"`
	Name           string `bson:"name" json:"name"`
	Phone          string `bson:"phone" json:"phone"`
	Vehicle_type   string `bson:"vehicle_type" json:"vehicle_type"`
	Vehicle_number string `bson:"vehicle_number" json:"vehicle_number"`
}

type DeliveryStatusEntry struct {
	Status    string    `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Message   string    `bson:"message" json:"message"`
}

// Delivery is the embedded tracking document. It is created when a partner is
// first assigned (or when the tracking endpoint is first hit) and kept forever
// as a historical record on the order.
type Delivery struct {
	Driver             *DeliveryDriver       `bson:"driver,omitempty" json:"driver,omitempty"`
	Status             string                `bson:"status" json:"status"`
	Current_location   *Location             `bson:"current_location,omitempty" json:"current_location,omitempty"`
	Restaurant_location *Location            `bson:"restaurant_location,omitempty" json:"restaurant_location,omitempty"`
	Customer_location  *Location             `bson:"customer_location,omitempty" json:"customer_location,omitempty"`
	Estimated_arrival  *time.Time            `bson:"estimated_arrival,omitempty" json:"estimated_arrival,omitempty"`
	Status_history     []DeliveryStatusEntry `bson:"status_history" json:"status_history"`
}

type OrderItem struct {
	Item_id    *string  `json:"item_id" validate:"required"`
	Name       *string  `json:"name"`
	Quantity   *int     `json:"quantity" validate:"required,gt=0"`
	Unit_price *float64 `json:"unit_price"`
}

type Order struct {
	ID                  primitive.ObjectID   `bson:"_id"`
	Order_id            string               `json:"order_id"`
	User_id             *string              `json:"user_id"`
	Items               []OrderItem          `json:"items" validate:"required,min=1,dive"`
	Total_amount        float64              `json:"total_amount"`
	Discount            float64              `json:"discount"`
	Promo_code          *string              `json:"promo_code"`
	Status              string               `bson:"status" json:"status"`
	Payment_status      string               `json:"payment_status"`
	Delivery_partner_id *string              `bson:"delivery_partner_id,omitempty" json:"delivery_partner_id,omitempty"`
	Delivery            *Delivery            `bson:"delivery,omitempty" json:"delivery,omitempty"`
	Status_timestamps   map[string]time.Time `bson:"status_timestamps,omitempty" json:"status_timestamps,omitempty"`
	Restaurant_location *Location            `bson:"restaurant_location,omitempty" json:"restaurant_location,omitempty"`
	Customer_location   *Location            `bson:"customer_location,omitempty" json:"customer_location,omitempty"`
	Scheduled_for       *time.Time           `bson:"scheduled_for,omitempty" json:"scheduled_for,omitempty"`
	Created_at          time.Time            `json:"created_at"`
	Updated_at          time.Time            `json:"updated_at"`
}
