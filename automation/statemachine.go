package automation

import (
	"time"

	"go-food-delivery/models"
)

// deliveryRank fixes the forward-only ordering of delivery statuses.
var deliveryRank = map[string]int{
	models.DeliverySearching:      0,
	models.DeliveryAssigned:       1,
	models.DeliveryArrivingPickup: 2,
	models.DeliveryReachedPickup:  3,
	models.DeliveryPickedUp:       4,
	models.DeliveryEnroute:        5,
	models.DeliveryArriving:       6,
	models.DeliveryDelivered:      7,
}

// DeliveryStatusRank returns the position of a delivery status in the
// fulfilment order, or -1 for unknown/empty statuses.
func DeliveryStatusRank(status string) int {
	rank, ok := deliveryRank[status]
	if !ok {
		return -1
	}
	return rank
}

type stepKind int

const (
	stepPlain stepKind = iota
	stepAssign
	stepStartSimulation
)

// Step is one row of the declarative delivery schedule: at Offset from order
// creation, apply the given statuses and append a history entry.
type Step struct {
	Offset         time.Duration
	OrderStatus    string
	DeliveryStatus string
	Message        string
	Milestone      string
	kind           stepKind
}

// DefaultSchedule is the fixed order timeline. Assignment happens 50s in;
// the location simulation starts at 90s and runs for another minute, so a
// normally completing order is delivered roughly 150s after creation.
func DefaultSchedule() []Step {
	return []Step{
		{Offset: 0, OrderStatus: models.OrderStatusReceived, Message: "Order received by the restaurant", Milestone: models.OrderStatusReceived},
		{Offset: 30 * time.Second, OrderStatus: models.OrderStatusPreparing, Message: "Restaurant is preparing your order", Milestone: models.OrderStatusPreparing},
		{Offset: 40 * time.Second, OrderStatus: models.OrderStatusAlmostReady, Message: "Your order is almost ready", Milestone: models.OrderStatusAlmostReady},
		{Offset: 50 * time.Second, OrderStatus: models.OrderStatusReady, DeliveryStatus: models.DeliveryAssigned, Message: "Delivery partner assigned", Milestone: models.DeliveryAssigned, kind: stepAssign},
		{Offset: 60 * time.Second, DeliveryStatus: models.DeliveryArrivingPickup, Message: "Delivery partner is heading to the restaurant", Milestone: models.DeliveryArrivingPickup},
		{Offset: 75 * time.Second, DeliveryStatus: models.DeliveryReachedPickup, Message: "Delivery partner reached the restaurant", Milestone: models.DeliveryReachedPickup},
		{Offset: 85 * time.Second, DeliveryStatus: models.DeliveryPickedUp, Message: "Your order has been picked up", Milestone: models.DeliveryPickedUp},
		{Offset: 90 * time.Second, OrderStatus: models.OrderStatusProcessing, DeliveryStatus: models.DeliveryEnroute, Message: "Delivery partner is on the way to you", Milestone: models.DeliveryEnroute, kind: stepStartSimulation},
	}
}
