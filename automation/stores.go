package automation

import (
	"context"
	"time"

	"go-food-delivery/models"
)

// TransitionUpdate is one read-modify-write against an order. Zero-value
// fields are left untouched. Implementations must reject the write when the
// order has already reached a terminal status, so a timer firing after a
// cancellation can never mutate the document.
type TransitionUpdate struct {
	OrderStatus    string
	DeliveryStatus string
	Entry          *models.DeliveryStatusEntry
	Milestone      string
	At             time.Time

	// Set on the assignment transition.
	Partner *models.DeliveryPartner

	// Set when seeding the embedded delivery document.
	RestaurantLocation *models.Location
	CustomerLocation   *models.Location

	// Set on simulation ticks.
	CurrentLocation  *models.Location
	EstimatedArrival *time.Time
}

// OrderStore is the order persistence boundary the automation drives.
type OrderStore interface {
	FindByID(ctx context.Context, orderID string) (*models.Order, error)

	// ApplyTransition performs the guarded write. It reports false when the
	// guard rejected it (terminal order, or order gone) without error.
	ApplyTransition(ctx context.Context, orderID string, update TransitionUpdate) (bool, error)

	// LastAssignedPartner scans the most recent window orders and returns the
	// partner id of the most recently assigned one, or "" when none.
	LastAssignedPartner(ctx context.Context, window int64) (string, error)
}

// PartnerStore is the delivery partner persistence boundary.
type PartnerStore interface {
	// ListActive returns partners with status free or busy, ordered by
	// creation time ascending. Offline partners are never returned.
	ListActive(ctx context.Context) ([]models.DeliveryPartner, error)

	FindByID(ctx context.Context, partnerID string) (*models.DeliveryPartner, error)

	// SetStatus flips partner availability. Setting the status a partner
	// already has is a no-op, so retries and races stay safe.
	SetStatus(ctx context.Context, partnerID string, status string) error
}
