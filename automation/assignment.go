package automation

import (
	"context"

	"go-food-delivery/models"
)

// defaultRecentWindow bounds how many recent orders are scanned to find the
// round-robin continuation point.
const defaultRecentWindow = 20

// AssignmentPolicy selects the next delivery partner for an order using
// round-robin-by-recency: cycle through partners in registry creation order,
// resuming after the most recently assigned one.
type AssignmentPolicy struct {
	orders   OrderStore
	partners PartnerStore
	window   int64
}

func NewAssignmentPolicy(orders OrderStore, partners PartnerStore, window int64) *AssignmentPolicy {
	if window <= 0 {
		window = defaultRecentWindow
	}
	return &AssignmentPolicy{orders: orders, partners: partners, window: window}
}

// Next returns the partner to assign, or ErrNoPartnerAvailable. Free partners
// are preferred; when every partner is busy the policy falls back to busy ones
// rather than leaving the order stuck. It never selects an offline partner.
// The caller flips the chosen partner to busy and binds it to the order.
func (p *AssignmentPolicy) Next(ctx context.Context) (*models.DeliveryPartner, error) {
	active, err := p.partners.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, ErrNoPartnerAvailable
	}

	var free []models.DeliveryPartner
	for _, partner := range active {
		if partner.Status == models.PartnerFree {
			free = append(free, partner)
		}
	}
	pool := free
	if len(pool) == 0 {
		// Every partner is mid-delivery: double-book the least recently used
		// one instead of dropping the order.
		pool = active
	}

	lastId, err := p.orders.LastAssignedPartner(ctx, p.window)
	if err != nil {
		return nil, err
	}

	next := 0
	if lastId != "" {
		for i, partner := range pool {
			if partner.Partner_id == lastId {
				next = (i + 1) % len(pool)
				break
			}
		}
	}
	selected := pool[next]
	return &selected, nil
}
