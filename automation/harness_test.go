package automation_test

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"go-food-delivery/automation"
	"go-food-delivery/models"
)

// fakeClock drives the scheduler deterministically. Advance fires every timer
// whose deadline has passed; blockUntilWaiters lets a test wait for the
// scheduler goroutine to park on its next timer before advancing again.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []clockWaiter
}

type clockWaiter struct {
	at time.Time
	ch chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	c.waiters = append(c.waiters, clockWaiter{at: c.now.Add(d), ch: ch})
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		if !w.at.After(c.now) {
			w.ch <- c.now
		} else {
			remaining = append(remaining, w)
		}
	}
	c.waiters = remaining
}

func (c *fakeClock) blockUntilWaiters(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		c.mu.Lock()
		count := len(c.waiters)
		c.mu.Unlock()
		if count >= n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d pending timer(s)", n)
		}
		time.Sleep(time.Millisecond)
	}
}

// step fires the scheduler's pending timer and waits for it to park again.
func (c *fakeClock) step(t *testing.T, d time.Duration) {
	t.Helper()
	c.blockUntilWaiters(t, 1)
	c.Advance(d)
}

// memOrderStore is an in-memory OrderStore with the same guard semantics as
// the Mongo implementation.
type memOrderStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	recent []string
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{orders: make(map[string]*models.Order)}
}

func (s *memOrderStore) add(order *models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.Order_id] = order
	s.recent = append(s.recent, order.Order_id)
}

func (s *memOrderStore) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, nil
	}
	return cloneOrder(order), nil
}

func (s *memOrderStore) ApplyTransition(ctx context.Context, orderID string, u automation.TransitionUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return false, nil
	}
	if models.IsTerminalOrderStatus(order.Status) {
		return false, nil
	}

	ensureDelivery := func() {
		if order.Delivery == nil {
			order.Delivery = &models.Delivery{}
		}
	}
	if u.OrderStatus != "" {
		order.Status = u.OrderStatus
	}
	if u.DeliveryStatus != "" {
		ensureDelivery()
		order.Delivery.Status = u.DeliveryStatus
	}
	if u.Milestone != "" {
		if order.Status_timestamps == nil {
			order.Status_timestamps = make(map[string]time.Time)
		}
		if _, reached := order.Status_timestamps[u.Milestone]; !reached {
			order.Status_timestamps[u.Milestone] = u.At
		}
	}
	if u.Partner != nil {
		partnerID := u.Partner.Partner_id
		order.Delivery_partner_id = &partnerID
		ensureDelivery()
		driver := models.DeliveryDriver{Partner_id: partnerID}
		if u.Partner.Name != nil {
			driver.Name = *u.Partner.Name
		}
		if u.Partner.Phone != nil {
			driver.Phone = *u.Partner.Phone
		}
		if u.Partner.Vehicle_type != nil {
			driver.Vehicle_type = *u.Partner.Vehicle_type
		}
		if u.Partner.Vehicle_number != nil {
			driver.Vehicle_number = *u.Partner.Vehicle_number
		}
		order.Delivery.Driver = &driver
	}
	if u.RestaurantLocation != nil {
		ensureDelivery()
		restaurant := *u.RestaurantLocation
		current := restaurant
		order.Delivery.Restaurant_location = &restaurant
		order.Delivery.Current_location = &current
	}
	if u.CustomerLocation != nil {
		ensureDelivery()
		customer := *u.CustomerLocation
		order.Delivery.Customer_location = &customer
	}
	if u.CurrentLocation != nil {
		ensureDelivery()
		current := *u.CurrentLocation
		order.Delivery.Current_location = &current
	}
	if u.EstimatedArrival != nil {
		ensureDelivery()
		eta := *u.EstimatedArrival
		order.Delivery.Estimated_arrival = &eta
	}
	if u.Entry != nil {
		ensureDelivery()
		order.Delivery.Status_history = append(order.Delivery.Status_history, *u.Entry)
	}
	order.Updated_at = u.At
	return true, nil
}

func (s *memOrderStore) LastAssignedPartner(ctx context.Context, window int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scanned := int64(0)
	for i := len(s.recent) - 1; i >= 0 && scanned < window; i-- {
		scanned++
		order := s.orders[s.recent[i]]
		if order != nil && order.Delivery_partner_id != nil && *order.Delivery_partner_id != "" {
			return *order.Delivery_partner_id, nil
		}
	}
	return "", nil
}

func (s *memOrderStore) get(t *testing.T, orderID string) *models.Order {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		t.Fatalf("order %s not in store", orderID)
	}
	return cloneOrder(order)
}

// setStatus mimics an external mutation (e.g. a user cancelling over HTTP).
func (s *memOrderStore) setStatus(orderID string, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.orders[orderID]; ok {
		order.Status = status
	}
}

func cloneOrder(order *models.Order) *models.Order {
	clone := *order
	if order.Status_timestamps != nil {
		clone.Status_timestamps = make(map[string]time.Time, len(order.Status_timestamps))
		for k, v := range order.Status_timestamps {
			clone.Status_timestamps[k] = v
		}
	}
	if order.Delivery != nil {
		delivery := *order.Delivery
		delivery.Status_history = append([]models.DeliveryStatusEntry(nil), order.Delivery.Status_history...)
		clone.Delivery = &delivery
	}
	return &clone
}

// memPartnerStore keeps partners in registration order, like the collection
// sorted by created_at.
type memPartnerStore struct {
	mu       sync.Mutex
	partners []*models.DeliveryPartner
}

func newMemPartnerStore() *memPartnerStore {
	return &memPartnerStore{}
}

func (s *memPartnerStore) add(partner *models.DeliveryPartner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partners = append(s.partners, partner)
}

func (s *memPartnerStore) ListActive(ctx context.Context) ([]models.DeliveryPartner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []models.DeliveryPartner
	for _, partner := range s.partners {
		if partner.Status == models.PartnerFree || partner.Status == models.PartnerBusy {
			active = append(active, *partner)
		}
	}
	return active, nil
}

func (s *memPartnerStore) FindByID(ctx context.Context, partnerID string) (*models.DeliveryPartner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, partner := range s.partners {
		if partner.Partner_id == partnerID {
			clone := *partner
			return &clone, nil
		}
	}
	return nil, automation.ErrPartnerNotFound
}

func (s *memPartnerStore) SetStatus(ctx context.Context, partnerID string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, partner := range s.partners {
		if partner.Partner_id == partnerID {
			partner.Status = status
			return nil
		}
	}
	return automation.ErrPartnerNotFound
}

func (s *memPartnerStore) statusOf(t *testing.T, partnerID string) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, partner := range s.partners {
		if partner.Partner_id == partnerID {
			return partner.Status
		}
	}
	t.Fatalf("partner %s not in store", partnerID)
	return ""
}

func strptr(s string) *string { return &s }

func testPartner(id string, name string, status string) *models.DeliveryPartner {
	return &models.DeliveryPartner{
		Partner_id:     id,
		Name:           strptr(name),
		Phone:          strptr("+919999900000"),
		Vehicle_type:   strptr("Bike"),
		Vehicle_number: strptr("KA-01-" + id),
		Status:         status,
	}
}

func testOrder(id string, createdAt time.Time) *models.Order {
	return &models.Order{
		Order_id:            id,
		Status:              models.OrderStatusPending,
		Restaurant_location: &models.Location{Lat: 12.9716, Lng: 77.5946},
		Customer_location:   &models.Location{Lat: 12.9352, Lng: 77.6245},
		Status_timestamps:   map[string]time.Time{models.OrderStatusPending: createdAt},
		Created_at:          createdAt,
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
