package automation

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"go-food-delivery/models"
)

// Config wires a Scheduler. Orders and Partners are required; everything
// else falls back to production defaults.
type Config struct {
	Orders   OrderStore
	Partners PartnerStore
	Clock    Clock
	Logger   *log.Logger
	Schedule []Step
	Simulator *LocationSimulator
	// RecentWindow bounds the order scan used for round-robin continuation.
	RecentWindow int64
	// OnTransition, when set, is invoked after every persisted transition.
	// It runs on the order's automation goroutine and must not block.
	OnTransition func(orderID string, entry models.DeliveryStatusEntry)
}

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler owns the in-flight automation for every active order: one
// goroutine per order walks the schedule table, performs partner assignment
// and drives the location simulation, so all mutations to a single order are
// serialized. State is process-lifetime only; a restart drops all pending
// work (accepted at-most-once behaviour).
type Scheduler struct {
	orders   OrderStore
	partners PartnerStore
	policy   *AssignmentPolicy
	clock    Clock
	logger   *log.Logger
	schedule []Step
	sim      *LocationSimulator
	notify   func(orderID string, entry models.DeliveryStatusEntry)

	mu    sync.Mutex
	tasks map[string]*task
}

func NewScheduler(cfg Config) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[automation] ", log.LstdFlags)
	}
	if cfg.Schedule == nil {
		cfg.Schedule = DefaultSchedule()
	}
	if cfg.Simulator == nil {
		cfg.Simulator = NewLocationSimulator()
	}
	return &Scheduler{
		orders:   cfg.Orders,
		partners: cfg.Partners,
		policy:   NewAssignmentPolicy(cfg.Orders, cfg.Partners, cfg.RecentWindow),
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		schedule: cfg.Schedule,
		sim:      cfg.Simulator,
		notify:   cfg.OnTransition,
		tasks:    make(map[string]*task),
	}
}

// Start begins the delivery timeline for an order. Starting an order that is
// already being tracked is a no-op. The call returns immediately; nothing on
// the request path waits for a transition.
func (s *Scheduler) Start(orderID string) {
	s.mu.Lock()
	if _, exists := s.tasks[orderID]; exists {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel, done: make(chan struct{})}
	s.tasks[orderID] = t
	s.mu.Unlock()

	go s.run(ctx, orderID, t)
}

// Cancel stops all pending and periodic work for an order. Cancellation is
// cooperative: a transition already past its guard may still complete once.
func (s *Scheduler) Cancel(orderID string) {
	s.mu.Lock()
	t := s.tasks[orderID]
	s.mu.Unlock()
	if t != nil {
		t.cancel()
	}
}

// Wait blocks until the order's automation goroutine has exited. Orders that
// were never started return immediately.
func (s *Scheduler) Wait(orderID string) {
	s.mu.Lock()
	t := s.tasks[orderID]
	s.mu.Unlock()
	if t != nil {
		<-t.done
	}
}

// Active reports how many orders currently have in-flight automation.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Scheduler) remove(orderID string) {
	s.mu.Lock()
	delete(s.tasks, orderID)
	s.mu.Unlock()
}

type stepAction int

const (
	actionContinue stepAction = iota
	actionAbort
	actionSimulate
)

func (s *Scheduler) run(ctx context.Context, orderID string, t *task) {
	defer close(t.done)
	defer s.remove(orderID)
	defer t.cancel()

	elapsed := time.Duration(0)
	simulate := false
	for _, step := range s.schedule {
		if !s.wait(ctx, step.Offset-elapsed) {
			return
		}
		elapsed = step.Offset

		switch s.applyStep(ctx, orderID, step) {
		case actionAbort:
			return
		case actionSimulate:
			simulate = true
		}
	}
	if simulate {
		s.simulate(ctx, orderID)
	}
}

// applyStep re-reads the order and re-validates the terminal-state guard
// immediately before acting, so a cancellation between two timer firings is
// always respected.
func (s *Scheduler) applyStep(ctx context.Context, orderID string, step Step) stepAction {
	order, err := s.fetch(ctx, orderID)
	if err != nil {
		s.logger.Printf("order %s: abandoning %q transition: %v", orderID, step.Milestone, err)
		return actionAbort
	}
	if models.IsTerminalOrderStatus(order.Status) {
		return actionAbort
	}
	// First arrival wins: a milestone reached by another path is not replayed.
	if step.Milestone != "" && order.Status_timestamps != nil {
		if _, reached := order.Status_timestamps[step.Milestone]; reached {
			return actionContinue
		}
	}
	// Delivery status only moves forward, even under concurrent manual edits.
	if step.DeliveryStatus != "" && order.Delivery != nil &&
		DeliveryStatusRank(order.Delivery.Status) >= DeliveryStatusRank(step.DeliveryStatus) {
		return actionContinue
	}

	if step.kind == stepAssign {
		if !s.assignPartner(ctx, order, step) {
			return actionAbort
		}
		return actionContinue
	}

	now := s.clock.Now()
	entry := models.DeliveryStatusEntry{
		Status:    step.DeliveryStatus,
		Timestamp: now,
		Message:   step.Message,
	}
	if entry.Status == "" {
		entry.Status = step.OrderStatus
	}
	ok, err := s.orders.ApplyTransition(ctx, orderID, TransitionUpdate{
		OrderStatus:    step.OrderStatus,
		DeliveryStatus: step.DeliveryStatus,
		Entry:          &entry,
		Milestone:      step.Milestone,
		At:             now,
	})
	if err != nil {
		s.logger.Printf("order %s: %q transition lost: %v", orderID, step.Milestone, err)
		return actionContinue
	}
	if !ok {
		return actionAbort
	}
	s.emit(orderID, entry)
	if step.kind == stepStartSimulation {
		return actionSimulate
	}
	return actionContinue
}

// assignPartner seeds the embedded delivery document, consults the assignment
// policy and binds the selected partner. When no partner is available the
// order is left unassigned and the rest of the chain never starts.
func (s *Scheduler) assignPartner(ctx context.Context, order *models.Order, step Step) bool {
	orderID := order.Order_id
	now := s.clock.Now()

	searching := models.DeliveryStatusEntry{
		Status:    models.DeliverySearching,
		Timestamp: now,
		Message:   "Looking for a delivery partner near the restaurant",
	}
	ok, err := s.orders.ApplyTransition(ctx, orderID, TransitionUpdate{
		DeliveryStatus:     models.DeliverySearching,
		Entry:              &searching,
		Milestone:          models.DeliverySearching,
		At:                 now,
		RestaurantLocation: order.Restaurant_location,
		CustomerLocation:   order.Customer_location,
	})
	if err != nil {
		s.logger.Printf("order %s: could not start partner search: %v", orderID, err)
		return false
	}
	if !ok {
		return false
	}
	s.emit(orderID, searching)

	partner, err := s.policy.Next(ctx)
	if errors.Is(err, ErrNoPartnerAvailable) {
		s.logger.Printf("order %s: no delivery partner available, leaving order unassigned", orderID)
		return false
	}
	if err != nil {
		s.logger.Printf("order %s: partner selection failed: %v", orderID, err)
		return false
	}

	wasFree := partner.Status == models.PartnerFree
	if wasFree {
		if err := s.partners.SetStatus(ctx, partner.Partner_id, models.PartnerBusy); err != nil {
			s.logger.Printf("order %s: could not mark partner %s busy: %v", orderID, partner.Partner_id, err)
			return false
		}
	}

	now = s.clock.Now()
	assigned := models.DeliveryStatusEntry{
		Status:    models.DeliveryAssigned,
		Timestamp: now,
		Message:   partnerName(partner) + " is picking up your order",
	}
	ok, err = s.orders.ApplyTransition(ctx, orderID, TransitionUpdate{
		OrderStatus:    step.OrderStatus,
		DeliveryStatus: models.DeliveryAssigned,
		Entry:          &assigned,
		Milestone:      models.DeliveryAssigned,
		At:             now,
		Partner:        partner,
	})
	if err != nil || !ok {
		// Do not strand the partner if the bind did not land.
		if wasFree {
			if ferr := s.partners.SetStatus(ctx, partner.Partner_id, models.PartnerFree); ferr != nil {
				s.logger.Printf("order %s: could not release partner %s: %v", orderID, partner.Partner_id, ferr)
			}
		}
		if err != nil {
			s.logger.Printf("order %s: partner bind failed: %v", orderID, err)
		}
		return false
	}
	s.emit(orderID, assigned)
	return true
}

// simulate runs the per-tick location loop until the final step, checking the
// order's live status every tick so an external cancellation stops it.
func (s *Scheduler) simulate(ctx context.Context, orderID string) {
	order, err := s.fetch(ctx, orderID)
	if err != nil {
		s.logger.Printf("order %s: simulation not started: %v", orderID, err)
		return
	}
	from, to := simulationEndpoints(order)
	if from == nil || to == nil {
		s.logger.Printf("order %s: missing route coordinates, skipping simulation", orderID)
		return
	}

	for step := 1; step <= s.sim.Steps; step++ {
		if !s.wait(ctx, s.sim.Interval) {
			return
		}
		order, err = s.fetch(ctx, orderID)
		if err != nil {
			s.logger.Printf("order %s: stopping simulation: %v", orderID, err)
			return
		}
		if models.IsTerminalOrderStatus(order.Status) {
			return
		}

		now := s.clock.Now()
		if step == s.sim.Steps {
			s.completeDelivery(ctx, order, *to, now)
			return
		}

		loc := s.sim.PointAt(*from, *to, step)
		eta := s.sim.ETAAt(now, step)
		update := TransitionUpdate{
			CurrentLocation:  &loc,
			EstimatedArrival: &eta,
			At:               now,
		}
		var entry *models.DeliveryStatusEntry
		if s.sim.Steps-step <= arrivingThreshold && order.Delivery != nil &&
			DeliveryStatusRank(order.Delivery.Status) < DeliveryStatusRank(models.DeliveryArriving) {
			entry = &models.DeliveryStatusEntry{
				Status:    models.DeliveryArriving,
				Timestamp: now,
				Message:   "Delivery partner is almost at your door",
			}
			update.DeliveryStatus = models.DeliveryArriving
			update.Milestone = models.DeliveryArriving
			update.Entry = entry
		}
		ok, err := s.orders.ApplyTransition(ctx, orderID, update)
		if err != nil {
			s.logger.Printf("order %s: location update lost: %v", orderID, err)
			continue
		}
		if !ok {
			return
		}
		if entry != nil {
			s.emit(orderID, *entry)
		}
	}
}

// completeDelivery is the sole terminal transition for a normally completing
// order: it marks the delivery delivered, the order completed and frees the
// partner exactly once.
func (s *Scheduler) completeDelivery(ctx context.Context, order *models.Order, at models.Location, now time.Time) {
	entry := models.DeliveryStatusEntry{
		Status:    models.DeliveryDelivered,
		Timestamp: now,
		Message:   "Your order has been delivered. Enjoy your meal!",
	}
	ok, err := s.orders.ApplyTransition(ctx, order.Order_id, TransitionUpdate{
		OrderStatus:      models.OrderStatusCompleted,
		DeliveryStatus:   models.DeliveryDelivered,
		Entry:            &entry,
		Milestone:        models.DeliveryDelivered,
		At:               now,
		CurrentLocation:  &at,
		EstimatedArrival: &now,
	})
	if err != nil {
		s.logger.Printf("order %s: completion write failed: %v", order.Order_id, err)
		return
	}
	if !ok {
		// Another path finished the order first; the partner was or will be
		// released there.
		return
	}
	if order.Delivery_partner_id != nil {
		if err := s.partners.SetStatus(ctx, *order.Delivery_partner_id, models.PartnerFree); err != nil {
			s.logger.Printf("order %s: could not free partner %s: %v", order.Order_id, *order.Delivery_partner_id, err)
		}
	}
	s.emit(order.Order_id, entry)
}

func (s *Scheduler) fetch(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *Scheduler) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-s.clock.After(d):
		return true
	}
}

func (s *Scheduler) emit(orderID string, entry models.DeliveryStatusEntry) {
	if s.notify != nil {
		s.notify(orderID, entry)
	}
}

func partnerName(p *models.DeliveryPartner) string {
	if p.Name != nil && *p.Name != "" {
		return *p.Name
	}
	return "Your delivery partner"
}

func simulationEndpoints(order *models.Order) (from, to *models.Location) {
	if order.Delivery != nil {
		from, to = order.Delivery.Restaurant_location, order.Delivery.Customer_location
	}
	if from == nil {
		from = order.Restaurant_location
	}
	if to == nil {
		to = order.Customer_location
	}
	return from, to
}
