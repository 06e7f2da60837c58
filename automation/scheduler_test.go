package automation_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-food-delivery/automation"
	"go-food-delivery/models"
)

func newTestScheduler(t *testing.T, orders *memOrderStore, partners *memPartnerStore, clock *fakeClock) *automation.Scheduler {
	t.Helper()
	return automation.NewScheduler(automation.Config{
		Orders:   orders,
		Partners: partners,
		Clock:    clock,
		Logger:   quietLogger(),
	})
}

// walkToEnroute fires every schedule step up to and including the enroute
// transition at t=90s.
func walkToEnroute(t *testing.T, clock *fakeClock) {
	t.Helper()
	clock.step(t, 30*time.Second) // preparing
	clock.step(t, 10*time.Second) // almost_ready
	clock.step(t, 10*time.Second) // partner assignment
	clock.step(t, 10*time.Second) // arriving_pickup
	clock.step(t, 15*time.Second) // reached_pickup
	clock.step(t, 10*time.Second) // picked_up
	clock.step(t, 5*time.Second)  // enroute, simulation begins
}

func historyStatuses(order *models.Order) []string {
	if order.Delivery == nil {
		return nil
	}
	var statuses []string
	for _, entry := range order.Delivery.Status_history {
		statuses = append(statuses, entry.Status)
	}
	return statuses
}

func TestFullTimelineDeliversOrder(t *testing.T) {
	clock := newFakeClock()
	orders := newMemOrderStore()
	partners := newMemPartnerStore()
	partners.add(testPartner("P1", "Ravi", models.PartnerFree))

	var mu sync.Mutex
	var emitted []models.DeliveryStatusEntry
	scheduler := automation.NewScheduler(automation.Config{
		Orders:   orders,
		Partners: partners,
		Clock:    clock,
		Logger:   quietLogger(),
		OnTransition: func(orderID string, entry models.DeliveryStatusEntry) {
			mu.Lock()
			emitted = append(emitted, entry)
			mu.Unlock()
		},
	})

	orders.add(testOrder("o1", clock.Now()))
	scheduler.Start("o1")

	walkToEnroute(t, clock)

	// Mid-delivery the partner is reserved and snapshotted onto the order.
	clock.blockUntilWaiters(t, 1)
	require.Equal(t, models.PartnerBusy, partners.statusOf(t, "P1"))
	mid := orders.get(t, "o1")
	require.NotNil(t, mid.Delivery_partner_id)
	require.Equal(t, "P1", *mid.Delivery_partner_id)
	require.NotNil(t, mid.Delivery.Driver)
	require.Equal(t, "Ravi", mid.Delivery.Driver.Name)
	require.Equal(t, models.OrderStatusProcessing, mid.Status)
	require.Equal(t, models.DeliveryEnroute, mid.Delivery.Status)

	for i := 0; i < automation.SimulationSteps; i++ {
		clock.step(t, automation.SimulationInterval)
	}
	scheduler.Wait("o1")

	final := orders.get(t, "o1")
	require.Equal(t, models.OrderStatusCompleted, final.Status)
	require.Equal(t, models.DeliveryDelivered, final.Delivery.Status)
	require.Equal(t, models.PartnerFree, partners.statusOf(t, "P1"))
	require.Equal(t, 0, scheduler.Active())

	// The driver parks on the customer's doorstep.
	require.NotNil(t, final.Delivery.Current_location)
	require.Equal(t, *final.Customer_location, *final.Delivery.Current_location)
	require.NotNil(t, final.Delivery.Estimated_arrival)

	// Every milestone is stamped exactly once.
	for _, milestone := range []string{
		models.OrderStatusReceived, models.OrderStatusPreparing, models.OrderStatusAlmostReady,
		models.DeliverySearching, models.DeliveryAssigned, models.DeliveryArrivingPickup,
		models.DeliveryReachedPickup, models.DeliveryPickedUp, models.DeliveryEnroute,
		models.DeliveryArriving, models.DeliveryDelivered,
	} {
		require.Contains(t, final.Status_timestamps, milestone)
	}

	// Delivery statuses recorded in the history never move backward and
	// never repeat.
	lastRank := -1
	for _, status := range historyStatuses(final) {
		rank := automation.DeliveryStatusRank(status)
		if rank < 0 {
			continue
		}
		require.Greater(t, rank, lastRank, "delivery status %s repeated or moved backward", status)
		lastRank = rank
	}
	require.Equal(t, automation.DeliveryStatusRank(models.DeliveryDelivered), lastRank)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, emitted)
	require.Equal(t, models.DeliveryDelivered, emitted[len(emitted)-1].Status)
}

func TestCancelBeforePreparingFreezesOrder(t *testing.T) {
	clock := newFakeClock()
	orders := newMemOrderStore()
	partners := newMemPartnerStore()
	partners.add(testPartner("P1", "Ravi", models.PartnerFree))
	scheduler := newTestScheduler(t, orders, partners, clock)

	orders.add(testOrder("o1", clock.Now()))
	scheduler.Start("o1")

	clock.blockUntilWaiters(t, 1)
	clock.Advance(10 * time.Second)

	// The user cancels over HTTP: the status write and the scheduler cancel
	// are two separate calls, in that order.
	orders.setStatus("o1", models.OrderStatusCancelled)
	scheduler.Cancel("o1")
	scheduler.Wait("o1")

	order := orders.get(t, "o1")
	statuses := historyStatuses(order)
	require.NotContains(t, statuses, models.OrderStatusPreparing)
	require.NotContains(t, statuses, models.DeliveryAssigned)
	require.NotContains(t, statuses, models.DeliveryEnroute)
	require.NotContains(t, order.Status_timestamps, models.OrderStatusPreparing)
	require.Nil(t, order.Delivery_partner_id)
	require.Equal(t, models.PartnerFree, partners.statusOf(t, "P1"))
	require.Equal(t, 0, scheduler.Active())
}

// Even without an explicit scheduler cancel, the guard re-read before every
// transition stops the chain once the order is terminal.
func TestTerminalGuardStopsChainWithoutCancel(t *testing.T) {
	clock := newFakeClock()
	orders := newMemOrderStore()
	partners := newMemPartnerStore()
	scheduler := newTestScheduler(t, orders, partners, clock)

	orders.add(testOrder("o1", clock.Now()))
	scheduler.Start("o1")

	clock.blockUntilWaiters(t, 1)
	orders.setStatus("o1", models.OrderStatusCancelled)
	clock.Advance(30 * time.Second)
	scheduler.Wait("o1")

	order := orders.get(t, "o1")
	require.NotContains(t, historyStatuses(order), models.OrderStatusPreparing)
	require.Equal(t, models.OrderStatusCancelled, order.Status)
	require.Equal(t, 0, scheduler.Active())
}

func TestNoPartnerLeavesOrderUnassigned(t *testing.T) {
	clock := newFakeClock()
	orders := newMemOrderStore()
	partners := newMemPartnerStore()
	scheduler := newTestScheduler(t, orders, partners, clock)

	orders.add(testOrder("o1", clock.Now()))
	scheduler.Start("o1")

	clock.step(t, 30*time.Second)
	clock.step(t, 10*time.Second)
	clock.step(t, 10*time.Second) // assignment finds nobody
	scheduler.Wait("o1")

	order := orders.get(t, "o1")
	require.Equal(t, models.OrderStatusAlmostReady, order.Status)
	require.Nil(t, order.Delivery_partner_id)
	require.Equal(t, models.DeliverySearching, order.Delivery.Status)
	require.NotContains(t, historyStatuses(order), models.DeliveryAssigned)
	require.NotContains(t, historyStatuses(order), models.DeliveryEnroute)
	require.Equal(t, 0, scheduler.Active())
}

func TestCancellationDuringSimulationStopsTicks(t *testing.T) {
	clock := newFakeClock()
	orders := newMemOrderStore()
	partners := newMemPartnerStore()
	partners.add(testPartner("P1", "Ravi", models.PartnerFree))
	scheduler := newTestScheduler(t, orders, partners, clock)

	orders.add(testOrder("o1", clock.Now()))
	scheduler.Start("o1")
	walkToEnroute(t, clock)

	for i := 0; i < 5; i++ {
		clock.step(t, automation.SimulationInterval)
	}
	clock.blockUntilWaiters(t, 1)
	snapshot := orders.get(t, "o1")

	// Cancelled by another path; the tick loop notices on its next re-read.
	orders.setStatus("o1", models.OrderStatusCancelled)
	clock.Advance(automation.SimulationInterval)
	scheduler.Wait("o1")

	frozen := orders.get(t, "o1")
	require.Equal(t, len(snapshot.Delivery.Status_history), len(frozen.Delivery.Status_history))
	require.Equal(t, *snapshot.Delivery.Current_location, *frozen.Delivery.Current_location)
	require.Equal(t, snapshot.Delivery.Status, frozen.Delivery.Status)
	require.Equal(t, 0, scheduler.Active())
}

func TestStartIsIdempotentPerOrder(t *testing.T) {
	clock := newFakeClock()
	orders := newMemOrderStore()
	partners := newMemPartnerStore()
	scheduler := newTestScheduler(t, orders, partners, clock)

	orders.add(testOrder("o1", clock.Now()))
	scheduler.Start("o1")
	scheduler.Start("o1")
	require.Equal(t, 1, scheduler.Active())

	scheduler.Cancel("o1")
	scheduler.Wait("o1")
	require.Equal(t, 0, scheduler.Active())
}

func TestMissingOrderAbandonsAutomation(t *testing.T) {
	clock := newFakeClock()
	orders := newMemOrderStore()
	partners := newMemPartnerStore()
	scheduler := newTestScheduler(t, orders, partners, clock)

	// Never added to the store: the first transition finds nothing and the
	// scheduler moves on without panicking.
	scheduler.Start("ghost")
	scheduler.Wait("ghost")
	require.Equal(t, 0, scheduler.Active())
}
