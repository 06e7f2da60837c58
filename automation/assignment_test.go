package automation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-food-delivery/automation"
	"go-food-delivery/models"
)

func recordAssignment(t *testing.T, orders *memOrderStore, orderID string, partnerID string, at time.Time) {
	t.Helper()
	order := testOrder(orderID, at)
	order.Delivery_partner_id = &partnerID
	orders.add(order)
}

func TestRoundRobinCyclesInCreationOrder(t *testing.T) {
	orders := newMemOrderStore()
	partners := newMemPartnerStore()
	partners.add(testPartner("A", "Arun", models.PartnerFree))
	partners.add(testPartner("B", "Bela", models.PartnerFree))
	partners.add(testPartner("C", "Chitra", models.PartnerFree))

	policy := automation.NewAssignmentPolicy(orders, partners, 20)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// Scenario: four consecutive orders over three partners wraps back to the
	// first one.
	var sequence []string
	for i, orderID := range []string{"o1", "o2", "o3", "o4"} {
		partner, err := policy.Next(context.Background())
		require.NoError(t, err)
		sequence = append(sequence, partner.Partner_id)
		recordAssignment(t, orders, orderID, partner.Partner_id, at.Add(time.Duration(i)*time.Minute))
	}
	require.Equal(t, []string{"A", "B", "C", "A"}, sequence)
}

func TestRoundRobinAssignsEachPartnerOnce(t *testing.T) {
	orders := newMemOrderStore()
	partners := newMemPartnerStore()
	ids := []string{"p1", "p2", "p3", "p4", "p5"}
	for _, id := range ids {
		partners.add(testPartner(id, "Partner "+id, models.PartnerFree))
	}

	policy := automation.NewAssignmentPolicy(orders, partners, 20)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	seen := make(map[string]int)
	for i := 0; i < len(ids); i++ {
		partner, err := policy.Next(context.Background())
		require.NoError(t, err)
		seen[partner.Partner_id]++
		recordAssignment(t, orders, "order-"+partner.Partner_id, partner.Partner_id, at.Add(time.Duration(i)*time.Minute))
	}
	for _, id := range ids {
		require.Equal(t, 1, seen[id], "partner %s should be assigned exactly once", id)
	}
}

func TestAssignmentPrefersFreePartners(t *testing.T) {
	orders := newMemOrderStore()
	partners := newMemPartnerStore()
	partners.add(testPartner("A", "Arun", models.PartnerBusy))
	partners.add(testPartner("B", "Bela", models.PartnerFree))

	policy := automation.NewAssignmentPolicy(orders, partners, 20)
	partner, err := policy.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "B", partner.Partner_id)
}

// Busy fallback is a documented exception: when everyone is mid-delivery the
// policy double-books rather than dropping the order.
func TestAssignmentFallsBackToBusyPartners(t *testing.T) {
	orders := newMemOrderStore()
	partners := newMemPartnerStore()
	partners.add(testPartner("A", "Arun", models.PartnerBusy))
	partners.add(testPartner("B", "Bela", models.PartnerBusy))

	policy := automation.NewAssignmentPolicy(orders, partners, 20)
	recordAssignment(t, orders, "o1", "A", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	partner, err := policy.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "B", partner.Partner_id)
}

func TestAssignmentNeverPicksOfflinePartners(t *testing.T) {
	orders := newMemOrderStore()
	partners := newMemPartnerStore()
	partners.add(testPartner("A", "Arun", models.PartnerOffline))
	partners.add(testPartner("B", "Bela", models.PartnerFree))
	partners.add(testPartner("C", "Chitra", models.PartnerOffline))

	policy := automation.NewAssignmentPolicy(orders, partners, 20)
	for i := 0; i < 3; i++ {
		partner, err := policy.Next(context.Background())
		require.NoError(t, err)
		require.Equal(t, "B", partner.Partner_id)
		recordAssignment(t, orders, "order-"+partner.Partner_id, "B", time.Now())
	}
}

func TestAssignmentWithNoPartners(t *testing.T) {
	orders := newMemOrderStore()
	partners := newMemPartnerStore()

	policy := automation.NewAssignmentPolicy(orders, partners, 20)
	_, err := policy.Next(context.Background())
	require.ErrorIs(t, err, automation.ErrNoPartnerAvailable)
}

func TestAssignmentAllOfflineMeansNoPartner(t *testing.T) {
	orders := newMemOrderStore()
	partners := newMemPartnerStore()
	partners.add(testPartner("A", "Arun", models.PartnerOffline))

	policy := automation.NewAssignmentPolicy(orders, partners, 20)
	_, err := policy.Next(context.Background())
	require.ErrorIs(t, err, automation.ErrNoPartnerAvailable)
}

// When the last-assigned partner is no longer in the eligible subset the
// rotation restarts from the front rather than erroring.
func TestContinuationPartnerGoneDefaultsToFirst(t *testing.T) {
	orders := newMemOrderStore()
	partners := newMemPartnerStore()
	partners.add(testPartner("B", "Bela", models.PartnerFree))
	partners.add(testPartner("C", "Chitra", models.PartnerFree))

	// The most recent assignment went to a partner who has since gone offline.
	recordAssignment(t, orders, "o1", "A", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	policy := automation.NewAssignmentPolicy(orders, partners, 20)
	partner, err := policy.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "B", partner.Partner_id)
}

func TestContinuationRespectsScanWindow(t *testing.T) {
	orders := newMemOrderStore()
	partners := newMemPartnerStore()
	partners.add(testPartner("A", "Arun", models.PartnerFree))
	partners.add(testPartner("B", "Bela", models.PartnerFree))

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	// An old assignment to A, followed by a window's worth of unassigned orders.
	recordAssignment(t, orders, "old", "A", at)
	for i := 0; i < 5; i++ {
		orders.add(testOrder("pad-"+string(rune('a'+i)), at.Add(time.Duration(i+1)*time.Minute)))
	}

	policy := automation.NewAssignmentPolicy(orders, partners, 5)
	partner, err := policy.Next(context.Background())
	require.NoError(t, err)
	// The continuation point fell outside the window, so rotation restarts.
	require.Equal(t, "A", partner.Partner_id)
}
