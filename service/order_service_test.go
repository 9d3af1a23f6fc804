package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"taxihub/pkg/logger"
	"taxihub/pkg/models"
	"taxihub/storage/memory"
)

func newTestOrderService(t *testing.T) (OrderService, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := NewOrderService(store, Deps{Pricing: Pricing{BaseFare: 150, Spread: 0}}, logger.Nop())
	return svc, store
}

func createPendingOrder(t *testing.T, svc OrderService, userID string) *models.Order {
	t.Helper()
	order, err := svc.Create(context.Background(), userID, CreateOrderInput{
		PickupLocation: "Central Station",
		Destination:    "Airport",
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrder(t *testing.T) {
	svc, _ := newTestOrderService(t)

	order := createPendingOrder(t, svc, "passenger-1")

	require.NotEmpty(t, order.ID)
	require.Equal(t, models.StatusPending, order.Status)
	require.Nil(t, order.DriverID)
	require.Equal(t, 150.0, order.Price)
	require.NotZero(t, order.Timestamp)

	got, err := svc.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, got.ID)
}

func TestClaimRaceExactlyOneWinner(t *testing.T) {
	svc, _ := newTestOrderService(t)
	order := createPendingOrder(t, svc, "passenger-1")

	const drivers = 16
	errs := make([]error, drivers)
	var wg sync.WaitGroup
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Claim(context.Background(), order.ID, fmt.Sprintf("driver-%d", i))
		}(i)
	}
	wg.Wait()

	winners := 0
	var winner string
	for i, err := range errs {
		if err == nil {
			winners++
			winner = fmt.Sprintf("driver-%d", i)
			continue
		}
		require.ErrorIs(t, err, models.ErrOrderTaken, "losers must learn they lost")
	}
	require.Equal(t, 1, winners)

	got, err := svc.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusAccepted, got.Status)
	require.NotNil(t, got.DriverID)
	require.Equal(t, winner, *got.DriverID)
}

func TestClaimedOrderIsNeverPendingWithDriver(t *testing.T) {
	svc, _ := newTestOrderService(t)
	order := createPendingOrder(t, svc, "passenger-1")

	require.NoError(t, svc.Claim(context.Background(), order.ID, "driver-1"))
	require.NoError(t, svc.Start(context.Background(), order.ID, "driver-1"))
	require.NoError(t, svc.Complete(context.Background(), order.ID, "driver-1"))

	got, err := svc.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DriverID)
	require.NotEqual(t, models.StatusPending, got.Status)
}

func TestClaimRejectsDriverWithActiveOrder(t *testing.T) {
	svc, _ := newTestOrderService(t)
	first := createPendingOrder(t, svc, "passenger-1")
	second := createPendingOrder(t, svc, "passenger-2")

	require.NoError(t, svc.Claim(context.Background(), first.ID, "driver-1"))

	err := svc.Claim(context.Background(), second.ID, "driver-1")
	require.ErrorIs(t, err, models.ErrDriverHasActive)

	// Completing the active order frees the driver.
	require.NoError(t, svc.Complete(context.Background(), first.ID, "driver-1"))
	require.NoError(t, svc.Claim(context.Background(), second.ID, "driver-1"))
}

func TestClaimMissingOrder(t *testing.T) {
	svc, _ := newTestOrderService(t)

	err := svc.Claim(context.Background(), "no-such-order", "driver-1")
	require.ErrorIs(t, err, models.ErrOrderGone)
}

func TestClaimCancelledOrder(t *testing.T) {
	svc, _ := newTestOrderService(t)
	order := createPendingOrder(t, svc, "passenger-1")

	require.NoError(t, svc.Cancel(context.Background(), order.ID, "passenger-1"))

	err := svc.Claim(context.Background(), order.ID, "driver-1")
	require.ErrorIs(t, err, models.ErrOrderNotAvailable)
}

func TestCancelRules(t *testing.T) {
	svc, _ := newTestOrderService(t)
	order := createPendingOrder(t, svc, "passenger-1")

	// Only the owning passenger may cancel.
	err := svc.Cancel(context.Background(), order.ID, "passenger-2")
	require.ErrorIs(t, err, models.ErrNotOwner)

	// Cancelling a claimed order fails and leaves the record unchanged.
	require.NoError(t, svc.Claim(context.Background(), order.ID, "driver-1"))
	err = svc.Cancel(context.Background(), order.ID, "passenger-1")
	require.ErrorIs(t, err, models.ErrOrderNotAvailable)

	got, err := svc.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusAccepted, got.Status)
	require.NotNil(t, got.DriverID)
}

func TestCancelPendingOrderIsSoft(t *testing.T) {
	svc, _ := newTestOrderService(t)
	order := createPendingOrder(t, svc, "passenger-1")

	require.NoError(t, svc.Cancel(context.Background(), order.ID, "passenger-1"))

	// Soft-cancel keeps the record for history.
	got, err := svc.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCancelled, got.Status)

	// But it no longer shows up as available.
	available, err := svc.Find(context.Background(), models.OrderFilter{
		Statuses:       []string{models.StatusPending},
		UnassignedOnly: true,
	})
	require.NoError(t, err)
	require.Empty(t, available)
}

func TestCompleteRequiresOwnership(t *testing.T) {
	svc, _ := newTestOrderService(t)
	order := createPendingOrder(t, svc, "passenger-1")
	require.NoError(t, svc.Claim(context.Background(), order.ID, "driver-1"))

	err := svc.Complete(context.Background(), order.ID, "driver-2")
	require.ErrorIs(t, err, models.ErrNotOwner)

	got, err := svc.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusAccepted, got.Status)
}

func TestCompleteCountsEarningsOnce(t *testing.T) {
	svc, _ := newTestOrderService(t)
	ctx := context.Background()
	order := createPendingOrder(t, svc, "passenger-1")

	require.NoError(t, svc.Claim(ctx, order.ID, "driver-1"))
	require.NoError(t, svc.Complete(ctx, order.ID, "driver-1"))

	stats, err := svc.DriverStats(ctx, "driver-1")
	require.NoError(t, err)
	require.Equal(t, 1, stats.CompletedOrders)
	require.Equal(t, order.Price, stats.TotalEarnings)

	// A second Complete is a failure, not a double-count.
	err = svc.Complete(ctx, order.ID, "driver-1")
	require.ErrorIs(t, err, models.ErrOrderNotAvailable)

	stats, err = svc.DriverStats(ctx, "driver-1")
	require.NoError(t, err)
	require.Equal(t, 1, stats.CompletedOrders)
	require.Equal(t, order.Price, stats.TotalEarnings)
}

func TestStartTransition(t *testing.T) {
	svc, _ := newTestOrderService(t)
	ctx := context.Background()
	order := createPendingOrder(t, svc, "passenger-1")

	// Start is only valid from ACCEPTED, and only for the owner.
	err := svc.Start(ctx, order.ID, "driver-1")
	require.ErrorIs(t, err, models.ErrNotOwner)

	require.NoError(t, svc.Claim(ctx, order.ID, "driver-1"))
	require.NoError(t, svc.Start(ctx, order.ID, "driver-1"))

	got, err := svc.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, got.Status)

	err = svc.Start(ctx, order.ID, "driver-1")
	require.ErrorIs(t, err, models.ErrOrderNotAvailable)

	require.NoError(t, svc.Complete(ctx, order.ID, "driver-1"))
}
