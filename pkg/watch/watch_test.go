package watch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taxihub/pkg/logger"
	"taxihub/pkg/models"
	"taxihub/storage/memory"
)

func pendingOrder(id string) *models.Order {
	return &models.Order{
		ID:             id,
		UserID:         "passenger-1",
		PickupLocation: "A",
		Destination:    "B",
		Price:          150,
		Status:         models.StatusPending,
		Timestamp:      time.Now().UnixMilli(),
	}
}

func availableFilter() models.OrderFilter {
	return models.OrderFilter{Statuses: []string{models.StatusPending}, UnassignedOnly: true}
}

func recv(t *testing.T, sub *Subscription) []*models.Order {
	t.Helper()
	select {
	case snapshot := <-sub.C:
		return snapshot
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_, err := store.Order().Create(ctx, pendingOrder("o-1"))
	require.NoError(t, err)

	hub := NewHub(store.Order(), logger.Nop())
	sub, err := hub.Subscribe(ctx, availableFilter())
	require.NoError(t, err)
	defer sub.Close()

	snapshot := recv(t, sub)
	require.Len(t, snapshot, 1)
	require.Equal(t, "o-1", snapshot[0].ID)
}

func TestChangeRedeliversFullSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	hub := NewHub(store.Order(), logger.Nop())

	sub, err := hub.Subscribe(ctx, availableFilter())
	require.NoError(t, err)
	defer sub.Close()
	require.Empty(t, recv(t, sub))

	_, err = store.Order().Create(ctx, pendingOrder("o-1"))
	require.NoError(t, err)
	hub.OrdersChanged(ctx)
	require.Len(t, recv(t, sub), 1)

	_, err = store.Order().Create(ctx, pendingOrder("o-2"))
	require.NoError(t, err)
	hub.OrdersChanged(ctx)
	require.Len(t, recv(t, sub), 2)
}

func TestClaimedOrderLeavesAvailableSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_, err := store.Order().Create(ctx, pendingOrder("o-1"))
	require.NoError(t, err)

	hub := NewHub(store.Order(), logger.Nop())
	sub, err := hub.Subscribe(ctx, availableFilter())
	require.NoError(t, err)
	defer sub.Close()
	require.Len(t, recv(t, sub), 1)

	ok, err := store.Order().Claim(ctx, "o-1", "driver-1")
	require.NoError(t, err)
	require.True(t, ok)
	hub.OrdersChanged(ctx)

	require.Empty(t, recv(t, sub))
}

func TestLatestSnapshotWins(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	hub := NewHub(store.Order(), logger.Nop())

	sub, err := hub.Subscribe(ctx, availableFilter())
	require.NoError(t, err)
	defer sub.Close()
	require.Empty(t, recv(t, sub))

	// Nobody is reading; an unconsumed snapshot must be replaced, not queued.
	_, err = store.Order().Create(ctx, pendingOrder("o-1"))
	require.NoError(t, err)
	hub.OrdersChanged(ctx)
	_, err = store.Order().Create(ctx, pendingOrder("o-2"))
	require.NoError(t, err)
	hub.OrdersChanged(ctx)

	require.Len(t, recv(t, sub), 2)
}

func TestCloseReleasesSubscription(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	hub := NewHub(store.Order(), logger.Nop())

	sub, err := hub.Subscribe(ctx, availableFilter())
	require.NoError(t, err)
	require.Equal(t, 1, hub.Subscribers())
	require.Empty(t, recv(t, sub))

	sub.Close()
	require.Equal(t, 0, hub.Subscribers())

	// Closing twice and notifying after close must not panic.
	sub.Close()
	hub.OrdersChanged(ctx)

	_, ok := <-sub.C
	require.False(t, ok)
}
