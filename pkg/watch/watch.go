// Package watch implements snapshot subscriptions over the order store.
//
// A subscription is a live filtered view: every time any order changes, the
// full current set of orders matching the filter is re-delivered on the
// subscription channel. Consumers diff against previous state only for
// rendering; correctness never depends on deltas. A subscription is a held
// resource and must be released with Close.
package watch

import (
	"context"
	"sync"

	"taxihub/pkg/logger"
	"taxihub/pkg/models"
	"taxihub/storage"
)

type Subscription struct {
	// C carries full snapshots of the matching set. It holds at most one
	// pending snapshot; a newer snapshot replaces an unconsumed older one.
	C chan []*models.Order

	id     int64
	filter models.OrderFilter
	hub    *Hub

	mu     sync.Mutex
	closed bool
}

// Close unregisters the subscription and closes C.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.C)
	s.mu.Unlock()
	s.hub.remove(s.id)
}

type Hub struct {
	mu     sync.RWMutex
	subs   map[int64]*Subscription
	nextID int64

	orders storage.IOrderStorage
	log    logger.ILogger
	remote *redisBridge
}

func NewHub(orders storage.IOrderStorage, log logger.ILogger) *Hub {
	return &Hub{
		subs:   make(map[int64]*Subscription),
		orders: orders,
		log:    log,
	}
}

// Subscribe registers a filtered view and delivers its initial snapshot
// before returning, so a reconnecting consumer always starts from current
// state.
func (h *Hub) Subscribe(ctx context.Context, filter models.OrderFilter) (*Subscription, error) {
	snapshot, err := h.orders.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.nextID++
	sub := &Subscription{
		C:      make(chan []*models.Order, 1),
		id:     h.nextID,
		filter: filter,
		hub:    h,
	}
	h.subs[sub.id] = sub
	h.mu.Unlock()

	sub.push(snapshot)
	return sub, nil
}

func (h *Hub) remove(id int64) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

// Subscribers reports the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// OrdersChanged must be called after every order mutation. It refreshes all
// local subscriptions and, when a redis bridge is attached, fans the change
// out to other processes.
func (h *Hub) OrdersChanged(ctx context.Context) {
	h.refresh(ctx)
	if h.remote != nil {
		h.remote.publish(ctx)
	}
}

func (h *Hub) refresh(ctx context.Context) {
	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		snapshot, err := h.orders.Find(ctx, s.filter)
		if err != nil {
			h.log.Error("failed to refresh subscription", logger.Int64("sub_id", s.id), logger.Error(err))
			continue
		}
		s.push(snapshot)
	}
}

// push delivers a snapshot with latest-wins semantics: an unconsumed older
// snapshot is dropped in favour of the new one.
func (s *Subscription) push(snapshot []*models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.C <- snapshot:
			return
		default:
			select {
			case <-s.C:
			default:
			}
		}
	}
}
