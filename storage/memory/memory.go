// Package memory holds a mutex-guarded in-memory implementation of the
// storage interfaces. It preserves the conditional-write semantics of the
// postgres repos (Claim and UpdateStatus check-and-set under one lock), which
// makes it a faithful stand-in for concurrency tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taxihub/pkg/models"
	"taxihub/storage"
)

type Store struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
	users  map[string]*models.User
}

func New() *Store {
	return &Store{
		orders: make(map[string]*models.Order),
		users:  make(map[string]*models.User),
	}
}

func (s *Store) User() storage.IUserStorage   { return (*userStore)(s) }
func (s *Store) Order() storage.IOrderStorage { return (*orderStore)(s) }
func (s *Store) Close()                       {}
func (s *Store) GetPool() *pgxpool.Pool       { return nil }

type orderStore Store

func (s *orderStore) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *order
	s.orders[order.ID] = &cp
	return order, nil
}

func (s *orderStore) GetByID(_ context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *orderStore) Find(_ context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Order
	for _, o := range s.orders {
		if filter.Matches(o) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

func (s *orderStore) Claim(_ context.Context, orderID, driverID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status != models.StatusPending || o.DriverID != nil {
		return false, nil
	}
	o.Status = models.StatusAccepted
	o.DriverID = &driverID
	return true, nil
}

func (s *orderStore) UpdateStatus(_ context.Context, orderID, status string, from ...string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if o.Status == f {
			o.Status = status
			return true, nil
		}
	}
	return false, nil
}

func (s *orderStore) GetDriverStats(_ context.Context, driverID string) (*models.DriverStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &models.DriverStats{}
	for _, o := range s.orders {
		if o.Status == models.StatusCompleted && o.DriverID != nil && *o.DriverID == driverID {
			stats.CompletedOrders++
			stats.TotalEarnings += o.Price
		}
	}
	return stats, nil
}

type userStore Store

func (s *userStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, models.ErrEmailTaken
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	cp := *user
	s.users[user.ID] = &cp
	return user, nil
}

func (s *userStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}
