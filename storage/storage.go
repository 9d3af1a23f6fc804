package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"taxihub/pkg/models"
)

type IStorage interface {
	User() IUserStorage
	Order() IOrderStorage
	Close()
	GetPool() *pgxpool.Pool
}

type IUserStorage interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// IOrderStorage is the persistence contract for orders.
//
// Claim is the single synchronization primitive of the claim protocol: an
// atomic conditional update that assigns the driver only while the order is
// still PENDING and unassigned. Everything else is a plain write guarded by a
// status predicate in the WHERE clause, so a losing writer leaves the record
// in its prior state.
type IOrderStorage interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Find(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error)

	// Claim atomically sets status=ACCEPTED and driver_id=driverID iff the
	// order is PENDING with no driver. Returns false when the precondition
	// did not hold (the order must be re-read to learn why).
	Claim(ctx context.Context, orderID, driverID string) (bool, error)

	// UpdateStatus moves the order to status iff its current status is one
	// of from. Returns false when no row matched.
	UpdateStatus(ctx context.Context, orderID, status string, from ...string) (bool, error)

	GetDriverStats(ctx context.Context, driverID string) (*models.DriverStats, error)
}
