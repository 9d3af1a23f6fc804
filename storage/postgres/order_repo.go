package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taxihub/pkg/logger"
	"taxihub/pkg/models"
	"taxihub/storage"
)

type orderRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewOrderRepo(db *pgxpool.Pool, log logger.ILogger) storage.IOrderStorage {
	return &orderRepo{db: db, log: log}
}

const orderColumns = `id, user_id, driver_id, pickup_location, destination, driver_comment, price, status, timestamp, scheduled_time`

func (r *orderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	query := `
		INSERT INTO orders (id, user_id, driver_id, pickup_location, destination, driver_comment, price, status, timestamp, scheduled_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.DriverID,
		order.PickupLocation,
		order.Destination,
		order.DriverComment,
		order.Price,
		order.Status,
		order.Timestamp,
		order.ScheduledTime,
	)
	if err != nil {
		r.log.Error("failed to create order", logger.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}

	return order, nil
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.DriverID,
		&order.PickupLocation,
		&order.Destination,
		&order.DriverComment,
		&order.Price,
		&order.Status,
		&order.Timestamp,
		&order.ScheduledTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrOrderNotFound
		}
		r.log.Error("failed to get order by id", logger.String("id", id), logger.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}

	return &order, nil
}

func (r *orderRepo) Find(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []interface{}{}

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.DriverID != "" {
		args = append(args, filter.DriverID)
		query += fmt.Sprintf(" AND driver_id = $%d", len(args))
	}
	if filter.UnassignedOnly {
		query += " AND driver_id IS NULL"
	}
	if len(filter.Statuses) > 0 {
		args = append(args, filter.Statuses)
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	query += " ORDER BY timestamp DESC"

	return r.scanOrders(ctx, query, args...)
}

func (r *orderRepo) scanOrders(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		var o models.Order
		err := rows.Scan(
			&o.ID, &o.UserID, &o.DriverID, &o.PickupLocation, &o.Destination,
			&o.DriverComment, &o.Price, &o.Status, &o.Timestamp, &o.ScheduledTime,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
		}
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}

// Claim is the atomic conditional write behind the claim protocol. The
// precondition and the assignment execute as one statement, so two drivers
// racing for the same order cannot both see RowsAffected == 1.
func (r *orderRepo) Claim(ctx context.Context, orderID, driverID string) (bool, error) {
	res, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $1, driver_id = $2 WHERE id = $3 AND status = $4 AND driver_id IS NULL`,
		models.StatusAccepted, driverID, orderID, models.StatusPending,
	)
	if err != nil {
		r.log.Error("failed to claim order", logger.String("order_id", orderID), logger.Error(err))
		return false, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return res.RowsAffected() == 1, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, orderID, status string, from ...string) (bool, error) {
	res, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2 AND status = ANY($3)`,
		status, orderID, from,
	)
	if err != nil {
		r.log.Error("failed to update order status", logger.String("order_id", orderID), logger.Error(err))
		return false, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return res.RowsAffected() == 1, nil
}

func (r *orderRepo) GetDriverStats(ctx context.Context, driverID string) (*models.DriverStats, error) {
	var stats models.DriverStats
	query := `SELECT COUNT(*), COALESCE(SUM(price), 0) FROM orders WHERE driver_id = $1 AND status = $2`
	err := r.db.QueryRow(ctx, query, driverID, models.StatusCompleted).Scan(
		&stats.CompletedOrders, &stats.TotalEarnings,
	)
	if err != nil {
		r.log.Error("failed to get driver stats", logger.String("driver_id", driverID), logger.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return &stats, nil
}
