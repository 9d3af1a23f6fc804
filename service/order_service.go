package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"taxihub/pkg/events"
	"taxihub/pkg/logger"
	"taxihub/pkg/metrics"
	"taxihub/pkg/models"
	"taxihub/pkg/notify"
	"taxihub/pkg/watch"
	"taxihub/storage"
)

// Pricing is the placeholder fare model: a base fare plus a random spread,
// fixed once at creation. Distance-based pricing is out of scope.
type Pricing struct {
	BaseFare float64
	Spread   float64
}

func (p Pricing) Quote() float64 {
	base := p.BaseFare
	if base <= 0 {
		base = 100
	}
	return base + rand.Float64()*p.Spread
}

type CreateOrderInput struct {
	PickupLocation string
	Destination    string
	DriverComment  string
	ScheduledTime  *int64
}

// OrderService owns the order state machine:
//
//	PENDING -> ACCEPTED -> IN_PROGRESS -> COMPLETED
//	PENDING -> CANCELLED (passenger-initiated, terminal)
//
// Claim is the only operation with real concurrency semantics; the rest are
// single conditional status writes with ownership checks.
type OrderService interface {
	Create(ctx context.Context, userID string, in CreateOrderInput) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Find(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error)
	Claim(ctx context.Context, orderID, driverID string) error
	Start(ctx context.Context, orderID, driverID string) error
	Complete(ctx context.Context, orderID, driverID string) error
	Cancel(ctx context.Context, orderID, userID string) error
	DriverStats(ctx context.Context, driverID string) (*models.DriverStats, error)
}

type orderService struct {
	stg       storage.IOrderStorage
	hub       *watch.Hub
	producer  *events.KafkaProducer
	announcer *notify.Announcer
	pricing   Pricing
	log       logger.ILogger
}

func NewOrderService(stg storage.IStorage, deps Deps, log logger.ILogger) OrderService {
	return &orderService{
		stg:       stg.Order(),
		hub:       deps.Hub,
		producer:  deps.Producer,
		announcer: deps.Announcer,
		pricing:   deps.Pricing,
		log:       log,
	}
}

func (s *orderService) Create(ctx context.Context, userID string, in CreateOrderInput) (*models.Order, error) {
	order := &models.Order{
		ID:             uuid.NewString(),
		UserID:         userID,
		PickupLocation: in.PickupLocation,
		Destination:    in.Destination,
		DriverComment:  in.DriverComment,
		Price:          s.pricing.Quote(),
		Status:         models.StatusPending,
		Timestamp:      time.Now().UnixMilli(),
		ScheduledTime:  in.ScheduledTime,
	}

	if _, err := s.stg.Create(ctx, order); err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	s.log.Info("order created",
		logger.String("order_id", order.ID),
		logger.String("user_id", userID),
		logger.Float64("price", order.Price),
	)

	if s.announcer != nil {
		s.announcer.AnnounceOrder(order)
	}
	s.changed(ctx, order)
	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return s.stg.GetByID(ctx, id)
}

func (s *orderService) Find(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	return s.stg.Find(ctx, filter)
}

// Claim assigns the order to the driver. The store-level conditional write
// decides the race; losers get a classified error after a re-read. On success
// the driver owns the order until a further status change.
func (s *orderService) Claim(ctx context.Context, orderID, driverID string) error {
	active, err := s.stg.Find(ctx, models.OrderFilter{
		DriverID: driverID,
		Statuses: models.ActiveStatuses,
	})
	if err != nil {
		metrics.ClaimsTotal.WithLabelValues("error").Inc()
		return err
	}
	if len(active) > 0 {
		metrics.ClaimsTotal.WithLabelValues("busy").Inc()
		return models.ErrDriverHasActive
	}

	ok, err := s.stg.Claim(ctx, orderID, driverID)
	if err != nil {
		metrics.ClaimsTotal.WithLabelValues("error").Inc()
		return err
	}
	if !ok {
		return s.classifyClaimFailure(ctx, orderID)
	}

	metrics.ClaimsTotal.WithLabelValues("ok").Inc()
	s.log.Info("order claimed",
		logger.String("order_id", orderID),
		logger.String("driver_id", driverID),
	)

	order, err := s.stg.GetByID(ctx, orderID)
	if err == nil {
		s.changed(ctx, order)
	}
	return nil
}

func (s *orderService) classifyClaimFailure(ctx context.Context, orderID string) error {
	order, err := s.stg.GetByID(ctx, orderID)
	switch {
	case errors.Is(err, models.ErrOrderNotFound):
		metrics.ClaimsTotal.WithLabelValues("gone").Inc()
		return models.ErrOrderGone
	case err != nil:
		metrics.ClaimsTotal.WithLabelValues("error").Inc()
		return err
	case order.DriverID != nil:
		metrics.ClaimsTotal.WithLabelValues("taken").Inc()
		return models.ErrOrderTaken
	default:
		metrics.ClaimsTotal.WithLabelValues("not_available").Inc()
		return models.ErrOrderNotAvailable
	}
}

func (s *orderService) Start(ctx context.Context, orderID, driverID string) error {
	if err := s.checkDriverOwnership(ctx, orderID, driverID); err != nil {
		return err
	}
	ok, err := s.stg.UpdateStatus(ctx, orderID, models.StatusInProgress, models.StatusAccepted)
	if err != nil {
		return err
	}
	if !ok {
		return models.ErrOrderNotAvailable
	}

	s.log.Info("order started", logger.String("order_id", orderID))
	s.notifyChanged(ctx, orderID)
	return nil
}

func (s *orderService) Complete(ctx context.Context, orderID, driverID string) error {
	if err := s.checkDriverOwnership(ctx, orderID, driverID); err != nil {
		return err
	}
	ok, err := s.stg.UpdateStatus(ctx, orderID, models.StatusCompleted, models.StatusAccepted, models.StatusInProgress)
	if err != nil {
		return err
	}
	if !ok {
		return models.ErrOrderNotAvailable
	}

	metrics.OrdersCompleted.Inc()
	s.log.Info("order completed",
		logger.String("order_id", orderID),
		logger.String("driver_id", driverID),
	)
	s.notifyChanged(ctx, orderID)
	return nil
}

// Cancel is a soft-cancel: the record is kept with status=CANCELLED so order
// history survives. Only the owning passenger may cancel, and only while the
// order is still PENDING.
func (s *orderService) Cancel(ctx context.Context, orderID, userID string) error {
	order, err := s.stg.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return models.ErrNotOwner
	}

	ok, err := s.stg.UpdateStatus(ctx, orderID, models.StatusCancelled, models.StatusPending)
	if err != nil {
		return err
	}
	if !ok {
		return models.ErrOrderNotAvailable
	}

	metrics.OrdersCancelled.Inc()
	s.log.Info("order cancelled", logger.String("order_id", orderID))
	s.notifyChanged(ctx, orderID)
	return nil
}

func (s *orderService) DriverStats(ctx context.Context, driverID string) (*models.DriverStats, error) {
	return s.stg.GetDriverStats(ctx, driverID)
}

func (s *orderService) checkDriverOwnership(ctx context.Context, orderID, driverID string) error {
	order, err := s.stg.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.DriverID == nil || *order.DriverID != driverID {
		return models.ErrNotOwner
	}
	return nil
}

func (s *orderService) notifyChanged(ctx context.Context, orderID string) {
	order, err := s.stg.GetByID(ctx, orderID)
	if err != nil {
		s.log.Warning("failed to reload order after write", logger.String("order_id", orderID), logger.Error(err))
		if s.hub != nil {
			s.hub.OrdersChanged(ctx)
		}
		return
	}
	s.changed(ctx, order)
}

func (s *orderService) changed(ctx context.Context, order *models.Order) {
	if s.hub != nil {
		s.hub.OrdersChanged(ctx)
	}
	if s.producer != nil {
		if err := s.producer.PublishOrderEvent(order); err != nil {
			s.log.Warning("failed to publish order event", logger.String("order_id", order.ID), logger.Error(err))
		}
	}
}
