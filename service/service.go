package service

import (
	"taxihub/pkg/events"
	"taxihub/pkg/logger"
	"taxihub/pkg/notify"
	"taxihub/pkg/token"
	"taxihub/pkg/watch"
	"taxihub/storage"
)

type IServiceManager interface {
	User() UserService
	Order() OrderService
}

// Deps carries the collaborators of the service layer. Hub, Producer and
// Announcer are optional; a nil value disables the corresponding side effect.
type Deps struct {
	Tokens    *token.Service
	Hub       *watch.Hub
	Producer  *events.KafkaProducer
	Announcer *notify.Announcer
	Pricing   Pricing
}

type service struct {
	userService  UserService
	orderService OrderService
}

func New(stg storage.IStorage, deps Deps, log logger.ILogger) IServiceManager {
	return &service{
		userService:  NewUserService(stg, deps.Tokens, log),
		orderService: NewOrderService(stg, deps, log),
	}
}

func (s *service) User() UserService {
	return s.userService
}

func (s *service) Order() OrderService {
	return s.orderService
}
