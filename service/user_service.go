package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taxihub/pkg/logger"
	"taxihub/pkg/models"
	"taxihub/pkg/token"
	"taxihub/storage"
)

// UserService registers and authenticates principals. Role is fixed at
// registration; there is no role change operation.
type UserService interface {
	Register(ctx context.Context, email, password, name, role string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type userService struct {
	stg    storage.IUserStorage
	tokens *token.Service
	log    logger.ILogger
}

func NewUserService(stg storage.IStorage, tokens *token.Service, log logger.ILogger) UserService {
	return &userService{
		stg:    stg.User(),
		tokens: tokens,
		log:    log,
	}
}

func (s *userService) Register(ctx context.Context, email, password, name, role string) (*models.User, string, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role != models.RolePassenger && role != models.RoleDriver {
		return nil, "", errors.New("role must be PASSENGER or DRIVER")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
	}
	if _, err := s.stg.Create(ctx, user); err != nil {
		return nil, "", err
	}

	s.log.Info("user registered", logger.String("user_id", user.ID), logger.String("role", role))

	tok, err := s.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, tok, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.stg.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, "", models.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", models.ErrInvalidCredentials
	}

	tok, err := s.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, tok, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.stg.GetByID(ctx, id)
}
