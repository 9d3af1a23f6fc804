package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taxihub/pkg/logger"
	"taxihub/pkg/models"
	"taxihub/pkg/token"
	"taxihub/storage/memory"
)

func newTestUserService(t *testing.T) UserService {
	t.Helper()
	tokens := token.NewService("test-secret", time.Hour)
	return NewUserService(memory.New(), tokens, logger.Nop())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	user, tok, err := svc.Register(ctx, "Anna@Example.com", "s3cret", "Anna", "passenger")
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, "anna@example.com", user.Email)
	require.Equal(t, models.RolePassenger, user.Role)

	loggedIn, tok2, err := svc.Login(ctx, "anna@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, tok2)
	require.Equal(t, user.ID, loggedIn.ID)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "bob@example.com", "right", "Bob", "DRIVER")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "bob@example.com", "wrong")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "whatever")
	require.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "carol@example.com", "pw", "Carol", "DRIVER")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "carol@example.com", "pw2", "Carol Again", "PASSENGER")
	require.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := newTestUserService(t)

	_, _, err := svc.Register(context.Background(), "dave@example.com", "pw", "Dave", "ADMIN")
	require.Error(t, err)
}
