package models

import "errors"

// Claim and lifecycle errors. Claim failures are not retryable without
// re-reading the order; ErrPersistence wraps store/network failures and is
// the only retryable kind.
var (
	ErrOrderGone          = errors.New("order no longer exists")
	ErrOrderNotAvailable  = errors.New("order is not available")
	ErrOrderTaken         = errors.New("order already taken by another driver")
	ErrDriverHasActive    = errors.New("driver already has an active order")
	ErrNotOwner           = errors.New("caller does not own this order")
	ErrOrderNotFound      = errors.New("order not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPersistence        = errors.New("persistence failure")
)
