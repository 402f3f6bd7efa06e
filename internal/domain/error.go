package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")

	// Redemption code errors
	ErrCodeNotFound    = errors.New("redemption code not found")
	ErrCodeAlreadyUsed = errors.New("redemption code already used")
	ErrCodeExpired     = errors.New("redemption code expired")

	// Order errors
	ErrOrderAlreadyPaid = errors.New("order already paid")
	ErrOrderNotPending  = errors.New("order is not pending")
	ErrAmountTooLow     = errors.New("amount is below plan price")

	// Configuration / infrastructure errors
	ErrPlanNotConfigured  = errors.New("no active plan configured for tier")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
