package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrWrongState         = errors.New("wrong state")
	ErrForbidden          = errors.New("forbidden")
	ErrSelfTrade          = errors.New("buyer is the seller")
	ErrExpired            = errors.New("reservation expired")
	ErrConflict           = errors.New("concurrent update conflict")
	ErrTimeout            = errors.New("operation timed out")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrLockHeld           = errors.New("lock already held")
	ErrDuplicatePayment   = errors.New("payment reference already used")

	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidTicket   = errors.New("invalid ticket")
)

// ErrNotAvailable is reported when a ticket cannot be reserved. It matches ErrWrongState.
var ErrNotAvailable = fmt.Errorf("ticket not available: %w", ErrWrongState)

// Retryable reports whether the same logical operation may be attempted again.
func Retryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrStorageUnavailable)
}
