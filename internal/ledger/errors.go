package ledger

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when the order's user id does not match the
// authenticated caller.
var ErrForbidden = errors.New("user id does not match the authenticated user")

// ValidationError marks a client-fixable problem with a buy order.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func errInvalid(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// InsufficientFundsError reports how much cash the user actually has left so
// the client can correct the order.
type InsufficientFundsError struct {
	Available float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available $%.2f", e.Available)
}

// Detail is the user-facing detail string for the error response.
func (e *InsufficientFundsError) Detail() string {
	return fmt.Sprintf("Available: $%.2f", e.Available)
}
