package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/sliramanoel/venda/internal/validator"
)

var (
	// ErrOrderNotFound is returned when no order matches an id or order number
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidStatus is returned for statuses outside the order lifecycle
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrInvalidSignature is returned when a webhook signature does not verify
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrInvalidPayload is returned when a webhook body is not valid JSON
	ErrInvalidPayload = errors.New("invalid webhook payload")

	// ErrInvalidCredentials is returned for an unknown email or wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned when an admin account does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when an admin email is already registered
	ErrEmailTaken = errors.New("email already registered")

	// ErrRegistrationClosed is returned by register once an admin exists
	ErrRegistrationClosed = errors.New("admin registration is closed")
)

// ValidationError carries per-field rejection reasons for customer input.
type ValidationError struct {
	Fields map[string]validator.Reason
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name].String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
