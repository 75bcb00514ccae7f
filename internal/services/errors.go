package services

import "errors"

// Domain errors surfaced by the service layer. Handlers translate these into
// HTTP statuses at the request boundary.
var (
	ErrValidation         = errors.New("missing required fields")
	ErrConflict           = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleMismatch       = errors.New("account role does not match")
	ErrNotFound           = errors.New("record not found")

	ErrInvalidOrder       = errors.New("invalid order id")
	ErrSignatureMismatch  = errors.New("invalid payment signature")
	ErrPaymentNotVerified = errors.New("payment transaction is not verified")

	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient role")
)
