package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrAlreadySettled     = errors.New("order already settled")
	ErrMultiFoodCourt     = errors.New("order cannot contain multiple food courts")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidStatus      = errors.New("invalid payment status")
	ErrInvalidMode        = errors.New("invalid payment mode")
	ErrInvalidOrderType   = errors.New("invalid order type")
	ErrInvalidDiscount    = errors.New("discount exceeds order total")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUntrustedSignature = errors.New("untrusted signature")
	ErrMissingField       = errors.New("missing required field")
	ErrEmptyCart          = errors.New("empty cart")
)
