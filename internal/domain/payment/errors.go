package payment

import "errors"

var (
	// ErrInvalidPackage is returned when the requested credit count is
	// not in the configured package table.
	ErrInvalidPackage = errors.New("invalid credit package")

	// ErrPaymentNotFound is returned when no payment matches the
	// webhook's correlation reference.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrAlreadySettled signals a duplicate completion webhook; the
	// payment is already completed and nothing was mutated.
	ErrAlreadySettled = errors.New("payment already settled")

	// ErrTerminalState signals the payment is in a terminal state the
	// requested transition cannot leave.
	ErrTerminalState = errors.New("payment in terminal state")

	// ErrNotRefundable is returned when refunding a payment that never
	// completed.
	ErrNotRefundable = errors.New("only completed payments can be refunded")
)
