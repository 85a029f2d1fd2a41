package tutor

import "errors"

var (
	// ErrInvalidRequest is returned for empty or malformed input, before
	// any credits are touched.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInsufficientCredits is returned when the account cannot cover
	// the action cost; the external call is never made.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrAIServiceFailed is returned when the external call failed after
	// the debit; the debited credits have been refunded.
	ErrAIServiceFailed = errors.New("ai service error, credits refunded")
)
