package core

import "errors"

// Error taxonomy for the pipeline. The dispatcher and handler use these to
// decide between retrying, skipping, and reporting.
var (
	// ErrValidation marks a malformed or unsupported payload. Deliveries
	// failing validation are skipped, never retried.
	ErrValidation = errors.New("invalid event payload")

	// ErrRateLimited marks a transient platform failure. Actions hitting it
	// are retried with bounded backoff before being recorded as failed.
	ErrRateLimited = errors.New("platform rate limit exceeded")

	// ErrPermanent marks a non-retryable platform failure such as a
	// permission error or a missing resource.
	ErrPermanent = errors.New("permanent platform error")

	// ErrAlreadyApplied marks an idempotency conflict: the requested action
	// is already in effect. The dispatcher records it as skipped.
	ErrAlreadyApplied = errors.New("action already applied")
)

// IsTransient reports whether err belongs to the retryable failure class.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsAlreadyApplied reports whether err is an idempotency conflict.
func IsAlreadyApplied(err error) bool {
	return errors.Is(err, ErrAlreadyApplied)
}
