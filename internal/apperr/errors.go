package apperr

import "errors"

// Sentinel error kinds shared across services. Wrap with
// fmt.Errorf("%w: detail", apperr.ErrX) and match with errors.Is.
var (
	// ErrValidation marks malformed or missing request input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a missing supplier, voucher, product or other entity.
	ErrNotFound = errors.New("not found")

	// ErrStorage marks a failure in the underlying blob or document store.
	ErrStorage = errors.New("storage error")
)
