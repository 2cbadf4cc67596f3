package contract

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrInvalidSession  = errors.New("session id is empty")
	ErrInvalidMessage  = errors.New("message is empty")
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")

	// ErrClassificationFallback marks an external classification attempt that
	// was discarded in favour of the rule engine.
	ErrClassificationFallback = errors.New("classification fallback")

	ErrToolTimeout    = errors.New("tool timed out")
	ErrToolFailure    = errors.New("tool failed")
	ErrCircuitOpen    = errors.New("tool circuit is open")
	ErrEntityNotFound = errors.New("entity not found")
)
