package circuitbreaker

import "errors"

var (
	// ErrCircuitOpen is returned without calling the dependency while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrTooManyRequests is returned when the half-open probe budget is spent.
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)
