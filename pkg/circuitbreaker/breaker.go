package circuitbreaker

import (
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker stops calling a failing dependency for a while, then probes it again.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New returns nil when cfg is disabled. A nil breaker is valid for Execute.
func New[T any](cfg Config) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}

	threshold := uint32(max(cfg.FailureThreshold, 1))

	return &CircuitBreaker[T]{
		cb: gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
			Name:         cfg.Name,
			MaxRequests:  uint32(cfg.MaxRequests),
			Interval:     cfg.Interval,
			Timeout:      cfg.Timeout,
			IsSuccessful: cfg.IsSuccessful,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
		}),
	}
}

func (c *CircuitBreaker[T]) Name() string {
	return c.cb.Name()
}

// State reports closed, half-open or open.
func (c *CircuitBreaker[T]) State() string {
	return c.cb.State().String()
}

// Execute runs fn through cb, or directly when cb is nil.
// Rejections are reported as ErrCircuitOpen or ErrTooManyRequests, wrapped with the breaker name.
func Execute[T any](cb *CircuitBreaker[T], fn func() (T, error)) (T, error) {
	if cb == nil {
		return fn()
	}

	result, err := cb.cb.Execute(fn)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		var zero T

		return zero, fmt.Errorf("%s: %w", cb.Name(), ErrCircuitOpen)
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		var zero T

		return zero, fmt.Errorf("%s: %w", cb.Name(), ErrTooManyRequests)
	}

	return result, err
}
