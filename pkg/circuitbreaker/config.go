package circuitbreaker

import "time"

// Config describes a breaker guarding calls to one downstream dependency.
type Config struct {
	// Name shows up in errors and logs.
	Name string

	// Enabled false makes New return nil, so Execute calls straight through.
	Enabled bool

	// MaxRequests caps the probe calls let through while half-open. Zero means one.
	MaxRequests uint

	// Interval resets the failure counts while closed. Zero never resets them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again. Zero means 60s.
	Timeout time.Duration

	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold uint

	// IsSuccessful decides whether an error returned by the guarded call counts
	// against the breaker. Nil counts every non-nil error as a failure.
	IsSuccessful func(err error) bool
}
