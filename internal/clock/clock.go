package clock

import "time"

// Clock supplies wall-clock time and tickers. Inject a manual implementation in tests.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers ticks on C until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// System is the process clock.
type System struct{}

// NewSystem returns the process clock.
func NewSystem() Clock {
	return System{}
}

// Now returns the current time. The monotonic reading is kept so in-process comparisons stay
// correct across wall clock steps.
func (System) Now() time.Time {
	return time.Now()
}

// NewTicker wraps time.NewTicker.
func (System) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }

func (s systemTicker) Stop() { s.t.Stop() }

// Storable normalizes t for persistence: UTC, no monotonic reading, microsecond precision.
func Storable(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
