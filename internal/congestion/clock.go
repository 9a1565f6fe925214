package congestion

import "github.com/private-octopus/c4-go/internal/monotime"

// Clock abstracts the current time, so that tests can advance it manually.
type Clock interface {
	Now() monotime.Time
}

// DefaultClock implements Clock using the real monotonic clock.
type DefaultClock struct{}

var _ Clock = DefaultClock{}

// Now returns the current monotonic time.
func (DefaultClock) Now() monotime.Time {
	return monotime.Now()
}
