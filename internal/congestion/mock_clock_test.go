package congestion

import (
	"time"

	"github.com/private-octopus/c4-go/internal/monotime"
)

// mockClock is a Clock whose value only moves when the test tells it to,
// grounded on the clock type prague_sender_test.go exercises via
// sender.clock.Advance/Now (that type's own definition was not part of the
// retrieval slice, so this is a from-scratch, same-shaped reconstruction).
type mockClock monotime.Time

func (c *mockClock) Now() monotime.Time {
	return monotime.Time(*c)
}

func (c *mockClock) Advance(d time.Duration) {
	*c = mockClock(monotime.Time(*c).Add(d))
}

var _ Clock = (*mockClock)(nil)
