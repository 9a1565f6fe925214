package congestion

import (
	"time"

	"github.com/private-octopus/c4-go/internal/protocol"
)

// Bandwidth is a rate, in bytes per second.
type Bandwidth uint64

const infBandwidth Bandwidth = Bandwidth(^uint64(0))

// BandwidthFromDelta computes a bandwidth given bytes delivered over a
// duration.
func BandwidthFromDelta(bytes protocol.ByteCount, delta time.Duration) Bandwidth {
	if delta <= 0 {
		return infBandwidth
	}
	return Bandwidth(float64(bytes) / delta.Seconds())
}

// ToBytesPerPeriod converts a bandwidth into a byte count over the given
// period, used by the pacer to size its token bucket.
func (b Bandwidth) ToBytesPerPeriod(period time.Duration) protocol.ByteCount {
	return protocol.ByteCount(float64(b) * period.Seconds())
}
