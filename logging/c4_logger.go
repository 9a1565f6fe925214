package logging

import (
	"fmt"
	"log"
	"os"
)

// C4Logger provides debugging output for the C4 congestion controller,
// shaped after the teacher's per-connection, enable-gated logger pattern
// (originally written for Prague/L4S debugging in this codebase).
type C4Logger struct {
	logger     *log.Logger
	enabled    bool
	connection string
}

// NewC4Logger creates a new C4-specific logger.
func NewC4Logger(connectionID string, enabled bool) *C4Logger {
	return &C4Logger{
		logger:     log.New(os.Stderr, fmt.Sprintf("[C4:%s] ", connectionID), log.LstdFlags|log.Lmicroseconds),
		enabled:    enabled,
		connection: connectionID,
	}
}

// LogStateChange logs a transition between C4 algorithm states.
func (l *C4Logger) LogStateChange(from, to string, nominalCwin, nominalRate uint64) {
	if !l.enabled {
		return
	}
	l.logger.Printf("State %s -> %s: nominal_cwin=%d nominal_rate=%d", from, to, nominalCwin, nominalRate)
}

// LogCongestionWindowChange logs congestion window changes applied by
// applyRateAndCwin.
func (l *C4Logger) LogCongestionWindowChange(reason string, oldCwin, newCwin ByteCount) {
	if !l.enabled {
		return
	}
	l.logger.Printf("Cwin change (%s): %d -> %d", reason, oldCwin, newCwin)
}

// LogPigWar logs entering or leaving pig-war mode.
func (l *C4Logger) LogPigWar(starting bool, reason string) {
	if !l.enabled {
		return
	}
	if starting {
		l.logger.Printf("Starting pig war: %s", reason)
	} else {
		l.logger.Printf("Stopping pig war: %s", reason)
	}
}

// LogDelayExcess logs a detected excess-delay signal.
func (l *C4Logger) LogDelayExcess(recentDelayExcess, delayThreshold uint64) {
	if !l.enabled {
		return
	}
	l.logger.Printf("Delay excess: recent=%d threshold=%d", recentDelayExcess, delayThreshold)
}

// LogPacketLoss logs packet loss events.
func (l *C4Logger) LogPacketLoss(lostBytes ByteCount, cwin ByteCount) {
	if !l.enabled {
		return
	}
	l.logger.Printf("Packet loss: lost_bytes=%d cwin=%d", lostBytes, cwin)
}

// CreateC4ConnectionTracer creates a ConnectionTracer that logs congestion
// state updates. It has no congestion-window callback.
func CreateC4ConnectionTracer(connectionID string, enabled bool) *ConnectionTracer {
	if !enabled {
		return nil
	}

	logger := NewC4Logger(connectionID, true)

	return &ConnectionTracer{
		UpdatedCongestionState: func(state CongestionState) {
			logger.logger.Printf("Congestion state: %s", state.String())
		},
	}
}
