package logging

// ByteCount mirrors protocol.ByteCount for packages, like logging, that
// must not import internal/protocol (logging is meant to be usable by
// external tracers too, matching the teacher's qlog/logging split).
type ByteCount int64

// CongestionState is the high-level state a congestion controller reports
// through a ConnectionTracer, independent of any one algorithm's internal
// state names.
type CongestionState int

const (
	CongestionStateSlowStart CongestionState = iota
	CongestionStateCongestionAvoidance
	CongestionStateRecovery
	CongestionStateApplicationLimited
)

func (s CongestionState) String() string {
	switch s {
	case CongestionStateSlowStart:
		return "slow_start"
	case CongestionStateCongestionAvoidance:
		return "congestion_avoidance"
	case CongestionStateRecovery:
		return "recovery"
	case CongestionStateApplicationLimited:
		return "application_limited"
	default:
		return "unknown"
	}
}

// ConnectionTracer is a set of optional callbacks a congestion controller
// can invoke to report events, mirroring the teacher's logging.ConnectionTracer
// shape: a struct of independently-nil-able function fields rather than an
// interface, so a tracer can hook only the events it cares about.
type ConnectionTracer struct {
	UpdatedCongestionState func(state CongestionState)
}
