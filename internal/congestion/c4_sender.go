package congestion

import (
	"github.com/private-octopus/c4-go/internal/monotime"
	"github.com/private-octopus/c4-go/internal/protocol"
	"github.com/private-octopus/c4-go/internal/utils"
	"github.com/private-octopus/c4-go/logging"
)

// c4Sender is the delay-sensitive congestion controller. It owns the C4
// state machine (c4State) plus everything a picoquic path would otherwise
// supply on its behalf: RTT tracking, a pacer, and the bookkeeping needed
// to answer the handful of questions the original algorithm asks its host
// (current smoothed RTT, send MTU, peak bandwidth, sustained-loss rate).
// Shaping the type this way lets it implement both the SendAlgorithm family
// the host transport drives directly, one packet event at a time, and the
// Notify-based Algorithm contract C4 was specified against, without forcing
// either caller to adapt to the other.
type c4Sender struct {
	state c4State

	clock     Clock
	rttStats  *utils.RTTStats
	connStats *utils.ConnectionStats
	pacer     *pacer
	logger    *logging.C4Logger

	maxDatagramSize protocol.ByteCount
	cwin            protocol.ByteCount
	pacingRate      Bandwidth
	quantum         protocol.ByteCount

	largestSentPacketNumber  protocol.PacketNumber
	largestAckedPacketNumber protocol.PacketNumber
}

var _ SendAlgorithm = (*c4Sender)(nil)
var _ SendAlgorithmWithDebugInfos = (*c4Sender)(nil)
var _ Algorithm = (*c4Sender)(nil)

// NewC4Sender builds a controller ready to run, equivalent to calling
// c4_init followed immediately by c4_reset with no options.
func NewC4Sender(clock Clock, rttStats *utils.RTTStats, connStats *utils.ConnectionStats, logger *logging.C4Logger) *c4Sender {
	snd := &c4Sender{
		clock:           clock,
		rttStats:        rttStats,
		connStats:       connStats,
		maxDatagramSize: protocol.InitialPacketSizeIPv4,
		logger:          logger,
	}
	snd.pacer = newPacer(snd.bandwidthEstimate)
	snd.Init("", clock.Now())
	return snd
}

// newDefaultC4Sender builds a controller wired to the real clock and no
// logger, for use by the registry's factory.
func newDefaultC4Sender() *c4Sender {
	return NewC4Sender(DefaultClock{}, &utils.RTTStats{}, &utils.ConnectionStats{}, nil)
}

func (snd *c4Sender) now() monotime.Time { return snd.clock.Now() }

func (snd *c4Sender) toMicros(t monotime.Time) uint64 { return uint64(t) / 1000 }

// peakBandwidthEstimate stands in for path_x->peak_bandwidth_estimate. The
// original algorithm reads this off a black-box bandwidth estimator the
// host maintains independently of C4; here it is approximated by the same
// max_rate bookkeeping exitRecovery already maintains, since both answer
// "what is the best rate we've confirmed on this path."
func (snd *c4Sender) peakBandwidthEstimate() uint64 {
	if snd.state.maxRate > snd.state.nominalRate {
		return snd.state.maxRate
	}
	return snd.state.nominalRate
}

// bandwidthEstimate exposes the current pacing rate for the pacer and for
// SendAlgorithmWithDebugInfos-style callers.
func (snd *c4Sender) bandwidthEstimate() Bandwidth { return snd.pacingRate }

func (snd *c4Sender) setPacingRate(rate Bandwidth, quantum protocol.ByteCount) {
	snd.pacingRate = rate
	snd.quantum = quantum
}

// recordLoss feeds the EWMA loss-rate estimate that stands in for
// picoquic_cc_hystart_loss_test, the host-owned sustained-loss collaborator
// spec.md treats as a black box.
func (s *c4State) recordLoss(lost bool) bool {
	const gain = 1.0 / 16.0
	sample := 0.0
	if lost {
		sample = 1.0
	}
	s.recentLossEWMA += gain * (sample - s.recentLossEWMA)
	return s.recentLossEWMA > protocol.SmoothedLossThreshold
}

// Init starts (or restarts) the controller with the given option string,
// mirroring c4_init/c4_reset.
func (snd *c4Sender) Init(optionString string, now monotime.Time) {
	snd.state.reset(optionString)
	snd.enterInitial(snd.toMicros(now))
	snd.applyRateAndCwin()
}

// Delete releases the controller. c4 holds no external resources, so this
// only exists to satisfy the Algorithm contract.
func (snd *c4Sender) Delete() {}

// Observe reports the controller's externally visible state, mirroring
// c4_observe.
func (snd *c4Sender) Observe() (c4AlgState, uint64) {
	return snd.state.algState, snd.state.nominalMaxRTT
}

// Notify is the literal Notify half of the Algorithm contract: every event
// a host transport reports about a connection funnels through here,
// mirroring c4_notify's switch on picoquic_congestion_notification_t.
func (snd *c4Sender) Notify(kind NotificationKind, ackState PerAckState, now monotime.Time) {
	nowMicros := snd.toMicros(now)
	s := &snd.state

	switch kind {
	case NotificationAcknowledgement:
		snd.handleAck(ackState, nowMicros)
		snd.applyRateAndCwin()
	case NotificationECNCE:
		if s.algState == c4Initial {
			snd.initialHandleLoss(nowMicros)
			snd.applyRateAndCwin()
		} else {
			snd.notifyCongestion(0, false, nowMicros)
		}
	case NotificationRepeat:
		if s.algState == c4Recovery && uint64(ackState.LostPacketNumber) < s.eraSequence {
			return
		}
		if s.recordLoss(true) {
			if s.algState == c4Initial {
				snd.initialHandleLoss(nowMicros)
				snd.applyRateAndCwin()
			} else {
				snd.notifyCongestion(0, false, nowMicros)
			}
		}
	case NotificationTimeout:
		// Treated as a PTO: no impact on congestion control.
	case NotificationSpuriousRepeat:
		// No longer tied to timeout handling; intentionally a no-op.
	case NotificationRTTMeasurement:
		rttMicros := micros(ackState.RTTMeasurement)
		s.updateRTT(rttMicros, nowMicros)
		if s.algState == c4Initial {
			snd.initialHandleRTT(rttMicros, nowMicros)
			snd.applyRateAndCwin()
		} else {
			s.handleRTT(snd, rttMicros, nowMicros)
		}
	case NotificationLostFeedback:
	case NotificationCwinBlocked:
	case NotificationReset:
		snd.state.reset(snd.state.optionString)
		snd.enterInitial(nowMicros)
		snd.applyRateAndCwin()
	case NotificationSeedCwin:
		snd.seedCwin(uint64(ackState.NbBytesAcknowledged))
	}
}
