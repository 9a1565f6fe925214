package congestion

import (
	"time"

	"github.com/private-octopus/c4-go/internal/monotime"
	"github.com/private-octopus/c4-go/internal/protocol"
	"github.com/private-octopus/c4-go/internal/utils"
)

// c4AlgState is one of the six states C4 cycles through. The zero value is
// c4Initial, matching the controller's state at construction.
type c4AlgState int

const (
	c4Initial c4AlgState = iota
	c4Recovery
	c4Cruising
	c4Pushing
	c4Slowdown
	c4Checking
)

func (s c4AlgState) String() string {
	switch s {
	case c4Initial:
		return "initial"
	case c4Recovery:
		return "recovery"
	case c4Cruising:
		return "cruising"
	case c4Pushing:
		return "pushing"
	case c4Slowdown:
		return "slowdown"
	case c4Checking:
		return "checking"
	default:
		return "unknown"
	}
}

// NotificationKind enumerates the events the host transport reports to the
// controller through Notify, mirroring picoquic_congestion_notification_t.
type NotificationKind int

const (
	NotificationAcknowledgement NotificationKind = iota
	NotificationECNCE
	NotificationRepeat
	NotificationTimeout
	NotificationSpuriousRepeat
	NotificationRTTMeasurement
	NotificationLostFeedback
	NotificationCwinBlocked
	NotificationReset
	NotificationSeedCwin
)

// PerAckState carries the per-event data the host attaches to a
// notification, mirroring picoquic_per_ack_state_t. Not every field is
// meaningful for every NotificationKind; see Notify for which fields each
// kind reads.
type PerAckState struct {
	NbBytesAcknowledged             protocol.ByteCount
	NbBytesDeliveredSincePacketSent protocol.ByteCount
	RTTMeasurement                  time.Duration
	LostPacketNumber                protocol.PacketNumber
}

// Algorithm is the external contract a congestion controller exposes to its
// host, matching the four entry points of picoquic_congestion_algorithm_t:
// Init, Notify, Delete, Observe.
type Algorithm interface {
	Init(optionString string, now monotime.Time)
	Notify(kind NotificationKind, ackState PerAckState, now monotime.Time)
	Delete()
	Observe() (state c4AlgState, param uint64)
}

// c4State is the algorithm's private data model, a direct port of
// c4_state_t: every field here except recentLossEWMA has a counterpart of
// the same name (modulo case) in the original structure.
type c4State struct {
	algState c4AlgState

	nominalCwin  uint64
	nominalRate  uint64
	alpha1024Cur uint64
	alpha1024Old uint64
	nominalMaxRTT uint64

	nbPacketsInStartup    uint64
	eraSequence           uint64
	nbCruiseLeftBeforePush uint64
	seedCwin              uint64
	maxRate               uint64
	maxCwin               uint64
	maxBytesAck           uint64

	nbErasNoIncrease         int
	nbPushNoCongestion       int
	nbErasDelayBasedDecrease int
	pushRateOld              uint64
	pushAlpha                uint64

	rttMin            uint64
	rttMinStamp       uint64
	runningRTTMin     uint64
	eraMaxRTT         uint64
	lastSlowdownRTTMin uint64

	delayThreshold            uint64
	recentDelayExcess         uint64
	nbRTTUpdateSinceDiscovery int

	lastFreezeWasNotDelay bool
	rttMinIsTrusted       bool
	congestionNotified    bool
	congestionDelayNotified bool
	pushWasNotLimited     bool
	pigWar                bool
	useSeedCwin           bool
	doCascade             bool
	doSlowPush            bool

	rttFilter utils.MinMaxRTTFilter

	optionString string

	// recentLossEWMA approximates picoquic_cc_hystart_loss_test's rolling
	// loss-rate estimate, the "sustained loss" collaborator spec.md treats
	// as an external service: one EWMA counter per packet sent and per
	// packet reported lost, thresholded at protocol.SmoothedLossThreshold.
	recentLossEWMA float64
}
