package congestion

import (
	"math"

	"github.com/private-octopus/c4-go/internal/monotime"
	"github.com/private-octopus/c4-go/internal/protocol"
	"github.com/private-octopus/c4-go/logging"
)

// This file adapts c4Sender onto the teacher's per-event SendAlgorithm
// contract, translating each call into the Notify-based dispatch the
// controller's state machine is actually written against (see c4_sender.go
// and c4_state_machine.go). A host wired the way quic-go's connection
// drives Prague or Cubic can use a c4Sender exactly the same way.

// OnPacketSent records the packet with the pacer and as a candidate for
// the next era's starting sequence number.
func (snd *c4Sender) OnPacketSent(sentTime monotime.Time, bytesInFlight protocol.ByteCount, packetNumber protocol.PacketNumber, bytes protocol.ByteCount, isRetransmittable bool) {
	if packetNumber > snd.largestSentPacketNumber {
		snd.largestSentPacketNumber = packetNumber
	}
	if isRetransmittable {
		snd.pacer.SentPacket(sentTime, bytes)
		snd.state.recordLoss(false)
	}
}

// OnPacketAcked reports an acknowledged packet as both a fresh RTT sample
// and a delivered-bytes sample. The teacher's interface does not separate
// the two the way picoquic's host does; folding rttStats.LatestRTT() into
// every ack is an approximation documented in the design notes.
func (snd *c4Sender) OnPacketAcked(number protocol.PacketNumber, ackedBytes protocol.ByteCount, priorInFlight protocol.ByteCount, eventTime monotime.Time) {
	if number > snd.largestAckedPacketNumber {
		snd.largestAckedPacketNumber = number
	}
	ackState := PerAckState{
		NbBytesAcknowledged:             ackedBytes,
		NbBytesDeliveredSincePacketSent: ackedBytes,
		RTTMeasurement:                  snd.rttStats.LatestRTT(),
	}
	snd.Notify(NotificationRTTMeasurement, ackState, eventTime)
	snd.Notify(NotificationAcknowledgement, ackState, eventTime)
}

// OnCongestionEvent reports a packet loss.
func (snd *c4Sender) OnCongestionEvent(number protocol.PacketNumber, lostBytes protocol.ByteCount, priorInFlight protocol.ByteCount) {
	if snd.logger != nil {
		snd.logger.LogPacketLoss(logging.ByteCount(lostBytes), logging.ByteCount(snd.cwin))
	}
	snd.Notify(NotificationRepeat, PerAckState{LostPacketNumber: number}, snd.now())
}

// OnRetransmissionTimeout is treated as a PTO: picoquic's C4 explicitly
// does not react to it.
func (snd *c4Sender) OnRetransmissionTimeout(packetsRetransmitted bool) {
	snd.Notify(NotificationTimeout, PerAckState{}, snd.now())
}

// TimeUntilSend defers to the pacer once the congestion window allows
// sending at all.
func (snd *c4Sender) TimeUntilSend(bytesInFlight protocol.ByteCount) monotime.Time {
	if !snd.CanSend(bytesInFlight) {
		return monotime.Time(math.MaxInt64)
	}
	return snd.pacer.TimeUntilSend()
}

// HasPacingBudget reports whether the pacer currently has a full datagram's
// worth of budget.
func (snd *c4Sender) HasPacingBudget(now monotime.Time) bool {
	return snd.pacer.Budget(now) >= snd.maxDatagramSize
}

// CanSend reports whether bytesInFlight is still below the current window.
func (snd *c4Sender) CanSend(bytesInFlight protocol.ByteCount) bool {
	return bytesInFlight < snd.cwin
}

// MaybeExitSlowStart is a no-op: C4's exit from the initial state is driven
// entirely by RTT, loss and acknowledgement notifications
// (initialHandleRTT/initialHandleLoss/initialHandleAck), not by a per-send
// check.
func (snd *c4Sender) MaybeExitSlowStart() {}

// SetMaxDatagramSize updates both the sender's and the pacer's notion of a
// full-sized datagram.
func (snd *c4Sender) SetMaxDatagramSize(s protocol.ByteCount) {
	snd.maxDatagramSize = s
	snd.pacer.SetMaxDatagramSize(s)
}

// InSlowStart reports whether the controller is in the initial state.
func (snd *c4Sender) InSlowStart() bool {
	return snd.state.algState == c4Initial
}

// InRecovery reports whether the controller is in the recovery state.
func (snd *c4Sender) InRecovery() bool {
	return snd.state.algState == c4Recovery
}

// GetCongestionWindow returns the congestion window last computed by
// applyRateAndCwin.
func (snd *c4Sender) GetCongestionWindow() protocol.ByteCount {
	return snd.cwin
}
