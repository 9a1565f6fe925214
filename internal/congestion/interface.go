package congestion

import (
	"github.com/private-octopus/c4-go/internal/monotime"
	"github.com/private-octopus/c4-go/internal/protocol"
)

// SendAlgorithm is the interface the host transport uses to drive a
// congestion controller, mirroring the teacher's own
// internal/congestion.SendAlgorithm (implemented by both the Prague sender
// and the cubic sender in the examples this module is grounded on).
type SendAlgorithm interface {
	TimeUntilSend(bytesInFlight protocol.ByteCount) monotime.Time
	HasPacingBudget(now monotime.Time) bool
	CanSend(bytesInFlight protocol.ByteCount) bool
	MaybeExitSlowStart()
	OnPacketSent(sentTime monotime.Time, bytesInFlight protocol.ByteCount, packetNumber protocol.PacketNumber, bytes protocol.ByteCount, isRetransmittable bool)
	OnPacketAcked(number protocol.PacketNumber, ackedBytes protocol.ByteCount, priorInFlight protocol.ByteCount, eventTime monotime.Time)
	OnCongestionEvent(number protocol.PacketNumber, lostBytes protocol.ByteCount, priorInFlight protocol.ByteCount)
	OnRetransmissionTimeout(packetsRetransmitted bool)
	SetMaxDatagramSize(protocol.ByteCount)
}

// SendAlgorithmWithDebugInfos exposes additional state for tracing/testing,
// mirroring the teacher's SendAlgorithmWithDebugInfos.
type SendAlgorithmWithDebugInfos interface {
	SendAlgorithm
	InSlowStart() bool
	InRecovery() bool
	GetCongestionWindow() protocol.ByteCount
}
