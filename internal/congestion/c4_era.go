package congestion

import "github.com/private-octopus/c4-go/internal/protocol"

// eraCheck reports whether the packet the current era is waiting on (the
// first packet sent in the era) has been acknowledged, i.e. whether a full
// round trip has elapsed since eraReset.
func (s *c4State) eraCheck(largestAcked protocol.PacketNumber) bool {
	return uint64(largestAcked) >= s.eraSequence
}

// eraReset starts a new measurement era at the next packet to be sent.
func (s *c4State) eraReset(nextPacketNumber protocol.PacketNumber) {
	s.eraSequence = uint64(nextPacketNumber)
	s.eraMaxRTT = 0
	s.alpha1024Old = s.alpha1024Cur
}
