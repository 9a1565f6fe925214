package congestion

import (
	"time"

	"github.com/private-octopus/c4-go/internal/monotime"
	"github.com/private-octopus/c4-go/internal/protocol"
)

// maxBurstPackets is the number of packets the pacer allows to be sent back
// to back before it starts spacing packets out, mirroring the teacher's own
// pacer sizing (maxBurstPackets in the cubic-sender family of files).
const maxBurstPackets = 10

// minPacingDelay is a floor on the pacing delay, avoiding pointless
// sub-millisecond wakeups.
const minPacingDelay = 200 * time.Microsecond

// pacer is a token-bucket pacer: it accumulates sending budget at the rate
// returned by getBandwidth and spends it as packets are sent. It is one of
// the black-box collaborators spec.md §1 calls "the pacing engine" — C4
// only hands it a target rate, through getBandwidth. Its burst size is
// maxBurstPackets datagrams; the quantum applyRateAndCwin computes is kept
// on the sender and is not passed to the pacer.
type pacer struct {
	getBandwidth    func() Bandwidth
	budget          protocol.ByteCount
	maxDatagramSize protocol.ByteCount
	lastSentTime    monotime.Time
}

func newPacer(getBandwidth func() Bandwidth) *pacer {
	p := &pacer{
		getBandwidth:    getBandwidth,
		maxDatagramSize: protocol.InitialPacketSizeIPv4,
	}
	p.budget = maxBurstPackets * p.maxDatagramSize
	return p
}

// Budget returns the number of bytes that may be sent right now.
func (p *pacer) Budget(now monotime.Time) protocol.ByteCount {
	if p.lastSentTime.IsZero() {
		return p.budget
	}
	budget := p.budget + p.getBandwidth().ToBytesPerPeriod(now.Sub(p.lastSentTime))
	if max := maxBurstPackets * p.maxDatagramSize; budget > max {
		return max
	}
	return budget
}

// TimeUntilSend returns the earliest time at which a full-sized datagram may
// be sent.
func (p *pacer) TimeUntilSend() monotime.Time {
	if p.budget >= p.maxDatagramSize {
		return monotime.Time(0)
	}
	bw := p.getBandwidth()
	if bw == 0 || bw == infBandwidth {
		return monotime.Time(0)
	}
	needed := p.maxDatagramSize - p.budget
	delay := time.Duration(float64(needed) * float64(time.Second) / float64(bw))
	if delay < minPacingDelay {
		delay = minPacingDelay
	}
	return p.lastSentTime.Add(delay)
}

// SentPacket records that size bytes were sent at sentTime.
func (p *pacer) SentPacket(sentTime monotime.Time, size protocol.ByteCount) {
	p.budget = p.Budget(sentTime) - size
	p.lastSentTime = sentTime
}

// SetMaxDatagramSize updates the pacer's notion of a full-sized datagram.
func (p *pacer) SetMaxDatagramSize(s protocol.ByteCount) {
	p.maxDatagramSize = s
}
