package congestion

import (
	"github.com/private-octopus/c4-go/internal/protocol"
	"github.com/private-octopus/c4-go/logging"
)

// applyRateAndCwin is the single place that derives the congestion window,
// pacing rate and pacing quantum actually handed to the transport from the
// state's nominal_cwin/nominal_rate/alpha, mirroring c4_apply_rate_and_cwin.
// Every state transition that changes nominal_cwin, nominal_rate or alpha
// calls this afterwards instead of touching the sender's cwin/pacing fields
// directly.
func (snd *c4Sender) applyRateAndCwin() {
	s := &snd.state
	targetCwin := mul1024(s.alpha1024Cur, s.nominalCwin)
	pacingRate := mul1024(s.alpha1024Cur, s.nominalRate)

	if s.algState == c4Initial {
		if s.nbPacketsInStartup > 0 {
			smoothedRTT := micros(snd.rttStats.SmoothedRTT())
			peakBW := snd.peakBandwidthEstimate()
			if smoothedRTT > 0 {
				minWin := (peakBW * smoothedRTT / 1_000_000) / 2
				if minWin > targetCwin {
					targetCwin = minWin
				}
			}
			if peakBW > 2*pacingRate {
				pacingRate = peakBW / 2
			}
		}
		if s.useSeedCwin && s.seedCwin > targetCwin {
			smoothedRTT := micros(snd.rttStats.SmoothedRTT())
			targetCwin = (s.seedCwin + targetCwin) / 2
			if smoothedRTT > 0 {
				if targetRate := (s.seedCwin * 1_000_000) / smoothedRTT; targetRate > pacingRate {
					pacingRate = targetRate
				}
			}
		}
		// Allow for bunching of packets during discovery: pace 25% fast.
		pacingRate = mul1024(1024+256, pacingRate)
	}

	if s.pigWar || s.nominalCwin < s.nominalMaxRTT {
		// In pig-war mode (or while jitter exceeds the window) loosen the
		// window so the flow keeps sending through jitter events, by
		// raising it to at least the BDP implied by nominal_max_rtt.
		jitterCwin := (pacingRate * s.nominalMaxRTT) / 1_000_000
		if jitterCwin > targetCwin {
			targetCwin = jitterCwin
		}
	}

	if s.algState == c4Pushing {
		if min := s.nominalCwin + uint64(snd.maxDatagramSize); targetCwin < min {
			targetCwin = min
		}
	}

	if snd.logger != nil && protocol.ByteCount(targetCwin) != snd.cwin {
		snd.logger.LogCongestionWindowChange(s.algState.String(), logging.ByteCount(snd.cwin), logging.ByteCount(targetCwin))
	}
	snd.cwin = protocol.ByteCount(targetCwin)
	quantum := targetCwin / 4
	switch {
	case quantum > 0x10000:
		quantum = 0x10000
	case quantum < uint64(2*snd.maxDatagramSize):
		quantum = uint64(2 * snd.maxDatagramSize)
	}
	snd.setPacingRate(Bandwidth(pacingRate), protocol.ByteCount(quantum))
}
