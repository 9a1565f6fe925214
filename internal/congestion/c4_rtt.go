package congestion

import "github.com/private-octopus/c4-go/internal/protocol"

// delayThresholdMicros computes the delay threshold for declaring
// congestion: the smaller of rttMin/8 and delayThresholdMax.
func delayThresholdMicros(rttMinMicros uint64) uint64 {
	delay := rttMinMicros / 8
	if max := micros(delayThresholdMax); delay > max {
		delay = max
	}
	return delay
}

// resetMinRTT rebases rtt_min (and everything derived from it) to a newly
// discovered value, mirroring c4_reset_min_rtt.
func (s *c4State) resetMinRTT(newRTTMin, lastRTT uint64, nowMicros uint64) {
	s.rttMin = newRTTMin
	s.runningRTTMin = lastRTT
	s.rttMinStamp = nowMicros
	s.delayThreshold = delayThresholdMicros(s.rttMin)
	s.rttMinIsTrusted = true
}

// resetRTTFilter collapses the min-max filter around the current rtt_min,
// mirroring c4_reset_rtt_filter: the filter otherwise remembers up to
// protocol.MinMaxRTTScope stale samples, which is too much memory right after
// a deliberate min-RTT rediscovery.
func (s *c4State) resetRTTFilter() {
	s.rttFilter.Reset(microsToDuration(s.rttMin))
}

// updateRTT folds a new RTT sample into the filter and, outside of that,
// changes only rtt_min/rtt_min_stamp/rtt_min_is_trusted/delay_threshold,
// running_rtt_min, era_max_rtt, the update counter and recent_delay_excess.
// It never drives a state transition by itself.
func (s *c4State) updateRTT(rttMeasurementMicros uint64, nowMicros uint64) {
	s.rttFilter.Update(microsToDuration(rttMeasurementMicros))
	s.nbRTTUpdateSinceDiscovery++

	sampleMin := micros(s.rttFilter.SampleMin)
	sampleMax := micros(s.rttFilter.SampleMax)
	filteredMin := micros(s.rttFilter.RTTFilteredMin)

	if filteredMin == 0 || filteredMin > sampleMax {
		s.rttFilter.RTTFilteredMin = microsToDuration(sampleMax)
		filteredMin = sampleMax
	}

	if !s.rttFilter.IsInit {
		return
	}

	// Use the max of the last samples as the candidate rtt_min, which
	// filters out jitter; but if the samples themselves swing too widely,
	// average sample_min and sample_max instead so chaotic jitter doesn't
	// delay detection.
	samplesMin := sampleMax
	if 2*sampleMin < sampleMax {
		samplesMin = (sampleMin + sampleMax) / 2
	}
	if samplesMin < s.rttMin {
		s.resetMinRTT(samplesMin, rttMeasurementMicros, nowMicros)
	}
	if samplesMin < s.runningRTTMin {
		s.runningRTTMin = samplesMin
	}

	if sampleMin > filteredMin && s.nbRTTUpdateSinceDiscovery > protocol.MinMaxRTTScope {
		target := s.nominalMaxRTT + s.delayThreshold
		if sampleMin > target {
			s.recentDelayExcess = sampleMin - target
		} else {
			s.recentDelayExcess = 0
		}
	} else {
		s.recentDelayExcess = 0
	}

	if rttMeasurementMicros > s.eraMaxRTT {
		s.eraMaxRTT = rttMeasurementMicros
	}
}

// handleRTT reacts to an RTT measurement outside of the initial state: if
// rtt_min is trusted and a sustained excess delay has been observed, treat
// it as a delay-based congestion signal.
func (s *c4State) handleRTT(sender *c4Sender, rttMeasurementMicros uint64, nowMicros uint64) {
	if s.rttMinIsTrusted && s.recentDelayExcess > 0 {
		if sender.logger != nil {
			sender.logger.LogDelayExcess(s.recentDelayExcess, s.delayThreshold)
		}
		if !s.pigWar {
			sender.notifyCongestion(rttMeasurementMicros, true, nowMicros)
		}
	}
}
