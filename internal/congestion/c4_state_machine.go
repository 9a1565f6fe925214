package congestion

import (
	"math"

	"github.com/private-octopus/c4-go/internal/protocol"
)

// reset restores the controller to its startup configuration, mirroring
// c4_reset (minus the final c4_enter_initial call, which needs access to
// the sender's packet-number bookkeeping and is performed by the caller).
func (s *c4State) reset(optionString string) {
	*s = c4State{}
	s.optionString = optionString
	s.rttMin = math.MaxUint64
	s.nominalCwin = uint64(protocol.CWINInitial) / 2
	s.alpha1024Cur = alphaInitial1024
	s.doSlowPush = true
	s.doCascade = true
	s.lastSlowdownRTTMin = 0
	s.setOptions()
}

// setOptions parses the option string's single-letter flags, mirroring
// c4_set_options: 'K'/'k' toggle the cascade behavior (skipping the cruise
// wait after a successful push), 'O'/'o' toggle the slow-push behavior. Parsing stops at the first
// unrecognized character.
func (s *c4State) setOptions() {
	for _, c := range s.optionString {
		switch c {
		case 'K':
			s.doCascade = true
		case 'k':
			s.doCascade = false
		case 'O':
			s.doSlowPush = true
		case 'o':
			s.doSlowPush = false
		default:
			return
		}
	}
}

// eraReset starts a new era at the sender's next packet number.
func (snd *c4Sender) eraReset() {
	snd.state.eraReset(snd.largestSentPacketNumber + 1)
}

// seedCwin records a congestion-window hint carried over from a previous
// trial (e.g. a 0-RTT resumption), mirroring c4_seed_cwin. It only takes
// effect while still in the initial state.
func (snd *c4Sender) seedCwin(bytesInFlight uint64) {
	if snd.state.algState == c4Initial {
		snd.state.useSeedCwin = true
		snd.state.seedCwin = bytesInFlight
	}
}

// enterInitial (re)enters the initial/bandwidth-discovery state, mirroring
// c4_enter_initial.
func (snd *c4Sender) enterInitial(nowMicros uint64) {
	s := &snd.state
	prev := s.algState
	s.algState = c4Initial
	s.nbPushNoCongestion = 0
	s.alpha1024Cur = alphaInitial1024
	s.nbPacketsInStartup = 0
	s.nbRTTUpdateSinceDiscovery = 0
	snd.eraReset()
	s.nbErasNoIncrease = 0
	s.nbErasDelayBasedDecrease = 0
	s.maxCwin = 0
	s.maxRate = 0
	s.growthReset()
	snd.logStateChange(prev, c4Initial)
}

// exitInitial leaves the initial state for recovery, mirroring
// c4_exit_initial.
func (snd *c4Sender) exitInitial(nowMicros uint64) {
	s := &snd.state
	s.nbErasNoIncrease = 0
	s.nbPushNoCongestion = 0
	s.nbErasDelayBasedDecrease = 0
	snd.enterRecovery(false, false, nowMicros)
}

// initialHandleRTT implements the HyStart-style exit test: once the min-max
// RTT filter has enough samples and a sustained delay excess has been
// observed across more than one non-increasing era, assume slow start has
// found the bottleneck and leave initial.
func (snd *c4Sender) initialHandleRTT(rttMeasurementMicros, nowMicros uint64) {
	s := &snd.state
	if s.rttFilter.IsInit && s.recentDelayExcess > 0 && s.nbErasNoIncrease > 1 {
		snd.exitInitial(nowMicros)
	}
}

// initialHandleLoss exits initial once enough packets have been sent to
// trust a loss signal this early, mirroring c4_initial_handle_loss.
func (snd *c4Sender) initialHandleLoss(nowMicros uint64) {
	s := &snd.state
	s.nbPacketsInStartup++
	if s.nbPacketsInStartup > nbPacketsBeforeLoss {
		snd.exitInitial(nowMicros)
	}
}

// initialHandleAck mirrors c4_initial_handle_ack: validates (and then
// retires) a seed cwin once the discovered nominal window outgrows it, and
// at the end of every era checks whether growth has stalled for long
// enough to leave initial.
func (snd *c4Sender) initialHandleAck(nowMicros uint64) {
	s := &snd.state
	s.nbPacketsInStartup++
	if s.useSeedCwin && s.nominalCwin >= s.seedCwin {
		s.useSeedCwin = false
	}
	if !s.eraCheck(snd.largestAckedPacketNumber) {
		return
	}
	s.growthEvaluate()
	snd.eraReset()
	if s.nbErasNoIncrease >= 3 {
		snd.exitInitial(nowMicros)
		return
	}
	s.growthReset()
}

// computeCorrectedDeliveredBytes scales down a delivered-bytes sample when
// its RTT measurement ran long enough to suggest it spans more than one
// round trip (plus a 5% margin), mirroring
// c4_compute_corrected_delivered_bytes.
func (s *c4State) computeCorrectedDeliveredBytes(nbBytesDelivered, rttMeasurementMicros uint64) uint64 {
	if s.rttMin == math.MaxUint64 {
		return nbBytesDelivered
	}
	durationMax := mul1024(uint64(1024+rttMargin5Percent), s.rttMin)
	if rttMeasurementMicros > durationMax && rttMeasurementMicros > 0 {
		ratio := (durationMax * 1024) / rttMeasurementMicros
		nbBytesDelivered = mul1024(ratio, nbBytesDelivered)
	}
	return nbBytesDelivered
}

// handleAck is the main per-ACK entry point, mirroring c4_handle_ack: it
// updates the rate/window estimate from the delivered-bytes sample, then
// (outside of initial) checks whether the current era has ended and drives
// whatever state transition that implies.
func (snd *c4Sender) handleAck(ackState PerAckState, nowMicros uint64) {
	s := &snd.state
	previousRate := s.nominalRate
	var rateMeasurement uint64

	rttMeasurementMicros := micros(ackState.RTTMeasurement)
	deliveredBytes := uint64(ackState.NbBytesDeliveredSincePacketSent)
	correctedDeliveredBytes := s.computeCorrectedDeliveredBytes(deliveredBytes, rttMeasurementMicros)

	if rttMeasurementMicros > 0 {
		correctedRTT := rttMeasurementMicros
		if correctedRTT < s.rttMin && s.rttMin != math.MaxUint64 {
			correctedRTT = s.rttMin
		}
		if correctedRTT > 0 {
			rateMeasurement = (deliveredBytes * 1_000_000) / correctedRTT
		}

		if s.algState != c4Initial {
			// ACK compression can make the rate measurement spike; cap it
			// at the push rate, since the sender never paces faster than
			// that outside of a push.
			if max := mul1024(alphaPush1024, s.nominalRate); rateMeasurement > max {
				rateMeasurement = max
			}
		}

		if rateMeasurement > s.nominalRate {
			s.nominalRate = rateMeasurement
			s.pushWasNotLimited = true
		}
	}

	if correctedDeliveredBytes > s.nominalCwin && (!s.useSeedCwin || s.algState == c4Initial) {
		s.nominalCwin = correctedDeliveredBytes
		s.pushWasNotLimited = true
	} else if deliveredBytes > s.nominalCwin {
		s.pushWasNotLimited = true
	}

	if rateMeasurement >= previousRate && deliveredBytes > s.maxBytesAck {
		s.maxBytesAck = deliveredBytes
	}

	if s.algState == c4Initial {
		snd.initialHandleAck(nowMicros)
		return
	}

	if !s.eraCheck(snd.largestAckedPacketNumber) {
		return
	}

	// The era ended "naturally": fold in the latest RTT sample and update
	// the running estimate of nominal_max_rtt (the "expected jitter").
	rttSampleMicros := micros(snd.rttStats.LatestRTT())
	if rttSampleMicros > s.eraMaxRTT {
		s.eraMaxRTT = rttSampleMicros
	}
	if s.nominalMaxRTT == 0 {
		s.nominalMaxRTT = s.eraMaxRTT
	} else if s.alpha1024Old <= alphaPreviousLow {
		if s.eraMaxRTT >= s.nominalMaxRTT {
			s.nominalMaxRTT = s.eraMaxRTT
		} else {
			s.nominalMaxRTT = (7*s.nominalMaxRTT + s.eraMaxRTT) / 8
		}
	}

	if needed, isNatural := snd.isSlowdownNeeded(nowMicros, deliveredBytes); needed {
		if isNatural {
			snd.enterChecking(nowMicros)
		} else {
			snd.enterSlowdown(nowMicros)
		}
		return
	}

	switch s.algState {
	case c4Recovery:
		snd.exitRecovery(nowMicros)
	case c4Cruising:
		if s.nbCruiseLeftBeforePush > 0 {
			s.nbCruiseLeftBeforePush--
		}
		snd.eraReset()
		if s.nbCruiseLeftBeforePush == 0 && s.pushWasNotLimited {
			snd.enterPush(nowMicros)
		}
	case c4Pushing:
		snd.enterRecovery(false, false, nowMicros)
	case c4Slowdown:
		snd.enterChecking(nowMicros)
	case c4Checking:
		snd.endCheckingEra(nowMicros)
	default:
		snd.eraReset()
	}
}

// notifyCongestion reacts to an ECN mark, a sustained loss rate, or a
// delay-excess signal: outside of pushing it cuts
// nominal_cwin/nominal_rate/max_bytes_ack by beta (scaled down for smaller
// delay overshoots); while pushing it only clears nb_push_no_congestion.
// Either way it then enters recovery, mirroring c4_notify_congestion.
func (snd *c4Sender) notifyCongestion(rttLatestMicros uint64, isDelay bool, nowMicros uint64) {
	s := &snd.state
	beta := uint64(betaLoss1024)

	s.congestionNotified = true
	if isDelay {
		s.congestionDelayNotified = true
	}

	if s.algState == c4Recovery && (!isDelay || !s.lastFreezeWasNotDelay) {
		// Already frozen for this interval; do not stack reactions.
		return
	}

	if isDelay {
		if s.delayThreshold > 0 {
			beta = s.recentDelayExcess * 1024 / s.delayThreshold
		}
		if beta > betaLoss1024 {
			beta = betaLoss1024
		}
	} else {
		s.recentDelayExcess = 0
	}

	if s.algState == c4Pushing {
		s.nbPushNoCongestion = 0
	} else {
		s.nominalCwin -= mul1024(beta, s.nominalCwin)
		s.nominalRate -= mul1024(beta, s.nominalRate)
		s.maxBytesAck -= mul1024(beta, s.maxBytesAck)

		if min := uint64(protocol.CWINMinimum); s.nominalCwin < min {
			s.nominalCwin = min
		}
	}

	snd.enterRecovery(true, isDelay, nowMicros)
	snd.applyRateAndCwin()
}

// enterRecovery freezes alpha at alphaRecover1024 for one era, mirroring
// c4_enter_recovery.
func (snd *c4Sender) enterRecovery(isCongested, isDelay bool, nowMicros uint64) {
	s := &snd.state
	prev := s.algState
	if !isCongested {
		s.lastFreezeWasNotDelay = false
	} else {
		s.nbPushNoCongestion = 0
		s.lastFreezeWasNotDelay = !isDelay
	}
	s.alpha1024Cur = alphaRecover1024

	if s.algState == c4Initial {
		s.growthReset()
	}
	s.algState = c4Recovery
	snd.eraReset()
	snd.logStateChange(prev, c4Recovery)
}

// exitRecovery evaluates whether the previous era grew nominal_rate, then
// routes to pig-war detection, a cascade back to initial, or cruising,
// mirroring c4_exit_recovery.
func (snd *c4Sender) exitRecovery(nowMicros uint64) {
	s := &snd.state
	s.growthEvaluate()
	s.growthReset()
	if s.nominalCwin > s.maxCwin {
		s.maxCwin = s.nominalCwin
	}
	if s.nominalRate > s.maxRate {
		s.maxRate = s.nominalRate
	}
	s.recentDelayExcess = 0
	s.nbRTTUpdateSinceDiscovery = 0

	switch {
	case !s.pigWar &&
		((s.nbErasDelayBasedDecrease >= maxDelayEraCongestions && 2*s.nominalCwin < s.maxCwin) ||
			(s.nbErasDelayBasedDecrease > maxDelayEraCongestions && 5*s.nominalCwin < 4*s.maxCwin)):
		snd.logPigWar(true, "decrease")
		snd.startPigWar(nowMicros)
	case s.nbPushNoCongestion >= nbPushBeforeReset:
		if s.pigWar {
			// Bandwidth has recovered: assume the competing flow is gone.
			snd.logPigWar(false, "bandwidth recovered")
			s.pigWar = false
			s.nbPushNoCongestion = 0
			snd.enterCruise(nowMicros)
		} else {
			snd.enterInitial(nowMicros)
		}
	case s.pigWar && s.nbPushNoCongestion > 0:
		snd.logPigWar(false, "bandwidth recovered early")
		s.pigWar = false
		s.nbPushNoCongestion = 0
		snd.enterCruise(nowMicros)
	default:
		snd.enterCruise(nowMicros)
	}
}

// logPigWar reports entering or leaving pig-war mode, when a logger is
// attached.
func (snd *c4Sender) logPigWar(starting bool, reason string) {
	if snd.logger != nil {
		snd.logger.LogPigWar(starting, reason)
	}
}

// logStateChange reports a state-machine transition, when a logger is
// attached and the transition actually changes state.
func (snd *c4Sender) logStateChange(from, to c4AlgState) {
	if snd.logger != nil && from != to {
		snd.logger.LogStateChange(from.String(), to.String(), snd.state.nominalCwin, snd.state.nominalRate)
	}
}

// enterCruise mirrors c4_enter_cruise.
func (snd *c4Sender) enterCruise(nowMicros uint64) {
	s := &snd.state
	prev := s.algState
	snd.eraReset()
	s.useSeedCwin = false

	if s.nbPushNoCongestion > 0 && s.doCascade {
		s.nbCruiseLeftBeforePush = 0
	} else {
		s.nbCruiseLeftBeforePush = nbCruiseBeforePush
	}
	s.alpha1024Cur = alphaCruise1024
	s.algState = c4Cruising
	snd.logStateChange(prev, c4Cruising)
}

// enterPush mirrors c4_enter_push.
func (snd *c4Sender) enterPush(nowMicros uint64) {
	s := &snd.state
	prev := s.algState
	if s.nbPushNoCongestion == 0 && !s.pigWar && s.doSlowPush {
		s.alpha1024Cur = alphaPushLow1024
	} else {
		s.alpha1024Cur = alphaPush1024
	}
	s.pushAlpha = s.alpha1024Cur
	snd.eraReset()
	s.algState = c4Pushing
	snd.logStateChange(prev, c4Pushing)
}

// startPigWar rediscovers rtt_min from the current sample and restarts
// bandwidth discovery, mirroring c4_start_pig_war.
func (snd *c4Sender) startPigWar(nowMicros uint64) {
	s := &snd.state
	rttSample := snd.rttStats.LatestRTT()
	s.pigWar = true
	s.nbErasDelayBasedDecrease = 0
	s.rttMin = micros(rttSample)
	s.rttMinStamp = nowMicros
	s.resetRTTFilter()
	s.rttFilter.RTTFilteredMin = rttSample
	snd.enterInitial(nowMicros)
}

// enterSlowdown mirrors c4_enter_slowdown: it sets alpha to
// alphaSlowdown1024, halving the emitted window and rate for one era, and
// restamps rtt_min (keeping its value) with running_rtt_min restarted from
// the filter's current sample_max.
func (snd *c4Sender) enterSlowdown(nowMicros uint64) {
	s := &snd.state
	prev := s.algState
	currentRTT := micros(s.rttFilter.SampleMax)
	s.alpha1024Cur = alphaSlowdown1024
	s.resetMinRTT(s.rttMin, currentRTT, nowMicros)
	s.algState = c4Slowdown
	snd.eraReset()
	snd.logStateChange(prev, c4Slowdown)
}

// isSlowdownNeeded mirrors c4_is_slowdown_needed: a slowdown is due once
// rtt_min_stamp is old enough, scaled faster if the filter is already
// showing a higher floor than rtt_min (an "urgent" rediscovery). isNatural
// reports whether the flow is already sending below the target window,
// in which case entering checking directly (skipping the actual slowdown)
// is enough to validate rtt_min.
func (snd *c4Sender) isSlowdownNeeded(nowMicros uint64, bytesDeliveredSincePacketSent uint64) (needed, isNatural bool) {
	s := &snd.state
	if s.algState == c4Slowdown || s.algState == c4Checking {
		return false, false
	}

	slowdownDelayMicros := micros(slowdownDelay)
	cwndTarget := s.nominalCwin
	isUrgent := false

	if min := s.rttMin * slowdownRTTCount; slowdownDelayMicros < min {
		slowdownDelayMicros = min
	}

	sampleMin := micros(s.rttFilter.SampleMin)
	if s.rttMin > 0 && sampleMin > s.rttMin {
		alphaDelay := s.rttMin * 1024 / sampleMin
		alphaCwnd := uint64(1024) * sampleMin / s.rttMin
		cwndTarget = mul1024(alphaCwnd, s.nominalCwin)
		slowdownDelayMicros = mul1024(alphaDelay, slowdownDelayMicros)
		isUrgent = true
	}

	isNatural = 2*bytesDeliveredSincePacketSent < cwndTarget
	needed = (isNatural && isUrgent) || (s.rttMinStamp+slowdownDelayMicros < nowMicros)
	return needed, isNatural
}

// enterChecking mirrors c4_enter_checking.
func (snd *c4Sender) enterChecking(nowMicros uint64) {
	s := &snd.state
	prev := s.algState
	s.alpha1024Cur = alphaChecking1024
	s.algState = c4Checking
	snd.eraReset()
	snd.logStateChange(prev, c4Checking)
}

// endCheckingEra mirrors c4_end_checking_era: if the RTT floor measured
// since running_rtt_min was last reset and the floor recorded at the end of
// the previous checking era (last_slowdown_rtt_min) are both higher than
// rtt_min, that is two independent observations that the path's minimum delay has
// genuinely increased, so either start a pig war (if the jump looks like
// contention) or rediscover rtt_min and restart bandwidth discovery;
// otherwise the dip was transient and cruising resumes unchanged.
func (snd *c4Sender) endCheckingEra(nowMicros uint64) {
	s := &snd.state
	lastSlowdownRTTMin := s.lastSlowdownRTTMin
	rttSampleMicros := micros(snd.rttStats.LatestRTT())

	if rttSampleMicros < s.runningRTTMin {
		s.runningRTTMin = rttSampleMicros
	}
	s.lastSlowdownRTTMin = s.runningRTTMin

	if s.runningRTTMin > s.rttMin && lastSlowdownRTTMin > s.rttMin {
		if !s.pigWar && rttSampleMicros > 2*s.rttMin {
			snd.logPigWar(true, "checking")
			snd.startPigWar(nowMicros)
		} else {
			s.nbErasDelayBasedDecrease = 0
			s.resetMinRTT(s.runningRTTMin, rttSampleMicros, nowMicros)
			s.resetRTTFilter()
			snd.enterInitial(nowMicros)
		}
	} else {
		s.resetMinRTT(s.rttMin, rttSampleMicros, nowMicros)
		snd.enterCruise(nowMicros)
	}
}
