package congestion

// growthEvaluate assesses whether the era that just ended grew the nominal
// rate enough to count as a successful push, and feeds that verdict into
// the no-increase / delay-based-decrease counters that drive pig-war
// detection and the cascade-to-initial decision.
func (s *c4State) growthEvaluate() {
	var isGrowing bool
	if s.pushAlpha > alphaPushLow1024 {
		// push_alpha was large enough to make growth a meaningful signal.
		target := (3*s.pushRateOld + mul1024(s.pushAlpha, s.pushRateOld)) / 4
		isGrowing = s.nominalRate > target
	} else {
		// push_alpha was too small to measure growth directly: fall back
		// to whether the rate increased at all and nothing congested.
		isGrowing = s.nominalRate > s.pushRateOld && !s.congestionNotified
	}

	if isGrowing {
		s.nbPushNoCongestion++
		s.nbErasNoIncrease = 0
		if s.nbErasDelayBasedDecrease > 0 {
			s.nbErasDelayBasedDecrease--
		}
	} else if s.pushWasNotLimited {
		s.nbPushNoCongestion = 0
		s.nbErasNoIncrease++
		if s.congestionDelayNotified {
			s.nbErasDelayBasedDecrease++
		}
	}
}

// growthReset clears the per-era congestion flags and snapshots the
// current rate/alpha as the baseline the next era's growth will be judged
// against.
func (s *c4State) growthReset() {
	s.congestionNotified = false
	s.congestionDelayNotified = false
	s.pushWasNotLimited = false
	s.pushRateOld = s.nominalRate
	// pushAlpha is re-snapshotted properly when entering push.
	s.pushAlpha = s.alpha1024Cur
}
