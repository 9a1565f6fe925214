package congestion

import (
	"math"
	"testing"

	"github.com/private-octopus/c4-go/internal/protocol"
	"github.com/stretchr/testify/require"
)

func TestResetRestoresStartupConfiguration(t *testing.T) {
	var s c4State
	s.reset("")

	require.Equal(t, uint64(math.MaxUint64), s.rttMin)
	require.Equal(t, uint64(protocol.CWINInitial)/2, s.nominalCwin)
	require.Equal(t, uint64(alphaInitial1024), s.alpha1024Cur)
	require.True(t, s.doSlowPush)
	require.True(t, s.doCascade)
}

func TestSetOptionsTogglesCascadeAndSlowPush(t *testing.T) {
	var s c4State
	s.reset("ko")
	require.False(t, s.doCascade)
	require.False(t, s.doSlowPush)

	s.reset("KO")
	require.True(t, s.doCascade)
	require.True(t, s.doSlowPush)
}

func TestSetOptionsStopsAtUnrecognizedFlag(t *testing.T) {
	var s c4State
	s.reset("kXO")
	require.False(t, s.doCascade)
	// The 'O' after the unrecognized 'X' is never processed.
	require.True(t, s.doSlowPush)
}

func TestSeedCwinOnlyAppliesDuringInitial(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.algState = c4Cruising
	snd.seedCwin(123456)
	require.False(t, snd.state.useSeedCwin)

	snd.state.algState = c4Initial
	snd.seedCwin(123456)
	require.True(t, snd.state.useSeedCwin)
	require.Equal(t, uint64(123456), snd.state.seedCwin)
}

func TestEnterInitialResetsEraAndStartupCounters(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.nbErasNoIncrease = 5
	snd.state.maxRate = 999
	snd.largestSentPacketNumber = 41

	snd.enterInitial(0)

	require.Equal(t, c4Initial, snd.state.algState)
	require.Equal(t, 0, snd.state.nbErasNoIncrease)
	require.Equal(t, uint64(0), snd.state.maxRate)
	require.Equal(t, uint64(42), snd.state.eraSequence)
	require.Equal(t, uint64(alphaInitial1024), snd.state.alpha1024Cur)
}

func TestExitInitialEntersRecovery(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.exitInitial(0)
	require.Equal(t, c4Recovery, snd.state.algState)
}

func TestInitialHandleLossExitsAfterThreshold(t *testing.T) {
	snd := newDefaultC4Sender()
	for range nbPacketsBeforeLoss {
		snd.initialHandleLoss(0)
	}
	require.Equal(t, c4Initial, snd.state.algState)

	snd.initialHandleLoss(0)
	require.Equal(t, c4Recovery, snd.state.algState)
}

func TestInitialHandleRTTExitsOnSustainedDelayAcrossEras(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.rttFilter.IsInit = true
	snd.state.recentDelayExcess = 1000
	snd.state.nbErasNoIncrease = 2

	snd.initialHandleRTT(0, 0)

	require.Equal(t, c4Recovery, snd.state.algState)
}

func TestInitialHandleAckRetiresSeedCwinOnceOutgrown(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.useSeedCwin = true
	snd.state.seedCwin = 1000
	snd.state.nominalCwin = 2000

	snd.initialHandleAck(0)

	require.False(t, snd.state.useSeedCwin)
}

func TestInitialHandleAckExitsAfterThreeStalledEras(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.pushAlpha = alphaPush1024
	snd.state.pushRateOld = 1000
	snd.state.nominalRate = 1000 // no growth, era after era

	for i := 0; i < 3; i++ {
		snd.largestAckedPacketNumber = protocol.PacketNumber(snd.state.eraSequence)
		snd.state.pushWasNotLimited = true // growthReset clears this every non-final era
		snd.initialHandleAck(0)
	}

	require.Equal(t, c4Recovery, snd.state.algState)
}

func TestComputeCorrectedDeliveredBytesUntrustedRTTMinIsNoop(t *testing.T) {
	var s c4State
	s.rttMin = math.MaxUint64
	require.Equal(t, uint64(5000), s.computeCorrectedDeliveredBytes(5000, 999999))
}

func TestComputeCorrectedDeliveredBytesScalesDownLongSamples(t *testing.T) {
	var s c4State
	s.rttMin = 10_000
	got := s.computeCorrectedDeliveredBytes(10_000, 40_000) // 4x rtt_min
	require.Less(t, got, uint64(10_000))
}

func TestComputeCorrectedDeliveredBytesLeavesShortSamplesAlone(t *testing.T) {
	var s c4State
	s.rttMin = 10_000
	got := s.computeCorrectedDeliveredBytes(5000, 10_200) // within the 5% margin
	require.Equal(t, uint64(5000), got)
}

func TestNotifyCongestionCutsWindowByBeta(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.algState = c4Cruising
	snd.state.nominalCwin = 100_000
	snd.state.nominalRate = 100_000
	snd.state.maxBytesAck = 100_000

	snd.notifyCongestion(0, false, 0)

	require.Equal(t, c4Recovery, snd.state.algState)
	require.True(t, snd.state.congestionNotified)
	require.Less(t, snd.state.nominalCwin, uint64(100_000))
}

func TestNotifyCongestionNeverDropsBelowCwinMinimum(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.algState = c4Cruising
	snd.state.nominalCwin = uint64(protocol.CWINMinimum)
	snd.state.nominalRate = 1000

	snd.notifyCongestion(0, false, 0)

	require.GreaterOrEqual(t, snd.state.nominalCwin, uint64(protocol.CWINMinimum))
}

func TestNotifyCongestionIgnoresWhileAlreadyFrozenForLoss(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.algState = c4Recovery
	snd.state.lastFreezeWasNotDelay = true
	snd.state.nominalCwin = 100_000

	snd.notifyCongestion(0, false, 0) // a loss signal, not delay

	require.Equal(t, uint64(100_000), snd.state.nominalCwin)
}

func TestEnterCruiseSkipsCruiseWindowAfterPushSuccessWithCascade(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.nbPushNoCongestion = 1
	snd.state.doCascade = true

	snd.enterCruise(0)

	require.Equal(t, uint64(0), snd.state.nbCruiseLeftBeforePush)
	require.Equal(t, c4Cruising, snd.state.algState)
}

func TestEnterPushPicksLowAlphaOnFirstAttempt(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.nbPushNoCongestion = 0
	snd.state.pigWar = false
	snd.state.doSlowPush = true

	snd.enterPush(0)

	require.Equal(t, uint64(alphaPushLow1024), snd.state.alpha1024Cur)
	require.Equal(t, c4Pushing, snd.state.algState)
}

func TestEnterPushPicksFullAlphaDuringPigWar(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.nbPushNoCongestion = 0
	snd.state.pigWar = true

	snd.enterPush(0)

	require.Equal(t, uint64(alphaPush1024), snd.state.alpha1024Cur)
}

func TestStartPigWarRediscoversRTTMinAndReentersInitial(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.algState = c4Cruising

	snd.startPigWar(0)

	require.True(t, snd.state.pigWar)
	require.Equal(t, 0, snd.state.nbErasDelayBasedDecrease)
	require.Equal(t, c4Initial, snd.state.algState)
}

func TestIsSlowdownNeededUrgentWhenFilterFloorExceedsRTTMin(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.rttMin = 10_000
	snd.state.nominalCwin = 100_000
	snd.state.rttFilter.SampleMin = microsToDuration(20_000)
	snd.state.rttMinStamp = 0

	needed, isNatural := snd.isSlowdownNeeded(0, 1000)

	require.True(t, needed)
	require.True(t, isNatural)
}

func TestIsSlowdownNeededFalseWhileAlreadySlowingDown(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.algState = c4Slowdown

	needed, _ := snd.isSlowdownNeeded(1_000_000_000, 0)

	require.False(t, needed)
}

func TestIsSlowdownNeededAfterTimeout(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.rttMin = 10_000
	snd.state.rttMinStamp = 0

	needed, isNatural := snd.isSlowdownNeeded(micros(slowdownDelay)+1, snd.state.nominalCwin)

	require.True(t, needed)
	require.False(t, isNatural)
}

func TestEnterCheckingSetsChecking(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.enterChecking(0)
	require.Equal(t, c4Checking, snd.state.algState)
	require.Equal(t, uint64(alphaChecking1024), snd.state.alpha1024Cur)
}

func TestEndCheckingEraReturnsToCruiseOnTransientDip(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.rttMin = 10_000
	snd.state.runningRTTMin = 10_000
	snd.state.lastSlowdownRTTMin = 5_000

	snd.endCheckingEra(0)

	require.Equal(t, c4Cruising, snd.state.algState)
}
