package congestion

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyRateAndCwinNeutralAlpha(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.algState = c4Cruising
	snd.state.alpha1024Cur = alphaNeutral1024
	snd.state.nominalCwin = 50_000
	snd.state.nominalRate = 10_000_000
	snd.state.nominalMaxRTT = 0

	snd.applyRateAndCwin()

	require.Equal(t, uint64(50_000), uint64(snd.cwin))
}

func TestApplyRateAndCwinPushingEnforcesMinimumAboveNominal(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.algState = c4Pushing
	snd.state.alpha1024Cur = alphaPush1024
	snd.state.nominalCwin = 1000
	snd.state.nominalRate = 1000

	snd.applyRateAndCwin()

	require.GreaterOrEqual(t, uint64(snd.cwin), snd.state.nominalCwin+uint64(snd.maxDatagramSize))
}

func TestApplyRateAndCwinPigWarLoosensWindow(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.algState = c4Cruising
	snd.state.alpha1024Cur = alphaNeutral1024
	snd.state.nominalCwin = 1000
	snd.state.nominalRate = 1_000_000
	snd.state.nominalMaxRTT = 100_000 // 100ms, expressed directly in micros
	snd.state.pigWar = true

	snd.applyRateAndCwin()

	// jitterCwin = pacingRate * nominalMaxRTT / 1e6, expected to dominate
	// the tiny nominal_cwin configured above.
	require.Greater(t, uint64(snd.cwin), uint64(1000))
}

func TestApplyRateAndCwinQuantumFloorsAtTwoDatagrams(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.algState = c4Cruising
	snd.state.alpha1024Cur = alphaNeutral1024
	snd.state.nominalCwin = 10
	snd.state.nominalRate = 10

	snd.applyRateAndCwin()

	require.Equal(t, 2*snd.maxDatagramSize, snd.quantum)
}

func TestApplyRateAndCwinQuantumCapsAt64KiB(t *testing.T) {
	snd := newDefaultC4Sender()
	snd.state.algState = c4Cruising
	snd.state.alpha1024Cur = alphaNeutral1024
	snd.state.nominalCwin = 10_000_000
	snd.state.nominalRate = 10_000_000

	snd.applyRateAndCwin()

	require.LessOrEqual(t, uint64(snd.quantum), uint64(0x10000))
}
