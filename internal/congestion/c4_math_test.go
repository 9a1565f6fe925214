package congestion

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMul1024Identity(t *testing.T) {
	require.Equal(t, uint64(1000), mul1024(1024, 1000))
}

func TestMul1024Half(t *testing.T) {
	require.Equal(t, uint64(500), mul1024(512, 1000))
}

func TestLog2Q10PowersOfTwo(t *testing.T) {
	require.Equal(t, uint64(0), log2Q10(1))
	require.Equal(t, uint64(1024), log2Q10(2))
	require.Equal(t, uint64(2048), log2Q10(4))
	require.Equal(t, uint64(10*1024), log2Q10(1024))
}

func TestLog2Q10Monotonic(t *testing.T) {
	prev := uint64(0)
	for _, v := range []uint64{1, 2, 3, 7, 8, 100, 1000, 1 << 20} {
		got := log2Q10(v)
		require.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestCruiseBytesTargetGrowsWithWindow(t *testing.T) {
	small := cruiseBytesTarget(1 << 12)
	large := cruiseBytesTarget(1 << 24)
	require.Greater(t, large, small)
	require.Greater(t, small, uint64(1<<12))
}

func TestCruiseBytesTargetClampsAtExtremes(t *testing.T) {
	// Below the clamp floor (2^11), the multiplier should behave as if l
	// were exactly the floor.
	tiny := cruiseBytesTarget(1)
	require.Greater(t, tiny, uint64(1))

	// Above the clamp ceiling (2^28), the multiplier saturates at 8x.
	huge := cruiseBytesTarget(1 << 30)
	require.Equal(t, uint64(1<<30)+mul1024(8*1024, uint64(1<<30)), huge)
}
