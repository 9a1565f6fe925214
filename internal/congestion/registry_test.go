package congestion

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRegistryPreRegistersC4(t *testing.T) {
	r := NewRegistry()
	factory, ok := r.Lookup(C4AlgorithmID)
	require.True(t, ok)
	require.NotNil(t, factory)

	alg := factory()
	require.NotNil(t, alg)
}

func TestRegisterReplacesSameID(t *testing.T) {
	r := NewRegistry()
	called := false
	err := r.Register(C4AlgorithmID, func() Algorithm {
		called = true
		return newDefaultC4Sender()
	})
	require.NoError(t, err)

	factory, ok := r.Lookup(C4AlgorithmID)
	require.True(t, ok)
	factory()
	require.True(t, called)
}

func TestRegisterFailsWhenFull(t *testing.T) {
	r := &Registry{}
	for i := 0; i < registryMaxAlgorithms; i++ {
		err := r.Register(string(rune('a'+i)), func() Algorithm { return newDefaultC4Sender() })
		require.NoError(t, err)
	}
	err := r.Register("overflow", func() Algorithm { return newDefaultC4Sender() })
	require.Error(t, err)
}

func TestLookupMissingReturnsFalse(t *testing.T) {
	r := &Registry{}
	_, ok := r.Lookup("nonexistent")
	require.False(t, ok)
}
