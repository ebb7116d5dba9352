package roller_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delveforge/delve-engine/internal/pkg/roller"
)

func TestSeededIsDeterministic(t *testing.T) {
	a := roller.NewSeeded(42)
	b := roller.NewSeeded(42)

	for i := 0; i < 100; i++ {
		av, err := a.Roll(20)
		require.NoError(t, err)
		bv, err := b.Roll(20)
		require.NoError(t, err)
		assert.Equal(t, av, bv, "same seed must produce the same sequence")
	}
}

func TestRollBounds(t *testing.T) {
	r := roller.NewSeeded(7)
	for i := 0; i < 1000; i++ {
		v, err := r.Roll(6)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 6)
	}
}

func TestRollN(t *testing.T) {
	r := roller.NewSeeded(7)
	vs, err := r.RollN(4, 6)
	require.NoError(t, err)
	assert.Len(t, vs, 4)
}

func TestRollRejectsBadSizes(t *testing.T) {
	r := roller.NewSeeded(7)

	_, err := r.Roll(0)
	assert.Error(t, err)

	_, err = r.RollN(0, 6)
	assert.Error(t, err)
}
