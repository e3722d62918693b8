package rng_test

import (
	"testing"

	"github.com/ironveil/tactics/internal/game/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"
)

// fixedSrc is a deterministic Source for testing. Every Intn call returns
// the configured value regardless of the bound.
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

// TestChance_Boundaries verifies that percent <= 0 never passes and
// percent >= 100 always passes, regardless of the underlying source.
func TestChance_Boundaries(t *testing.T) {
	assert.False(t, rng.Chance(fixedSrc{val: 0}, 0), "0% must never pass")
	assert.False(t, rng.Chance(fixedSrc{val: 0}, -10), "negative % must never pass")
	assert.True(t, rng.Chance(fixedSrc{val: 99}, 100), "100% must always pass")
	assert.True(t, rng.Chance(fixedSrc{val: 99}, 150), "over 100% must always pass")
}

// TestChance_ThresholdComparison verifies the roll-under semantics: a draw of
// exactly percent fails, a draw below percent passes.
func TestChance_ThresholdComparison(t *testing.T) {
	assert.True(t, rng.Chance(fixedSrc{val: 24}, 25), "draw 24 vs 25% must pass")
	assert.False(t, rng.Chance(fixedSrc{val: 25}, 25), "draw 25 vs 25% must fail")
}

// TestBetween_Bounds verifies the postcondition lo <= result <= hi for
// arbitrary inclusive ranges.
func TestBetween_Bounds(t *testing.T) {
	src := rng.NewSeededSource(7)
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-50, 50).Draw(rt, "lo")
		span := rapid.IntRange(0, 100).Draw(rt, "span")
		hi := lo + span

		v := rng.Between(src, lo, hi)
		assert.GreaterOrEqual(rt, v, lo, "Between must not go under lo")
		assert.LessOrEqual(rt, v, hi, "Between must not go over hi")
	})
}

// TestBetween_DegenerateRange verifies that lo == hi returns lo without
// consulting the source.
func TestBetween_DegenerateRange(t *testing.T) {
	assert.Equal(t, 4, rng.Between(fixedSrc{val: 999}, 4, 4))
}

// TestMultiplier_MidpointIsUnity verifies that the midpoint draw yields
// exactly 1.0, which deterministic combats depend on.
func TestMultiplier_MidpointIsUnity(t *testing.T) {
	m := rng.Multiplier(fixedSrc{val: 500}, 0.1)
	assert.InDelta(t, 1.0, m, 1e-9, "midpoint draw must yield exactly 1.0")
}

// TestMultiplier_Window verifies the postcondition
// 1-window <= result <= 1+window across the full draw range.
func TestMultiplier_Window(t *testing.T) {
	low := rng.Multiplier(fixedSrc{val: 0}, 0.1)
	high := rng.Multiplier(fixedSrc{val: 1000}, 0.1)
	assert.InDelta(t, 0.9, low, 1e-9, "lowest draw must yield 1-window")
	assert.InDelta(t, 1.1, high, 1e-9, "highest draw must yield 1+window")
}

// TestMultiplier_ZeroWindow verifies that a zero window always returns 1.0.
func TestMultiplier_ZeroWindow(t *testing.T) {
	assert.Equal(t, 1.0, rng.Multiplier(fixedSrc{val: 1000}, 0))
}

// TestMultiplier_Property verifies the window postcondition for arbitrary
// windows under a seeded source.
func TestMultiplier_Property(t *testing.T) {
	src := rng.NewSeededSource(11)
	rapid.Check(t, func(rt *rapid.T) {
		window := rapid.Float64Range(0, 0.99).Draw(rt, "window")
		m := rng.Multiplier(src, window)
		assert.GreaterOrEqual(rt, m, 1.0-window-1e-9)
		assert.LessOrEqual(rt, m, 1.0+window+1e-9)
	})
}

// TestCryptoSource_Intn_InRange verifies the postcondition:
// every value returned by Intn(6) is in [0, 6).
func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := rng.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

// TestCryptoSource_Intn_PanicsOnZero verifies the precondition:
// Intn panics when called with n <= 0.
func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := rng.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

// TestSeededSource_Reproducible verifies that equal seeds yield equal draw
// sequences and distinct seeds diverge.
func TestSeededSource_Reproducible(t *testing.T) {
	a := rng.NewSeededSource(42)
	b := rng.NewSeededSource(42)
	c := rng.NewSeededSource(43)

	seqA := make([]int, 32)
	seqB := make([]int, 32)
	seqC := make([]int, 32)
	for i := range seqA {
		seqA[i] = a.Intn(1000)
		seqB[i] = b.Intn(1000)
		seqC[i] = c.Intn(1000)
	}
	require.Equal(t, seqA, seqB, "equal seeds must produce identical sequences")
	assert.NotEqual(t, seqA, seqC, "distinct seeds must diverge")
}

// TestSeededSource_Intn_PanicsOnZero verifies the precondition:
// Intn panics when called with n <= 0.
func TestSeededSource_Intn_PanicsOnZero(t *testing.T) {
	src := rng.NewSeededSource(1)
	assert.Panics(t, func() { src.Intn(-1) })
}

// TestLoggedSource_Delegates verifies the decorator passes draws through
// unchanged.
func TestLoggedSource_Delegates(t *testing.T) {
	src := rng.NewLoggedSource(fixedSrc{val: 7}, zap.NewNop())
	assert.Equal(t, 7, src.Intn(100))
}
