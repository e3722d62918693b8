// Package rng provides the randomness abstraction for the Ironveil combat
// engine. All chance rolls (crit, evasion, effect application) and damage
// variance draw from an injected Source so that battles are reproducible
// under a seeded source and fully deterministic under a fixed one.
package rng

// Source is the randomness provider for combat rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Chance rolls a percentage check against src.
//
// Precondition: src must be non-nil.
// Postcondition: Returns true with probability percent/100; percent <= 0
// always returns false, percent >= 100 always returns true.
func Chance(src Source, percent int) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return src.Intn(100) < percent
}

// Between returns a uniform int in [lo, hi] inclusive.
//
// Precondition: src must be non-nil; lo <= hi.
// Postcondition: lo <= result <= hi.
func Between(src Source, lo, hi int) int {
	if lo >= hi {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// varianceSteps is the resolution of the variance multiplier draw. A source
// returning varianceSteps/2 yields exactly 1.0, which is what deterministic
// test sources rely on.
const varianceSteps = 1000

// Multiplier returns a damage variance multiplier uniform in
// [1-window, 1+window].
//
// Precondition: src must be non-nil; 0 <= window < 1.
// Postcondition: 1-window <= result <= 1+window; a window of 0 returns 1.0.
func Multiplier(src Source, window float64) float64 {
	if window <= 0 {
		return 1.0
	}
	step := float64(src.Intn(varianceSteps+1)) / float64(varianceSteps)
	return 1.0 - window + 2.0*window*step
}
