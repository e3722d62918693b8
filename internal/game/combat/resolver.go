package combat

import (
	"github.com/ironveil/tactics/internal/game/rng"
	"github.com/ironveil/tactics/internal/game/stats"
)

// CritMultiplier scales the offensive side of a critical hit.
const CritMultiplier = 1.5

// StrikeResult is the outcome of one resolved hit.
type StrikeResult struct {
	Damage int
	Crit   bool
	Missed bool
}

// ResolveStrike computes one hit of attacker on defender. The evasion roll
// comes first: a dodged hit deals nothing and cannot crit. Otherwise the
// damage is
//
//	floor(offense * multiplier * variance * crit) - mitigation
//
// where offense is Attack or Magic and mitigation Defense or Resistance
// per the physical flag, variance is uniform in [1-variance, 1+variance],
// and crit is CritMultiplier on a successful CritChance roll. Damage never
// goes below zero.
//
// Precondition: src must be non-nil; multiplier > 0; 0 <= variance < 1.
func ResolveStrike(src rng.Source, attacker, defender stats.Block, physical bool, multiplier, variance float64) StrikeResult {
	if rng.Chance(src, defender.Evasion) {
		return StrikeResult{Missed: true}
	}

	offense := attacker.Magic
	mitigation := defender.Resistance
	if physical {
		offense = attacker.Attack
		mitigation = defender.Defense
	}

	crit := rng.Chance(src, attacker.CritChance)
	raw := float64(offense) * multiplier * rng.Multiplier(src, variance)
	if crit {
		raw *= CritMultiplier
	}

	dmg := int(raw) - mitigation
	if dmg < 0 {
		dmg = 0
	}
	return StrikeResult{Damage: dmg, Crit: crit}
}

// HealAmount computes the HP restored by a healing skill: the caster's
// magic scaled by the skill multiplier, floored. Clamping to the target's
// max HP happens at application time.
func HealAmount(caster stats.Block, multiplier float64) int {
	amount := int(float64(caster.Magic) * multiplier)
	if amount < 0 {
		return 0
	}
	return amount
}

// percentOfMax converts a percent-of-max-HP magnitude to hit points,
// rounding down but never below 1 for a positive percent. Recurring
// status damage and healing use this.
func percentOfMax(maxHP, percent int) int {
	if percent <= 0 || maxHP <= 0 {
		return 0
	}
	v := maxHP * percent / 100
	if v < 1 {
		v = 1
	}
	return v
}
