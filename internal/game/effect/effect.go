// Package effect defines the secondary effects carried by skills and
// items: flat heals, mana restores, status application, and revival.
// Resolution happens in the combat engine; this package is pure data.
package effect

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies what an effect does to its target.
type Kind string

const (
	// KindHeal restores Value HP, clamped to max HP.
	KindHeal Kind = "heal"
	// KindMana restores Value mana, clamped to max mana.
	KindMana Kind = "mana"
	// KindStatus applies the status named by StatusID. Buffs and debuffs
	// ride on this kind via buff- and debuff-kind status definitions.
	KindStatus Kind = "status"
	// KindRevive returns a defeated ally to the board at Value percent of
	// max HP.
	KindRevive Kind = "revive"
)

// Effect is one secondary effect of a skill or item.
type Effect struct {
	Kind     Kind   `yaml:"kind"`
	Value    int    `yaml:"value"`
	StatusID string `yaml:"status"`
	Chance   int    `yaml:"chance"` // percent; 0 means always applies
}

// Validate checks the effect is coherent for its kind.
//
// Postcondition: Returns nil only if the kind is known, Chance is in
// [0, 100], and the kind-specific fields are usable.
func (e Effect) Validate() error {
	var problems []string
	switch e.Kind {
	case KindHeal, KindMana:
		if e.Value < 1 {
			problems = append(problems, fmt.Sprintf("value must be >= 1 for %s, got %d", e.Kind, e.Value))
		}
	case KindStatus:
		if e.StatusID == "" {
			problems = append(problems, "status effect must name a status id")
		}
	case KindRevive:
		if e.Value < 1 || e.Value > 100 {
			problems = append(problems, fmt.Sprintf("revive value must be a percent in [1, 100], got %d", e.Value))
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown kind %q", e.Kind))
	}
	if e.Chance < 0 || e.Chance > 100 {
		problems = append(problems, fmt.Sprintf("chance %d outside [0, 100]", e.Chance))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ValidateAll validates a slice of effects, prefixing failures with the
// effect's index.
func ValidateAll(effects []Effect) error {
	var problems []string
	for i, e := range effects {
		if err := e.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("effect %d: %v", i, err))
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
