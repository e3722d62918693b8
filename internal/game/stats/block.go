// Package stats defines the combat stat model: the Block aggregate carried
// by every combatant, the class catalog that seeds it, and the terrain
// modifier table that adjusts it per board cell.
package stats

import (
	"errors"
	"fmt"
	"strings"
)

// Stat names a single adjustable field of a Block. Status effects and
// terrain modifiers reference stats by these keys.
type Stat string

const (
	StatMaxHP      Stat = "max_hp"
	StatMaxMana    Stat = "max_mana"
	StatAttack     Stat = "attack"
	StatMagic      Stat = "magic"
	StatDefense    Stat = "defense"
	StatResistance Stat = "resistance"
	StatSpeed      Stat = "speed"
	StatEvasion    Stat = "evasion"
	StatCritChance Stat = "crit_chance"
)

// ValidStat reports whether s names an adjustable stat.
func ValidStat(s Stat) bool {
	switch s {
	case StatMaxHP, StatMaxMana, StatAttack, StatMagic, StatDefense,
		StatResistance, StatSpeed, StatEvasion, StatCritChance:
		return true
	}
	return false
}

// Block is the full stat aggregate of a combatant.
//
// Invariant: 0 <= HP <= MaxHP and 0 <= Mana <= MaxMana after every
// mutation; Evasion and CritChance are percentages in [0, 100].
type Block struct {
	HP         int `yaml:"hp"`
	MaxHP      int `yaml:"max_hp"`
	Mana       int `yaml:"mana"`
	MaxMana    int `yaml:"max_mana"`
	Attack     int `yaml:"attack"`
	Magic      int `yaml:"magic"`
	Defense    int `yaml:"defense"`
	Resistance int `yaml:"resistance"`
	Speed      int `yaml:"speed"`
	Evasion    int `yaml:"evasion"`
	CritChance int `yaml:"crit_chance"`
}

// Validate checks the Block invariants and reports every violation at once.
//
// Postcondition: Returns nil only if the block satisfies all invariants.
func (b Block) Validate() error {
	var problems []string
	if b.MaxHP < 1 {
		problems = append(problems, fmt.Sprintf("max_hp must be >= 1, got %d", b.MaxHP))
	}
	if b.HP < 0 || b.HP > b.MaxHP {
		problems = append(problems, fmt.Sprintf("hp %d outside [0, %d]", b.HP, b.MaxHP))
	}
	if b.MaxMana < 0 {
		problems = append(problems, fmt.Sprintf("max_mana must be >= 0, got %d", b.MaxMana))
	}
	if b.Mana < 0 || b.Mana > b.MaxMana {
		problems = append(problems, fmt.Sprintf("mana %d outside [0, %d]", b.Mana, b.MaxMana))
	}
	if b.Attack < 0 || b.Magic < 0 || b.Defense < 0 || b.Resistance < 0 || b.Speed < 0 {
		problems = append(problems, "attack, magic, defense, resistance, and speed must be >= 0")
	}
	if b.Evasion < 0 || b.Evasion > 100 {
		problems = append(problems, fmt.Sprintf("evasion %d outside [0, 100]", b.Evasion))
	}
	if b.CritChance < 0 || b.CritChance > 100 {
		problems = append(problems, fmt.Sprintf("crit_chance %d outside [0, 100]", b.CritChance))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Filled returns a copy of b with HP and Mana set to their maxima. Class
// base stats declare only maxima; combatants enter battle at full vitals.
func (b Block) Filled() Block {
	b.HP = b.MaxHP
	b.Mana = b.MaxMana
	return b
}

// ClampVitals forces HP into [0, MaxHP] and Mana into [0, MaxMana].
func (b *Block) ClampVitals() {
	if b.HP < 0 {
		b.HP = 0
	}
	if b.HP > b.MaxHP {
		b.HP = b.MaxHP
	}
	if b.Mana < 0 {
		b.Mana = 0
	}
	if b.Mana > b.MaxMana {
		b.Mana = b.MaxMana
	}
}

// Adjust shifts the named stat by delta points. MaxHP and MaxMana never
// drop below 1 and 0 respectively, Evasion and CritChance stay in
// [0, 100], and all other stats stay non-negative. Unknown stat names are
// ignored; catalogs validate stat keys at load time.
func (b *Block) Adjust(stat Stat, delta int) {
	switch stat {
	case StatMaxHP:
		b.MaxHP = maxInt(1, b.MaxHP+delta)
	case StatMaxMana:
		b.MaxMana = maxInt(0, b.MaxMana+delta)
	case StatAttack:
		b.Attack = maxInt(0, b.Attack+delta)
	case StatMagic:
		b.Magic = maxInt(0, b.Magic+delta)
	case StatDefense:
		b.Defense = maxInt(0, b.Defense+delta)
	case StatResistance:
		b.Resistance = maxInt(0, b.Resistance+delta)
	case StatSpeed:
		b.Speed = maxInt(0, b.Speed+delta)
	case StatEvasion:
		b.Evasion = clampPct(b.Evasion + delta)
	case StatCritChance:
		b.CritChance = clampPct(b.CritChance + delta)
	}
}

// levelStep is the percent growth of scaling stats per level above 1.
const levelStep = 10

// ScaleForLevel grows a base block for a combatant of the given level:
// maxima, offensive, and defensive stats gain levelStep percent per level
// above 1. Speed, evasion, and crit chance do not scale. Levels below 1
// are treated as 1.
func ScaleForLevel(b Block, level int) Block {
	if level < 1 {
		level = 1
	}
	pct := levelStep * (level - 1)
	b.MaxHP = maxInt(1, scalePct(b.MaxHP, pct))
	b.MaxMana = maxInt(0, scalePct(b.MaxMana, pct))
	b.Attack = maxInt(0, scalePct(b.Attack, pct))
	b.Magic = maxInt(0, scalePct(b.Magic, pct))
	b.Defense = maxInt(0, scalePct(b.Defense, pct))
	b.Resistance = maxInt(0, scalePct(b.Resistance, pct))
	return b
}

// RescaleVital maps a current vital from an old maximum to a new one,
// preserving the fill ratio.
//
// Postcondition: result = floor(newMax * cur / oldMax), clamped to
// [0, newMax]; an oldMax of 0 yields 0.
func RescaleVital(cur, oldMax, newMax int) int {
	if oldMax <= 0 || newMax <= 0 {
		return 0
	}
	v := newMax * cur / oldMax
	if v < 0 {
		return 0
	}
	if v > newMax {
		return newMax
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampPct(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
