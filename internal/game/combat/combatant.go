package combat

import (
	"github.com/ironveil/tactics/internal/game/grid"
	"github.com/ironveil/tactics/internal/game/stats"
	"github.com/ironveil/tactics/internal/game/status"
)

// Team identifies a combatant's side.
type Team string

const (
	TeamPlayer Team = "player"
	TeamEnemy  Team = "enemy"
)

// Opponent returns the other side.
func (t Team) Opponent() Team {
	if t == TeamPlayer {
		return TeamEnemy
	}
	return TeamPlayer
}

// Combatant is one character's live instance inside a combat session.
// Created once at combat start and never destroyed mid-combat: defeated
// combatants persist with zero HP and no position, removed from the
// active rotation but still addressable (a revive brings them back).
type Combatant struct {
	ID      string
	Name    string
	Team    Team
	ClassID string
	Level   int

	// Base holds the roster stats unmodified by terrain or statuses; it
	// never changes during combat. Cur is the live view: terrain-adjusted,
	// status-adjusted, and carrying current HP and mana.
	Base stats.Block
	Cur  stats.Block

	// Pos is nil while the combatant is off the board (defeated).
	Pos *grid.Point

	HasMoved bool
	HasActed bool

	SkillIDs    []string
	Proficiency map[string]int // skill id -> points; 0 means unusable
	Statuses    *status.List

	class *stats.Class
}

// IsAlive reports whether the combatant is still fighting.
func (c *Combatant) IsAlive() bool {
	return c.Cur.HP > 0
}

// CanAct reports whether the combatant may take a turn: alive and not
// under an act-restricting disable such as stun.
func (c *Combatant) CanAct() bool {
	return c.IsAlive() && !c.Statuses.Restricts(status.RestrictAct)
}

// CanUseSkills reports whether the combatant may cast: able to act and not
// silenced.
func (c *Combatant) CanUseSkills() bool {
	return c.CanAct() && !c.Statuses.Restricts(status.RestrictSkill)
}

// TurnDone reports whether the combatant has both moved and acted this
// round.
func (c *Combatant) TurnDone() bool {
	return c.HasMoved && c.HasActed
}

// AttackRange returns the class-driven basic attack range. Player attacks
// and enemy AI attacks both resolve through this.
func (c *Combatant) AttackRange() int {
	return c.class.AttackRange
}

// MoveRange returns the class-driven movement budget per turn.
func (c *Combatant) MoveRange() int {
	return c.class.MoveRange
}

// RecomputeStats rebuilds Cur from Base: terrain modifiers for the cell the
// combatant stands on, then active buff and debuff deltas. Current HP and
// mana keep their fill ratio when the maxima shift.
//
// Precondition: t is the terrain of the combatant's current cell, or nil
// when off the board.
func (c *Combatant) RecomputeStats(t *stats.Terrain) {
	next := stats.ApplyTerrain(c.Base, c.Cur, t, c.ClassID)
	for st, delta := range c.Statuses.StatDeltas() {
		next.Adjust(st, delta)
	}
	next.ClampVitals()
	c.Cur = next
}

// HealthDescription returns a coarse human-readable health state for log
// and event text.
func (c *Combatant) HealthDescription() string {
	if c.Cur.HP <= 0 {
		return "defeated"
	}
	pct := float64(c.Cur.HP) / float64(c.Cur.MaxHP)
	switch {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.85:
		return "barely scratched"
	case pct >= 0.60:
		return "lightly wounded"
	case pct >= 0.40:
		return "moderately wounded"
	case pct >= 0.20:
		return "heavily wounded"
	default:
		return "critically wounded"
	}
}

// CanCast reports whether the combatant knows skillID with nonzero
// proficiency.
func (c *Combatant) CanCast(skillID string) bool {
	for _, id := range c.SkillIDs {
		if id == skillID {
			return c.Proficiency[skillID] > 0
		}
	}
	return false
}

// Clone returns a deep copy sharing only immutable definitions.
func (c *Combatant) Clone() *Combatant {
	cp := *c
	if c.Pos != nil {
		p := *c.Pos
		cp.Pos = &p
	}
	cp.SkillIDs = append([]string(nil), c.SkillIDs...)
	cp.Proficiency = make(map[string]int, len(c.Proficiency))
	for k, v := range c.Proficiency {
		cp.Proficiency[k] = v
	}
	cp.Statuses = status.NewList()
	for _, a := range c.Statuses.All() {
		// Apply cannot fail here: active instances always satisfy its
		// preconditions.
		_ = cp.Statuses.Apply(a.Def, a.Remaining, a.Value)
	}
	return &cp
}
