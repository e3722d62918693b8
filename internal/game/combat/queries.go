package combat

import (
	"github.com/ironveil/tactics/internal/game/grid"
	"github.com/ironveil/tactics/internal/game/item"
	"github.com/ironveil/tactics/internal/game/skill"
	"go.uber.org/zap"
)

// ValidMovePositions returns the cells actorID may move to this turn: a
// bounded-cost flood fill from its position, budgeted by class move range,
// paying terrain costs, blocked by every occupied cell. Empty when the
// combatant is not the current actor, has already moved or acted, or has
// no position.
func (e *Engine) ValidMovePositions(s *State, actorID string) []grid.Point {
	c, ok := s.Combatant(actorID)
	if !ok || !c.IsAlive() || c.Pos == nil {
		return nil
	}
	cur := s.Current()
	if cur == nil || cur.ID != actorID {
		return nil
	}
	if c.HasMoved || c.HasActed {
		return nil
	}
	return grid.ReachableCells(*c.Pos, c.MoveRange(),
		s.Terrain.MoveCost,
		func(p grid.Point) bool { return s.Occupied(p) },
	)
}

// ValidAttackTargets returns the living opposing combatants within
// actorID's class attack range, in roster order. Range is Manhattan;
// combatants without a position are never targets.
func (e *Engine) ValidAttackTargets(s *State, actorID string) []*Combatant {
	c, ok := s.Combatant(actorID)
	if !ok || !c.IsAlive() || c.Pos == nil {
		return nil
	}
	var out []*Combatant
	for _, t := range s.Living(c.Team.Opponent()) {
		if t.Pos != nil && c.Pos.Manhattan(*t.Pos) <= c.AttackRange() {
			out = append(out, t)
		}
	}
	return out
}

// ValidSkillTargets returns the combatants skillID would affect, in roster
// order. Single-target skills yield the candidates in range; line and
// radius shapes need an origin cell and yield everyone inside the shape;
// all_enemies and all_allies yield whole living teams regardless of range.
// A skill that revives also yields defeated allies, with no range check.
// Unknown skill ids are logged and yield nothing.
func (e *Engine) ValidSkillTargets(s *State, actorID, skillID string, origin *grid.Point) []*Combatant {
	c, ok := s.Combatant(actorID)
	if !ok || !c.IsAlive() || c.Pos == nil {
		return nil
	}
	def, ok := e.catalogs.Skills.Get(skillID)
	if !ok {
		e.logger.Warn("skill definition missing",
			zap.String("skill", skillID),
			zap.String("actor", actorID),
		)
		return nil
	}

	switch def.EffectiveShape() {
	case skill.ShapeNone:
		if !def.RequiresTarget {
			return []*Combatant{c}
		}
		var out []*Combatant
		for _, t := range e.sideCandidates(s, c, def) {
			if t.Pos == nil {
				// Defeated revive candidates carry no position and skip
				// the range check.
				out = append(out, t)
				continue
			}
			if c.Pos.Manhattan(*t.Pos) <= def.Range {
				out = append(out, t)
			}
		}
		return out

	case skill.ShapeLine:
		if origin == nil {
			return nil
		}
		dir := grid.DirectionToward(*c.Pos, *origin)
		cells := grid.LineFrom(*c.Pos, dir, def.Range)
		return e.onCells(s, c, def, cells)

	case skill.ShapeRadius:
		if origin == nil || c.Pos.Manhattan(*origin) > def.Range {
			return nil
		}
		return e.onCells(s, c, def, grid.WithinRadius(*origin, def.Radius))

	case skill.ShapeAllEnemies:
		return s.Living(c.Team.Opponent())

	case skill.ShapeAllAllies:
		return s.Living(c.Team)
	}
	return nil
}

// sideCandidates returns the combatants on the side a skill may aim at:
// living targets, plus defeated allies for revive-capable skills.
func (e *Engine) sideCandidates(s *State, caster *Combatant, def *skill.Skill) []*Combatant {
	switch def.Target {
	case skill.TargetEnemy:
		return s.Living(caster.Team.Opponent())
	case skill.TargetSelf:
		return []*Combatant{caster}
	default:
		var out []*Combatant
		for _, t := range s.Members(caster.Team) {
			if t.IsAlive() || def.Revives {
				out = append(out, t)
			}
		}
		return out
	}
}

// onCells filters the skill's side candidates down to those standing on
// one of the given cells.
func (e *Engine) onCells(s *State, caster *Combatant, def *skill.Skill, cells []grid.Point) []*Combatant {
	var out []*Combatant
	for _, t := range e.sideCandidates(s, caster, def) {
		if t.Pos != nil && grid.ContainsCell(cells, *t.Pos) {
			out = append(out, t)
		}
	}
	return out
}

// AvailableSkills returns the skills actorID can cast right now: equipped
// with nonzero proficiency, affordable with current mana, and not blocked
// by silence. Definitions missing from the catalog are logged and
// skipped rather than failing the query.
func (e *Engine) AvailableSkills(s *State, actorID string) []*skill.Skill {
	c, ok := s.Combatant(actorID)
	if !ok || !c.CanUseSkills() {
		return nil
	}
	var out []*skill.Skill
	for _, id := range c.SkillIDs {
		if c.Proficiency[id] < 1 {
			continue
		}
		def, ok := e.catalogs.Skills.Get(id)
		if !ok {
			e.logger.Warn("skill definition missing",
				zap.String("skill", id),
				zap.String("actor", actorID),
			)
			continue
		}
		if def.ManaCost <= c.Cur.Mana {
			out = append(out, def)
		}
	}
	return out
}

// AvailableItems returns the consumables with stock remaining, sorted by
// id. Without an inventory the engine offers no items.
func (e *Engine) AvailableItems() []*item.Item {
	if e.inventory == nil {
		return nil
	}
	var out []*item.Item
	for _, def := range e.catalogs.Items.All() {
		if def.Type == item.TypeConsumable && e.inventory.Quantity(def.ID) > 0 {
			out = append(out, def)
		}
	}
	return out
}
