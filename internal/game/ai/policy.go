// Package ai implements the deterministic combat policy that drives
// non-player combatants: close the distance to the nearest opponent, then
// attack whatever is in reach. The policy is a pure function of the combat
// state, so identical battles replay identical enemy behaviour.
package ai

import (
	"github.com/ironveil/tactics/internal/game/combat"
	"github.com/ironveil/tactics/internal/game/grid"
)

// Policy is the stateless move-then-attack actor policy. It implements
// combat.EnemyPolicy and works for either team, always targeting the
// current actor's opponents, which lets the simulator drive both sides of
// a battle with the same code.
type Policy struct{}

// NewPolicy creates a Policy.
func NewPolicy() *Policy {
	return &Policy{}
}

// NextAction returns the current actor's next step, at most one action per
// call:
//
//  1. A finished turn, or no living opponents, yields no action so the
//     rotation advances.
//  2. An unspent move goes to the reachable cell closest to the nearest
//     living opponent, but only when that strictly closes the distance;
//     ties fall to the first candidate in row-major order.
//  3. An unspent action attacks the first opponent in range, in roster
//     order.
//  4. With nothing useful left, the actor holds position, ending its turn.
func (p *Policy) NextAction(e *combat.Engine, s *combat.State) (combat.Action, bool) {
	c := s.Current()
	if c == nil || c.TurnDone() || c.Pos == nil {
		return combat.Action{}, false
	}
	opponents := s.Living(c.Team.Opponent())
	if len(opponents) == 0 {
		return combat.Action{}, false
	}

	if !c.HasMoved && !c.HasActed {
		if cell, ok := p.stepToward(e, s, c, opponents); ok {
			return combat.NewMoveAction(cell), true
		}
	}
	if !c.HasActed {
		if targets := e.ValidAttackTargets(s, c.ID); len(targets) > 0 {
			return combat.NewAttackAction(targets[0].ID), true
		}
	}
	return combat.NewWaitAction(), true
}

// stepToward picks the reachable cell that minimizes Manhattan distance to
// the nearest living opponent. Reachable candidates are already free cells;
// the move is rejected outright when no candidate improves on standing
// still.
func (p *Policy) stepToward(e *combat.Engine, s *combat.State, c *combat.Combatant, opponents []*combat.Combatant) (grid.Point, bool) {
	target := nearestOpponent(*c.Pos, opponents)
	if target == nil {
		return grid.Point{}, false
	}

	bestDist := c.Pos.Manhattan(*target.Pos)
	var best *grid.Point
	for _, cell := range e.ValidMovePositions(s, c.ID) {
		d := cell.Manhattan(*target.Pos)
		if d < bestDist {
			cell := cell
			best, bestDist = &cell, d
		}
	}
	if best == nil {
		return grid.Point{}, false
	}
	return *best, true
}

// nearestOpponent returns the living opponent closest to from by Manhattan
// distance, ties broken by roster order. Opponents without a position are
// ignored.
func nearestOpponent(from grid.Point, opponents []*combat.Combatant) *combat.Combatant {
	var nearest *combat.Combatant
	bestDist := 0
	for _, o := range opponents {
		if o.Pos == nil {
			continue
		}
		d := from.Manhattan(*o.Pos)
		if nearest == nil || d < bestDist {
			nearest, bestDist = o, d
		}
	}
	return nearest
}
