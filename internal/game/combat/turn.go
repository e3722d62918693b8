package combat

import (
	"fmt"

	"github.com/ironveil/tactics/internal/game/status"
	"go.uber.org/zap"
)

// NextTurn advances the rotation to the next combatant able to act. On
// wrapping past the end of the order it starts a new round: the turn
// counter increments, every living combatant's statuses tick, and the
// per-turn flags reset for everyone able to act. Defeated combatants are
// passed over silently; disabled ones are marked as having spent their
// turn and narrated as skipped.
//
// The scan is bounded at twice the rotation length. If no valid actor
// turns up within the bound (every survivor disabled), the engine logs a
// warning and returns with the rotation parked wherever the scan ended
// rather than hanging; statuses keep ticking on later calls, so a fully
// disabled battle still makes progress as ailments expire.
//
// Postcondition: On success the returned state's current combatant is
// alive, able to act, and has an unspent turn, unless the forced-advance
// fallback fired or the round tick ended the battle.
func (e *Engine) NextTurn(s *State) (*State, []Event, error) {
	if s.GameOver() {
		return s, nil, fmt.Errorf("%w: the battle is over", ErrInvalidAction)
	}
	if len(s.Order) == 0 {
		return s, nil, fmt.Errorf("%w: empty turn order", ErrInvalidAction)
	}

	next := s.Clone()
	var ev []Event

	maxAttempts := 2 * len(next.Order)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		next.CurrentIndex++
		if next.CurrentIndex >= len(next.Order) {
			next.CurrentIndex = 0
			next.Turn++
			e.processRound(next, &ev)
			if next.GameOver() {
				return next, ev, nil
			}
			ev = append(ev, newEvent(next, EventRoundStarted, "", "", 0,
				"round %d begins", next.Turn))
		}

		c := next.Current()
		switch {
		case !c.IsAlive():
			// Defeated combatants stay in the order but never act.
		case !c.CanAct():
			c.HasMoved = true
			c.HasActed = true
			ev = append(ev, newEvent(next, EventTurnSkipped, c.ID, "", 0,
				"%s cannot act", c.Name))
		case c.TurnDone():
			// Already spent this round (revived mid-round, for example).
		default:
			ev = append(ev, newEvent(next, EventTurnStarted, c.ID, "", 0,
				"%s's turn", c.Name))
			return next, ev, nil
		}
	}

	e.logger.Warn("no actor able to take a turn within bounded scan",
		zap.Int("attempts", maxAttempts),
		zap.Int("round", next.Turn),
	)
	return next, ev, nil
}

// processRound runs the round-boundary status sweep over every living
// combatant: recurring damage and healing land first, then durations
// decrement and expired instances drop. Damage-over-time can defeat a
// combatant and even end the battle; the terminal check runs after the
// sweep and the per-turn flags reset only if the battle continues.
func (e *Engine) processRound(s *State, ev *[]Event) {
	for _, c := range s.Roster {
		if !c.IsAlive() {
			continue
		}

		for _, a := range c.Statuses.Recurring() {
			amount := percentOfMax(c.Cur.MaxHP, a.Value)
			switch a.Def.Kind {
			case status.KindHot:
				before := c.Cur.HP
				c.Cur.HP += amount
				c.Cur.ClampVitals()
				*ev = append(*ev, newEvent(s, EventStatusTick, "", c.ID, c.Cur.HP-before,
					"%s recovers %d HP from %s", c.Name, c.Cur.HP-before, a.Def.Name))
			case status.KindDot:
				c.Cur.HP -= amount
				c.Cur.ClampVitals()
				*ev = append(*ev, newEvent(s, EventStatusTick, "", c.ID, amount,
					"%s suffers %d damage from %s", c.Name, amount, a.Def.Name))
			}
			if !c.IsAlive() {
				e.defeat(s, c, ev)
				break
			}
		}
		if !c.IsAlive() {
			continue
		}

		statChanged := false
		for _, a := range c.Statuses.Tick() {
			if a.Def.Kind == status.KindBuff || a.Def.Kind == status.KindDebuff {
				statChanged = true
			}
			*ev = append(*ev, newEvent(s, EventStatusExpired, "", c.ID, 0,
				"%s recovers from %s", c.Name, a.Def.Name))
		}
		if statChanged {
			e.recomputeInPlace(s, c)
		}
	}

	e.checkTerminal(s, ev)
	if s.GameOver() {
		return
	}

	for _, c := range s.Roster {
		if !c.IsAlive() {
			continue
		}
		if c.CanAct() {
			c.HasMoved = false
			c.HasActed = false
		} else {
			c.HasMoved = true
			c.HasActed = true
		}
	}
}
