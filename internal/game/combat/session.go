package combat

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/ironveil/tactics/internal/game/grid"
	"github.com/ironveil/tactics/internal/game/item"
	"github.com/ironveil/tactics/internal/game/skill"
	"github.com/ironveil/tactics/internal/game/stage"
	"go.uber.org/zap"
)

// EnemyPolicy decides the next action for the current enemy-team actor.
// Implementations must be pure functions of the state they are given so
// that replaying a battle replays their choices.
type EnemyPolicy interface {
	// NextAction returns the action the current actor should take, or
	// false when its turn is complete and the rotation should advance.
	NextAction(e *Engine, s *State) (Action, bool)
}

// Hooks observes battle milestones. The session invokes hooks between
// transitions, never from inside the engine, and holds no internal lock
// while they run: an implementation may read the session it observes (the
// simulator's Lua battle view does exactly that). Driving the session from
// inside a hook is rejected by the busy gate. Returned lines become script
// events in the battle log.
type Hooks interface {
	OnBattleStart(stageID string) []string
	OnRoundStart(stageID string, round int) []string
	// OnBattleEnd additionally returns a bonus currency amount folded into
	// the outcome.
	OnBattleEnd(stageID string, victory bool, rounds int) ([]string, int)
}

// Session owns one battle from initialization to its terminal outcome: the
// current state snapshot, the ordered event log, and the single-writer
// gate around transitions. Combat advances only through Act and Advance;
// a trigger arriving while a previous transition is still settling is
// dropped with ErrBusy, never queued or interleaved, so overlapping UI
// timers cannot corrupt a battle. The session never sleeps or waits:
// presentation pacing is the caller's concern, and a battle can be driven
// to completion as fast as the caller can call Advance.
type Session struct {
	id      string
	engine  *Engine
	stageID string
	policy  EnemyPolicy
	hooks   Hooks
	logger  *zap.Logger

	// busy is the single-writer gate: exactly one transition may be in
	// flight at a time.
	busy atomic.Bool

	mu      sync.RWMutex
	state   *State
	log     []Event
	outcome *Outcome
}

// NewSession initializes a battle of the given players against stg and
// returns the session wrapping it.
//
// Precondition: engine and logger must be non-nil; policy and hooks may be
// nil (enemies then simply hold position; no script lines are produced).
// Postcondition: On success the session is in progress at round 1 with the
// fastest combatant current.
func NewSession(engine *Engine, players []RosterEntry, stg *stage.Stage, policy EnemyPolicy, hooks Hooks, logger *zap.Logger) (*Session, error) {
	state, events, err := engine.Initialize(players, stg)
	if err != nil {
		return nil, err
	}
	s := &Session{
		id:      uuid.NewString(),
		engine:  engine,
		stageID: stg.ID,
		policy:  policy,
		hooks:   hooks,
		logger:  logger,
		state:   state,
		log:     events,
	}
	if hooks != nil {
		for _, line := range hooks.OnBattleStart(s.stageID) {
			s.log = append(s.log, scriptEvent(state.Turn, line))
		}
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// StageID returns the stage this battle is fought on.
func (s *Session) StageID() string {
	return s.stageID
}

// State returns the current snapshot. Callers must treat it as read-only;
// transitions replace it rather than mutating it.
func (s *Session) State() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Events returns a copy of the full battle log so far.
func (s *Session) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event(nil), s.log...)
}

// EventsSince returns a copy of the log entries from index n on. The
// presentation layer polls with its last-seen length to pick up only new
// entries.
func (s *Session) EventsSince(n int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(s.log) {
		return nil
	}
	return append([]Event(nil), s.log[n:]...)
}

// Outcome returns the terminal record and whether the battle has ended.
func (s *Session) Outcome() (Outcome, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.outcome == nil {
		return Outcome{}, false
	}
	return *s.outcome, true
}

// Act applies one player action for actorID. The action must belong to the
// current player-team actor; enemy turns advance through Advance instead.
// Returns ErrBusy if another transition is still in flight.
func (s *Session) Act(actorID string, act Action) error {
	if !s.begin("act") {
		return ErrBusy
	}
	defer s.end()

	state := s.snapshot()
	cur := state.Current()
	if cur != nil && cur.Team == TeamEnemy {
		return fmt.Errorf("%w: it is the enemy's turn", ErrInvalidAction)
	}
	next, events, err := s.engine.Apply(state, actorID, act)
	if err != nil {
		return err
	}
	s.commit(next, events)
	return nil
}

// Advance performs exactly one discrete transition: an enemy policy step
// when the current actor is enemy-team, or a rotation advance when the
// current actor has spent its turn. The presentation layer calls this once
// per displayed transition, at whatever pace it likes; calling it while a
// previous transition is settling drops the trigger with ErrBusy. A
// terminal battle accepts Advance as a no-op so trailing UI timers fire
// harmlessly.
func (s *Session) Advance() error {
	if !s.begin("advance") {
		return ErrBusy
	}
	defer s.end()

	state := s.snapshot()
	if state.GameOver() {
		return nil
	}
	cur := state.Current()
	if cur == nil {
		return fmt.Errorf("%w: no current actor", ErrInvalidAction)
	}

	if cur.Team == TeamEnemy && !cur.TurnDone() {
		act, ok := s.enemyAction(state)
		if ok {
			next, events, err := s.engine.Apply(state, cur.ID, act)
			if err != nil {
				// A policy that proposes an invalid action would stall the
				// battle; end the enemy turn instead of looping on it.
				s.logger.Warn("enemy action rejected",
					zap.String("actor", cur.ID),
					zap.Error(err),
				)
				next, events, err = s.engine.Apply(state, cur.ID, NewWaitAction())
				if err != nil {
					return err
				}
			}
			s.commit(next, events)
			return nil
		}
	} else if cur.Team == TeamPlayer && !cur.TurnDone() {
		return fmt.Errorf("%w: waiting for %s to act", ErrInvalidAction, cur.Name)
	}

	next, events, err := s.engine.NextTurn(state)
	if err != nil {
		return err
	}
	s.commit(next, events)
	return nil
}

// RunToCompletion drives the battle at full speed until it ends or
// maxRounds passes without a terminal phase, returning the outcome. Player
// turns are driven by the same policy as enemy turns, which makes this the
// simulation entry point rather than an interactive one.
func (s *Session) RunToCompletion(maxRounds int) (Outcome, error) {
	if !s.begin("run") {
		return Outcome{}, ErrBusy
	}
	defer s.end()

	for {
		state := s.snapshot()
		if state.GameOver() {
			break
		}
		if maxRounds > 0 && state.Turn > maxRounds {
			s.logger.Warn("battle exceeded round cap",
				zap.String("session", s.id),
				zap.Int("rounds", maxRounds),
			)
			break
		}
		cur := state.Current()
		if cur == nil {
			return Outcome{}, fmt.Errorf("%w: no current actor", ErrInvariant)
		}

		if !cur.TurnDone() {
			if act, ok := s.enemyAction(state); ok {
				next, events, err := s.engine.Apply(state, cur.ID, act)
				if err != nil {
					next, events, err = s.engine.Apply(state, cur.ID, NewWaitAction())
					if err != nil {
						return Outcome{}, err
					}
				}
				s.commit(next, events)
				continue
			}
		}
		next, events, err := s.engine.NextTurn(state)
		if err != nil {
			return Outcome{}, err
		}
		s.commit(next, events)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.outcome != nil {
		return *s.outcome, nil
	}
	// Round cap reached without a terminal phase: score it as a defeat
	// with the survivors on record.
	o := OutcomeOf(s.state, s.stageID)
	o.Victory = false
	return o, nil
}

// ValidMoves returns the cells the current actor may move to.
func (s *Session) ValidMoves(actorID string) []grid.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.ValidMovePositions(s.state, actorID)
}

// AttackTargets returns the combatants actorID may attack.
func (s *Session) AttackTargets(actorID string) []*Combatant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.ValidAttackTargets(s.state, actorID)
}

// SkillTargets returns the combatants skillID would affect.
func (s *Session) SkillTargets(actorID, skillID string, origin *grid.Point) []*Combatant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.ValidSkillTargets(s.state, actorID, skillID, origin)
}

// AvailableSkills returns the skills actorID can afford right now.
func (s *Session) AvailableSkills(actorID string) []*skill.Skill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.AvailableSkills(s.state, actorID)
}

// AvailableItems returns the consumables with stock remaining.
func (s *Session) AvailableItems() []*item.Item {
	return s.engine.AvailableItems()
}

// begin claims the transition gate, dropping the trigger when it is
// already held.
func (s *Session) begin(trigger string) bool {
	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Debug("concurrent trigger dropped",
			zap.String("session", s.id),
			zap.String("trigger", trigger),
		)
		return false
	}
	return true
}

// end releases the transition gate.
func (s *Session) end() {
	s.busy.Store(false)
}

// snapshot returns the current state under the read lock.
func (s *Session) snapshot() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// enemyAction asks the policy for the current actor's next step. Without a
// policy, enemies hold position so the battle still advances.
func (s *Session) enemyAction(state *State) (Action, bool) {
	if s.policy == nil {
		cur := state.Current()
		if cur != nil && !cur.TurnDone() {
			return NewWaitAction(), true
		}
		return Action{}, false
	}
	return s.policy.NextAction(s.engine, state)
}

// commit publishes a completed transition: the new state replaces the old,
// the events append to the log with round narration spliced in after each
// round event, and a terminal state captures the outcome exactly once.
//
// The state lands before the hooks fire and no lock is held while they
// run, so a hook reading the session sees the state it is narrating. The
// busy gate serializes the whole transition, keeping the log append
// ordered.
func (s *Session) commit(next *State, events []Event) {
	s.mu.Lock()
	s.state = next
	ended := s.outcome != nil
	s.mu.Unlock()

	if s.hooks != nil {
		events = s.narrateRounds(events)
	}

	var outcome *Outcome
	if next.GameOver() && !ended {
		o := OutcomeOf(next, s.stageID)
		if s.hooks != nil {
			lines, bonus := s.hooks.OnBattleEnd(s.stageID, o.Victory, o.Rounds)
			for _, line := range lines {
				events = append(events, scriptEvent(next.Turn, line))
			}
			o.BonusCurrency = bonus
		}
		outcome = &o
	}

	s.mu.Lock()
	s.log = append(s.log, events...)
	if outcome != nil {
		s.outcome = outcome
	}
	s.mu.Unlock()

	if outcome != nil {
		s.logger.Info("battle ended",
			zap.String("session", s.id),
			zap.String("stage", s.stageID),
			zap.Bool("victory", outcome.Victory),
			zap.Int("rounds", outcome.Rounds),
			zap.Int("survivors", outcome.SurvivingPlayers),
		)
	}
}

// narrateRounds rebuilds the batch with the round hook's lines inserted
// directly after each round event, so consumers replaying the log see the
// narration where it happened. A batch can wrap more than one round; each
// round narrates against its own number.
func (s *Session) narrateRounds(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		out = append(out, e)
		if e.Kind != EventRoundStarted {
			continue
		}
		for _, line := range s.hooks.OnRoundStart(s.stageID, e.Round) {
			out = append(out, scriptEvent(e.Round, line))
		}
	}
	return out
}
