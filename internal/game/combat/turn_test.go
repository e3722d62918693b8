package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironveil/tactics/internal/game/combat"
	"github.com/ironveil/tactics/internal/game/stage"
)

// waitRound drives every combatant through one full round with wait
// actions and returns the post-wrap state plus everything that happened.
// Stops early if the battle ends mid-round.
func waitRound(t *testing.T, e *combat.Engine, s *combat.State) (*combat.State, []combat.Event) {
	t.Helper()
	var all []combat.Event
	for {
		cur := s.Current()
		require.NotNil(t, cur)
		if cur.CanAct() && !cur.TurnDone() {
			next, ev, err := e.Apply(s, cur.ID, combat.NewWaitAction())
			require.NoError(t, err)
			s, all = next, append(all, ev...)
			if s.GameOver() {
				return s, all
			}
		}
		next, ev, err := e.NextTurn(s)
		require.NoError(t, err)
		s, all = next, append(all, ev...)
		if s.GameOver() {
			return s, all
		}
		for _, e := range ev {
			if e.Kind == combat.EventRoundStarted {
				return s, all
			}
		}
	}
}

func TestNextTurn_AdvancesInInitiativeOrder(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	s := mustInit(t, e, rosterPair(), testStage())

	s, _, err := e.Apply(s, "p1", combat.NewWaitAction())
	require.NoError(t, err)
	next, events, err := e.NextTurn(s)
	require.NoError(t, err)

	assert.Equal(t, "p2", next.Current().ID)
	require.Len(t, events, 1)
	assert.Equal(t, combat.EventTurnStarted, events[0].Kind)
	assert.Equal(t, 1, next.Turn, "no wrap yet")
}

func TestNextTurn_WrapStartsNewRound(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	s := mustInit(t, e, rosterPair(), testStage())

	next, events := waitRound(t, e, s)

	assert.Equal(t, 2, next.Turn)
	assert.True(t, hasEvent(events, combat.EventRoundStarted))
	for _, id := range []string{"p1", "p2", "enemy-1"} {
		c, _ := next.Combatant(id)
		assert.False(t, c.TurnDone(), "%s flags reset for the new round", id)
	}
	assert.Equal(t, "p1", next.Current().ID, "rotation restarts at the fastest")
}

func TestNextTurn_SkipsDefeatedSilently(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	s := mustInit(t, e, rosterPair(), testStage())
	strikeDown(t, s, "p2")

	s, _, err := e.Apply(s, "p1", combat.NewWaitAction())
	require.NoError(t, err)
	next, events, err := e.NextTurn(s)
	require.NoError(t, err)

	assert.Equal(t, "enemy-1", next.Current().ID)
	assert.False(t, hasEvent(events, combat.EventTurnSkipped), "the defeated draw no skip narration")
}

// TestNextTurn_DisabledActorSkipped stuns the lone enemy: its turn is
// narrated as skipped, the stun expires at the wrap, and round 2 opens
// back at the fastest player.
func TestNextTurn_DisabledActorSkipped(t *testing.T) {
	e, cat := newTestEngine(t, nil)
	s := mustInit(t, e, rosterPair(), testStage())
	afflict(t, cat, s, "enemy-1", "stun")

	s, _, err := e.Apply(s, "p1", combat.NewWaitAction())
	require.NoError(t, err)
	s, _, err = e.NextTurn(s)
	require.NoError(t, err)
	s, _, err = e.Apply(s, "p2", combat.NewWaitAction())
	require.NoError(t, err)
	next, events, err := e.NextTurn(s)
	require.NoError(t, err)

	assert.Equal(t, []combat.EventKind{
		combat.EventTurnSkipped,
		combat.EventStatusExpired,
		combat.EventRoundStarted,
		combat.EventTurnStarted,
	}, eventKinds(events))
	assert.Equal(t, "p1", next.Current().ID)

	en, _ := next.Combatant("enemy-1")
	assert.True(t, en.CanAct(), "stun gone after one round")
}

// TestNextTurn_DotTicksThenExpires verifies the round sweep order: the
// damage applies on the status's final round before the duration drop
// removes it.
func TestNextTurn_DotTicksThenExpires(t *testing.T) {
	e, cat := newTestEngine(t, nil)
	s := mustInit(t, e, rosterPair(), testStage())
	afflict(t, cat, s, "enemy-1", "poison")

	s, events := waitRound(t, e, s)
	en, _ := s.Combatant("enemy-1")
	assert.Equal(t, 54, en.Cur.HP, "10%% of 60 max HP")
	assert.True(t, hasEvent(events, combat.EventStatusTick))
	assert.False(t, hasEvent(events, combat.EventStatusExpired), "one round left")

	s, events = waitRound(t, e, s)
	en, _ = s.Combatant("enemy-1")
	assert.Equal(t, 48, en.Cur.HP, "the damage lands on the final round too")
	assert.True(t, hasEvent(events, combat.EventStatusExpired))
	assert.False(t, en.Statuses.Has("poison"))
}

func TestNextTurn_HotHealsClamped(t *testing.T) {
	e, cat := newTestEngine(t, nil)
	s := mustInit(t, e, rosterPair(), testStage())
	p1, _ := s.Combatant("p1")
	p1.Cur.HP = 95
	afflict(t, cat, s, "p1", "regen")

	s, events := waitRound(t, e, s)

	p1, _ = s.Combatant("p1")
	assert.Equal(t, 100, p1.Cur.HP)
	for _, ev := range events {
		if ev.Kind == combat.EventStatusTick {
			assert.Equal(t, 5, ev.Value, "tick reports actual restored HP")
		}
	}
}

// TestNextTurn_DotDefeatEndsBattle poisons the last enemy at 3 HP: the
// round sweep kills it and the battle ends inside NextTurn, before any
// round start narration.
func TestNextTurn_DotDefeatEndsBattle(t *testing.T) {
	e, cat := newTestEngine(t, nil)
	s := mustInit(t, e, rosterPair(), testStage())
	en, _ := s.Combatant("enemy-1")
	en.Cur.HP = 3
	afflict(t, cat, s, "enemy-1", "poison")

	s, events := waitRound(t, e, s)

	assert.True(t, s.GameOver())
	assert.True(t, s.Victory())
	assert.True(t, hasEvent(events, combat.EventStatusTick))
	assert.True(t, hasEvent(events, combat.EventDefeated))
	assert.True(t, hasEvent(events, combat.EventCombatEnded))
	assert.False(t, hasEvent(events, combat.EventRoundStarted), "no new round after the terminal sweep")

	_, _, err := e.NextTurn(s)
	require.ErrorIs(t, err, combat.ErrInvalidAction)
}

func TestNextTurn_BuffExpiryRestoresStats(t *testing.T) {
	e, cat := newTestEngine(t, nil)
	s := mustInit(t, e, rosterPair(), testStage())
	afflict(t, cat, s, "p1", "guard_up")
	p1, _ := s.Combatant("p1")
	require.Equal(t, 15, p1.Cur.Defense)

	s, _ = waitRound(t, e, s)
	p1, _ = s.Combatant("p1")
	assert.Equal(t, 15, p1.Cur.Defense, "buff holds through its first round")

	s, _ = waitRound(t, e, s)
	p1, _ = s.Combatant("p1")
	assert.Equal(t, 5, p1.Cur.Defense, "expiry recomputes the stat line")
}

// TestNextTurn_AllDisabledForcesProgress stuns both sides with a long
// disable: the bounded scan gives up without error, rounds still tick,
// and the ailments keep decaying so the battle eventually resumes.
func TestNextTurn_AllDisabledForcesProgress(t *testing.T) {
	e, cat := newTestEngine(t, nil)
	players := []combat.RosterEntry{{ID: "p1", Name: "Aldric", ClassID: "blade", Level: 1}}
	s := mustInit(t, e, players, testStage(stage.Enemy{ClassID: "drone", Name: "Sentry", Level: 1}))
	afflict(t, cat, s, "p1", "long_stun")
	afflict(t, cat, s, "enemy-1", "long_stun")

	next, events, err := e.NextTurn(s)
	require.NoError(t, err)

	assert.False(t, hasEvent(events, combat.EventTurnStarted))
	assert.Equal(t, 3, next.Turn, "the bounded scan wrapped twice")

	var skips int
	for _, ev := range events {
		if ev.Kind == combat.EventTurnSkipped {
			skips++
		}
	}
	assert.Equal(t, 4, skips)

	p1, _ := next.Combatant("p1")
	require.Equal(t, 1, p1.Statuses.Len())
	assert.Equal(t, 3, p1.Statuses.All()[0].Remaining, "two wraps ticked the disable down")
}

func TestNextTurn_Rejections(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	t.Run("terminal state", func(t *testing.T) {
		s := mustInit(t, e, rosterPair(), testStage())
		strikeDown(t, s, "enemy-1")
		s.Phase = combat.PhaseVictory
		_, _, err := e.NextTurn(s)
		assert.ErrorIs(t, err, combat.ErrInvalidAction)
	})

	t.Run("empty order", func(t *testing.T) {
		s := mustInit(t, e, rosterPair(), testStage())
		s.Order = nil
		_, _, err := e.NextTurn(s)
		assert.ErrorIs(t, err, combat.ErrInvalidAction)
	})
}
