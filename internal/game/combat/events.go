package combat

import (
	"fmt"

	"github.com/google/uuid"
)

// EventKind classifies one entry of the combat event log.
type EventKind string

const (
	EventCombatStarted EventKind = "combat_started"
	EventRoundStarted  EventKind = "round_started"
	EventTurnStarted   EventKind = "turn_started"
	EventTurnSkipped   EventKind = "turn_skipped"
	EventMoved         EventKind = "moved"
	EventWaited        EventKind = "waited"
	EventDamage        EventKind = "damage"
	EventMissed        EventKind = "missed"
	EventHealed        EventKind = "healed"
	EventManaRestored  EventKind = "mana_restored"
	EventSkillUsed     EventKind = "skill_used"
	EventItemUsed      EventKind = "item_used"
	EventStatusApplied EventKind = "status_applied"
	EventStatusTick    EventKind = "status_tick"
	EventStatusExpired EventKind = "status_expired"
	EventDefeated      EventKind = "defeated"
	EventRevived       EventKind = "revived"
	EventScript        EventKind = "script"
	EventCombatEnded   EventKind = "combat_ended"
)

// Event is one structured entry of the combat log, consumed by the
// presentation layer. Actor and Target are combatant ids and may be empty
// for round-level entries; Value carries the damage or healing magnitude
// where one applies.
type Event struct {
	ID      string
	Round   int
	Kind    EventKind
	Actor   string
	Target  string
	Value   int
	Crit    bool
	Message string
}

// newEvent builds a log entry stamped with a fresh id and the state's
// current round.
func newEvent(s *State, kind EventKind, actor, target string, value int, format string, args ...any) Event {
	return Event{
		ID:      uuid.NewString(),
		Round:   s.Turn,
		Kind:    kind,
		Actor:   actor,
		Target:  target,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	}
}

// scriptEvent wraps one stage-script narration line as a log entry for the
// given round.
func scriptEvent(round int, line string) Event {
	return Event{
		ID:      uuid.NewString(),
		Round:   round,
		Kind:    EventScript,
		Message: line,
	}
}
