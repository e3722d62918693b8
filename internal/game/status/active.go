package status

import (
	"fmt"

	"github.com/ironveil/tactics/internal/game/stats"
)

// Active tracks one applied status instance on a combatant.
type Active struct {
	Def       *Status
	Remaining int // rounds left; the instance is removed when this reaches 0
	Value     int // captured magnitude; percent for dot/hot, points for buff/debuff
}

// List tracks all status instances on one combatant in application order.
// Re-applying a status appends a second instance rather than refreshing or
// merging the first; each instance ticks down independently. It is not
// safe for concurrent use; the caller must serialise access.
type List struct {
	items []*Active
}

// NewList creates an empty List.
func NewList() *List {
	return &List{}
}

// Apply attaches a new instance of def with the given duration and
// magnitude. Instances of the same status coexist; nothing is deduped.
//
// Precondition: def must not be nil; duration must be >= 1.
// Postcondition: Has(def.ID) is true; Len() grew by one.
func (l *List) Apply(def *Status, duration, value int) error {
	if def == nil {
		return fmt.Errorf("Apply: def must not be nil")
	}
	if duration < 1 {
		return fmt.Errorf("Apply: duration must be >= 1, got %d", duration)
	}
	l.items = append(l.items, &Active{Def: def, Remaining: duration, Value: value})
	return nil
}

// Tick decrements every instance's Remaining by 1 and removes those
// reaching 0. Recurring damage and healing must be resolved before calling
// Tick so that an effect applies on its final round.
//
// Postcondition: Every returned instance has been removed from the list;
// every remaining instance has Remaining >= 1.
func (l *List) Tick() []*Active {
	var expired []*Active
	kept := l.items[:0]
	for _, a := range l.items {
		a.Remaining--
		if a.Remaining <= 0 {
			expired = append(expired, a)
			continue
		}
		kept = append(kept, a)
	}
	l.items = kept
	return expired
}

// Recurring returns the active dot and hot instances in application order.
func (l *List) Recurring() []*Active {
	var out []*Active
	for _, a := range l.items {
		if a.Def.Kind == KindDot || a.Def.Kind == KindHot {
			out = append(out, a)
		}
	}
	return out
}

// StatDeltas sums the stat adjustments of every active buff and debuff.
// Buff instances contribute +Value, debuffs -Value; stacked instances of
// the same status all contribute.
func (l *List) StatDeltas() map[stats.Stat]int {
	deltas := make(map[stats.Stat]int)
	for _, a := range l.items {
		switch a.Def.Kind {
		case KindBuff:
			deltas[a.Def.Stat] += a.Value
		case KindDebuff:
			deltas[a.Def.Stat] -= a.Value
		}
	}
	return deltas
}

// Restricts reports whether any active disable blocks the named action
// ("act" or "skill").
func (l *List) Restricts(restriction string) bool {
	for _, a := range l.items {
		if a.Def.Kind != KindDisable {
			continue
		}
		for _, r := range a.Def.Restricts {
			if r == restriction {
				return true
			}
		}
	}
	return false
}

// Has reports whether at least one instance of statusID is active.
func (l *List) Has(statusID string) bool {
	for _, a := range l.items {
		if a.Def.ID == statusID {
			return true
		}
	}
	return false
}

// Len returns the number of active instances, counting stacks separately.
func (l *List) Len() int {
	return len(l.items)
}

// All returns the active instances in application order. The slice is a
// new allocation but the pointed-to instances are shared; callers must not
// modify them.
func (l *List) All() []*Active {
	out := make([]*Active, 0, len(l.items))
	out = append(out, l.items...)
	return out
}
