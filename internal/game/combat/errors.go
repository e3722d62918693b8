package combat

import "errors"

// ErrInvalidAction marks an action attempted out of turn, on the wrong
// team, or with unmet preconditions (insufficient mana, no target in
// range, disabled by status). The state is left unchanged; the wrapped
// message is suitable for showing to the player.
var ErrInvalidAction = errors.New("invalid action")

// ErrItemUnavailable marks a consumable request with zero inventory
// quantity. The action is aborted and the state left unchanged.
var ErrItemUnavailable = errors.New("item unavailable")

// ErrDataLoad marks a failed skill, item, or status definition lookup.
// The requested action is aborted gracefully rather than crashing the
// combat.
var ErrDataLoad = errors.New("data load failure")

// ErrInvariant marks a broken engine invariant, such as turn advancement
// failing to find a valid actor within its attempt bound. It is handled
// by a logged fallback, never by terminating the combat.
var ErrInvariant = errors.New("invariant violation")

// ErrBusy marks a trigger that arrived while a previous transition was
// still settling. The trigger is dropped, not queued; the caller may
// retry after the in-flight transition completes.
var ErrBusy = errors.New("session busy")
