package combat

import "github.com/ironveil/tactics/internal/game/grid"

// ActionKind names the five things a combatant can do on its turn.
type ActionKind string

const (
	ActionMove   ActionKind = "move"
	ActionAttack ActionKind = "attack"
	ActionSkill  ActionKind = "skill"
	ActionItem   ActionKind = "item"
	ActionWait   ActionKind = "wait"
)

// Action is one requested combatant action. Which fields matter depends on
// Kind: move needs TargetCell, attack needs TargetID, skill needs SkillID
// plus either TargetID (single target) or TargetCell (area origin), item
// needs ItemID and TargetID, wait needs nothing.
type Action struct {
	Kind       ActionKind
	TargetCell *grid.Point
	TargetID   string
	SkillID    string
	ItemID     string
}

// NewMoveAction requests movement to cell.
func NewMoveAction(cell grid.Point) Action {
	return Action{Kind: ActionMove, TargetCell: &cell}
}

// NewAttackAction requests a basic attack on targetID.
func NewAttackAction(targetID string) Action {
	return Action{Kind: ActionAttack, TargetID: targetID}
}

// NewSkillAction requests casting skillID on the single target targetID.
func NewSkillAction(skillID, targetID string) Action {
	return Action{Kind: ActionSkill, SkillID: skillID, TargetID: targetID}
}

// NewAreaSkillAction requests casting skillID anchored at the origin cell.
func NewAreaSkillAction(skillID string, origin grid.Point) Action {
	return Action{Kind: ActionSkill, SkillID: skillID, TargetCell: &origin}
}

// NewItemAction requests using itemID on targetID. An empty targetID means
// the actor itself.
func NewItemAction(itemID, targetID string) Action {
	return Action{Kind: ActionItem, ItemID: itemID, TargetID: targetID}
}

// NewWaitAction requests ending the turn immediately.
func NewWaitAction() Action {
	return Action{Kind: ActionWait}
}
