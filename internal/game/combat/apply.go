package combat

import (
	"fmt"

	"github.com/ironveil/tactics/internal/game/effect"
	"github.com/ironveil/tactics/internal/game/grid"
	"github.com/ironveil/tactics/internal/game/item"
	"github.com/ironveil/tactics/internal/game/rng"
	"github.com/ironveil/tactics/internal/game/skill"
	"github.com/ironveil/tactics/internal/game/stats"
	"github.com/ironveil/tactics/internal/game/status"
	"go.uber.org/zap"
)

// Apply resolves one action for actorID against s and returns the resulting
// state. The input state is never mutated: a rejected action returns it
// untouched alongside an ErrInvalidAction- or ErrItemUnavailable-wrapped
// error whose message is suitable for the player, and an accepted action
// returns a fresh snapshot plus the events narrating what happened. The
// win/loss condition is re-evaluated before every successful return.
//
// Precondition: s must come from Initialize or a prior engine operation.
// Postcondition: On error the returned state is s itself, unchanged.
func (e *Engine) Apply(s *State, actorID string, act Action) (*State, []Event, error) {
	if s.GameOver() {
		return s, nil, fmt.Errorf("%w: the battle is over", ErrInvalidAction)
	}
	actor, ok := s.Combatant(actorID)
	if !ok {
		return s, nil, fmt.Errorf("%w: unknown combatant %q", ErrInvalidAction, actorID)
	}
	cur := s.Current()
	if cur == nil || cur.ID != actorID {
		return s, nil, fmt.Errorf("%w: it is not %s's turn", ErrInvalidAction, actor.Name)
	}
	if !actor.CanAct() {
		return s, nil, fmt.Errorf("%w: %s cannot act right now", ErrInvalidAction, actor.Name)
	}

	switch act.Kind {
	case ActionMove:
		return e.applyMove(s, actor, act)
	case ActionAttack:
		return e.applyAttack(s, actor, act)
	case ActionSkill:
		return e.applySkill(s, actor, act)
	case ActionItem:
		return e.applyItem(s, actor, act)
	case ActionWait:
		return e.applyWait(s, actor)
	}
	return s, nil, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, act.Kind)
}

// applyMove relocates the actor to the requested cell, re-applies terrain
// modifiers for the destination, and spends the actor's move for the round.
func (e *Engine) applyMove(s *State, actor *Combatant, act Action) (*State, []Event, error) {
	if act.TargetCell == nil {
		return s, nil, fmt.Errorf("%w: move needs a destination", ErrInvalidAction)
	}
	dest := *act.TargetCell
	if !grid.ContainsCell(e.ValidMovePositions(s, actor.ID), dest) {
		return s, nil, fmt.Errorf("%w: %s cannot reach that cell", ErrInvalidAction, actor.Name)
	}

	next := s.Clone()
	c, _ := next.Combatant(actor.ID)
	p := dest
	c.Pos = &p
	c.RecomputeStats(next.Terrain.At(dest))
	c.HasMoved = true

	ev := []Event{newEvent(next, EventMoved, c.ID, "", 0,
		"%s moves to row %d, column %d", c.Name, dest.Row, dest.Col)}
	e.checkTerminal(next, &ev)
	return next, ev, nil
}

// applyAttack resolves a basic attack: one physical strike at the class
// attack range, ending the actor's action for the round.
func (e *Engine) applyAttack(s *State, actor *Combatant, act Action) (*State, []Event, error) {
	if actor.HasActed {
		return s, nil, fmt.Errorf("%w: %s has already acted", ErrInvalidAction, actor.Name)
	}
	if !containsCombatant(e.ValidAttackTargets(s, actor.ID), act.TargetID) {
		return s, nil, fmt.Errorf("%w: no such target in range", ErrInvalidAction)
	}

	next := s.Clone()
	c, _ := next.Combatant(actor.ID)
	target, _ := next.Combatant(act.TargetID)

	var ev []Event
	e.strike(next, c, target, true, 1.0, &ev)
	c.HasActed = true
	e.checkTerminal(next, &ev)
	return next, ev, nil
}

// applySkill resolves a skill cast: mana is deducted, the primary damage or
// healing lands on every resolved target, and secondary effects roll their
// chance per target. Casting ends the actor's action for the round.
func (e *Engine) applySkill(s *State, actor *Combatant, act Action) (*State, []Event, error) {
	if actor.HasActed {
		return s, nil, fmt.Errorf("%w: %s has already acted", ErrInvalidAction, actor.Name)
	}
	if !actor.CanUseSkills() {
		return s, nil, fmt.Errorf("%w: %s cannot use skills right now", ErrInvalidAction, actor.Name)
	}
	if !actor.CanCast(act.SkillID) {
		return s, nil, fmt.Errorf("%w: %s has not learned that skill", ErrInvalidAction, actor.Name)
	}
	def, ok := e.catalogs.Skills.Get(act.SkillID)
	if !ok {
		e.logger.Warn("skill definition missing",
			zap.String("skill", act.SkillID),
			zap.String("actor", actor.ID),
		)
		return s, nil, fmt.Errorf("%w: skill %q", ErrDataLoad, act.SkillID)
	}
	if actor.Cur.Mana < def.ManaCost {
		return s, nil, fmt.Errorf("%w: not enough mana for %s", ErrInvalidAction, def.Name)
	}

	targets := e.ValidSkillTargets(s, actor.ID, def.ID, act.TargetCell)
	if def.EffectiveShape() == skill.ShapeNone && def.RequiresTarget {
		if !containsCombatant(targets, act.TargetID) {
			return s, nil, fmt.Errorf("%w: no valid target for %s", ErrInvalidAction, def.Name)
		}
		targets = filterCombatant(targets, act.TargetID)
	}
	if len(targets) == 0 {
		return s, nil, fmt.Errorf("%w: %s would hit nothing", ErrInvalidAction, def.Name)
	}

	next := s.Clone()
	c, _ := next.Combatant(actor.ID)
	c.Cur.Mana -= def.ManaCost

	ev := []Event{newEvent(next, EventSkillUsed, c.ID, "", def.ManaCost,
		"%s uses %s", c.Name, def.Name)}

	for _, t := range targets {
		target, _ := next.Combatant(t.ID)
		e.applySkillTo(next, c, target, def, &ev)
	}

	c.HasActed = true
	e.checkTerminal(next, &ev)
	return next, ev, nil
}

// applySkillTo lands one skill on one target: the primary amount first,
// then every secondary effect that passes its chance roll.
func (e *Engine) applySkillTo(s *State, caster, target *Combatant, def *skill.Skill, ev *[]Event) {
	switch def.DamageType {
	case skill.DamagePhysical, skill.DamageMagical:
		physical := def.DamageType == skill.DamagePhysical
		for i := 0; i < def.HitCount() && target.IsAlive(); i++ {
			e.strike(s, caster, target, physical, def.EffectiveMultiplier(), ev)
		}
	case skill.DamageHealing:
		amount := HealAmount(caster.Cur, def.EffectiveMultiplier())
		if !target.IsAlive() {
			if def.Revives {
				e.revive(s, caster, target, amount, ev)
			}
			break
		}
		e.heal(s, caster, target, amount, ev)
	}

	for _, fx := range def.Effects {
		if !target.IsAlive() && fx.Kind != effect.KindRevive {
			continue
		}
		e.applyEffect(s, caster, target, fx, ev)
	}
}

// applyItem consumes one unit of a consumable from the external inventory
// and applies its effects to the actor or an allied target. Using an item
// ends the actor's action for the round.
func (e *Engine) applyItem(s *State, actor *Combatant, act Action) (*State, []Event, error) {
	if actor.HasActed {
		return s, nil, fmt.Errorf("%w: %s has already acted", ErrInvalidAction, actor.Name)
	}
	def, ok := e.catalogs.Items.Get(act.ItemID)
	if !ok {
		e.logger.Warn("item definition missing",
			zap.String("item", act.ItemID),
			zap.String("actor", actor.ID),
		)
		return s, nil, fmt.Errorf("%w: item %q", ErrDataLoad, act.ItemID)
	}
	if def.Type != item.TypeConsumable {
		return s, nil, fmt.Errorf("%w: %s cannot be used in battle", ErrInvalidAction, def.Name)
	}
	if e.inventory == nil || e.inventory.Quantity(def.ID) < 1 {
		return s, nil, fmt.Errorf("%w: no %s left", ErrItemUnavailable, def.Name)
	}

	targetID := act.TargetID
	if targetID == "" {
		targetID = actor.ID
	}
	target, ok := s.Combatant(targetID)
	if !ok || target.Team != actor.Team {
		return s, nil, fmt.Errorf("%w: items can only be used on allies", ErrInvalidAction)
	}
	if !target.IsAlive() && !hasReviveEffect(def.Effects) {
		return s, nil, fmt.Errorf("%w: %s cannot help the fallen", ErrInvalidAction, def.Name)
	}

	if err := e.inventory.Remove(def.ID); err != nil {
		return s, nil, fmt.Errorf("%w: no %s left", ErrItemUnavailable, def.Name)
	}

	next := s.Clone()
	c, _ := next.Combatant(actor.ID)
	t, _ := next.Combatant(targetID)

	ev := []Event{newEvent(next, EventItemUsed, c.ID, t.ID, 0,
		"%s uses %s on %s", c.Name, def.Name, t.Name)}
	for _, fx := range def.Effects {
		e.applyEffect(next, c, t, fx, &ev)
	}

	c.HasActed = true
	e.checkTerminal(next, &ev)
	return next, ev, nil
}

// applyWait ends the actor's turn immediately, spending both the move and
// the action unconditionally.
func (e *Engine) applyWait(s *State, actor *Combatant) (*State, []Event, error) {
	next := s.Clone()
	c, _ := next.Combatant(actor.ID)
	c.HasMoved = true
	c.HasActed = true
	ev := []Event{newEvent(next, EventWaited, c.ID, "", 0, "%s holds position", c.Name)}
	e.checkTerminal(next, &ev)
	return next, ev, nil
}

// strike resolves one hit of attacker on defender, applies the damage, and
// narrates the result. A defender reaching zero HP is marked defeated and
// removed from the board.
func (e *Engine) strike(s *State, attacker, defender *Combatant, physical bool, multiplier float64, ev *[]Event) {
	r := ResolveStrike(e.src, attacker.Cur, defender.Cur, physical, multiplier, e.variance)
	if r.Missed {
		*ev = append(*ev, newEvent(s, EventMissed, attacker.ID, defender.ID, 0,
			"%s evades %s's attack", defender.Name, attacker.Name))
		return
	}

	defender.Cur.HP -= r.Damage
	defender.Cur.ClampVitals()
	msg := fmt.Sprintf("%s hits %s for %d damage", attacker.Name, defender.Name, r.Damage)
	if r.Crit {
		msg = fmt.Sprintf("%s lands a critical hit on %s for %d damage", attacker.Name, defender.Name, r.Damage)
	}
	hit := newEvent(s, EventDamage, attacker.ID, defender.ID, r.Damage, "%s", msg)
	hit.Crit = r.Crit
	*ev = append(*ev, hit)

	if !defender.IsAlive() {
		e.defeat(s, defender, ev)
	}
}

// heal restores HP on a living target, clamped to its maximum.
func (e *Engine) heal(s *State, healer, target *Combatant, amount int, ev *[]Event) {
	if amount < 1 {
		return
	}
	before := target.Cur.HP
	target.Cur.HP += amount
	target.Cur.ClampVitals()
	restored := target.Cur.HP - before
	*ev = append(*ev, newEvent(s, EventHealed, healer.ID, target.ID, restored,
		"%s restores %d HP to %s", healer.Name, restored, target.Name))
}

// defeat marks c defeated: HP stays at zero, the position clears so the
// cell frees up, active statuses are shed, and the rotation will skip c
// until a revive.
func (e *Engine) defeat(s *State, c *Combatant, ev *[]Event) {
	c.Pos = nil
	c.Statuses = status.NewList()
	*ev = append(*ev, newEvent(s, EventDefeated, "", c.ID, 0, "%s falls", c.Name))
}

// revive returns a defeated ally to the board with the given HP, placed on
// the first free cell near the caster: cardinal neighbours first, then the
// surrounding radius-2 cells row-major. With no free cell the revival
// fizzles with a warning rather than failing the action.
func (e *Engine) revive(s *State, caster, target *Combatant, hp int, ev *[]Event) {
	if target.IsAlive() || caster.Pos == nil {
		return
	}
	cell, ok := e.reviveCell(s, *caster.Pos)
	if !ok {
		e.logger.Warn("no free cell for revival",
			zap.String("caster", caster.ID),
			zap.String("target", target.ID),
		)
		return
	}
	if hp < 1 {
		hp = 1
	}
	target.Cur.HP = hp
	target.Cur.ClampVitals()
	target.Pos = &cell
	target.RecomputeStats(s.Terrain.At(cell))
	target.HasMoved = true
	target.HasActed = true
	*ev = append(*ev, newEvent(s, EventRevived, caster.ID, target.ID, target.Cur.HP,
		"%s returns to the fight with %d HP", target.Name, target.Cur.HP))
}

// reviveCell returns the first unoccupied in-bounds cell near origin.
func (e *Engine) reviveCell(s *State, origin grid.Point) (grid.Point, bool) {
	for _, d := range grid.Directions() {
		p := origin.Add(d)
		if p.InBounds() && !s.Occupied(p) {
			return p, true
		}
	}
	for _, p := range grid.WithinRadius(origin, 2) {
		if p != origin && !s.Occupied(p) {
			return p, true
		}
	}
	return grid.Point{}, false
}

// applyEffect rolls the effect's chance and dispatches its kind against
// target. Status magnitudes and durations come from the status definition;
// stat-affecting statuses trigger a stat recompute on the target.
func (e *Engine) applyEffect(s *State, source, target *Combatant, fx effect.Effect, ev *[]Event) {
	if fx.Chance > 0 && !rng.Chance(e.src, fx.Chance) {
		return
	}

	switch fx.Kind {
	case effect.KindHeal:
		if target.IsAlive() {
			e.heal(s, source, target, fx.Value, ev)
		}
	case effect.KindMana:
		if !target.IsAlive() {
			return
		}
		before := target.Cur.Mana
		target.Cur.Mana += fx.Value
		target.Cur.ClampVitals()
		restored := target.Cur.Mana - before
		*ev = append(*ev, newEvent(s, EventManaRestored, source.ID, target.ID, restored,
			"%s restores %d mana to %s", source.Name, restored, target.Name))
	case effect.KindStatus:
		def, ok := e.catalogs.Statuses.Get(fx.StatusID)
		if !ok {
			e.logger.Warn("status definition missing",
				zap.String("status", fx.StatusID),
				zap.String("source", source.ID),
			)
			return
		}
		if !target.IsAlive() {
			return
		}
		if err := target.Statuses.Apply(def, def.Duration, def.Value); err != nil {
			e.logger.Warn("status application failed",
				zap.String("status", def.ID),
				zap.Error(err),
			)
			return
		}
		if def.Kind == status.KindBuff || def.Kind == status.KindDebuff {
			e.recomputeInPlace(s, target)
		}
		*ev = append(*ev, newEvent(s, EventStatusApplied, source.ID, target.ID, def.Value,
			"%s is afflicted by %s", target.Name, def.Name))
	case effect.KindRevive:
		hp := target.Cur.MaxHP * fx.Value / 100
		e.revive(s, source, target, hp, ev)
	}
}

// recomputeInPlace rebuilds target's current stats against the terrain it
// stands on.
func (e *Engine) recomputeInPlace(s *State, target *Combatant) {
	var terrain *stats.Terrain
	if target.Pos != nil {
		terrain = s.Terrain.At(*target.Pos)
	}
	target.RecomputeStats(terrain)
}

// checkTerminal flips the state into a terminal phase when either side has
// no one left standing and narrates the result. Once terminal, Apply and
// NextTurn reject all further work, so stats never change again.
func (e *Engine) checkTerminal(s *State, ev *[]Event) {
	if s.GameOver() {
		return
	}
	switch {
	case len(s.Living(TeamEnemy)) == 0:
		s.Phase = PhaseVictory
		*ev = append(*ev, newEvent(s, EventCombatEnded, "", "", 0, "victory on round %d", s.Turn))
	case len(s.Living(TeamPlayer)) == 0:
		s.Phase = PhaseDefeat
		*ev = append(*ev, newEvent(s, EventCombatEnded, "", "", 0, "defeat on round %d", s.Turn))
	}
}

func containsCombatant(list []*Combatant, id string) bool {
	for _, c := range list {
		if c.ID == id {
			return true
		}
	}
	return false
}

func filterCombatant(list []*Combatant, id string) []*Combatant {
	for _, c := range list {
		if c.ID == id {
			return []*Combatant{c}
		}
	}
	return nil
}

func hasReviveEffect(effects []effect.Effect) bool {
	for _, fx := range effects {
		if fx.Kind == effect.KindRevive {
			return true
		}
	}
	return false
}
