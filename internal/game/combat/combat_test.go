package combat_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/ironveil/tactics/internal/game/catalog"
	"github.com/ironveil/tactics/internal/game/combat"
	"github.com/ironveil/tactics/internal/game/effect"
	"github.com/ironveil/tactics/internal/game/grid"
	"github.com/ironveil/tactics/internal/game/item"
	"github.com/ironveil/tactics/internal/game/rng"
	"github.com/ironveil/tactics/internal/game/skill"
	"github.com/ironveil/tactics/internal/game/stage"
	"github.com/ironveil/tactics/internal/game/stats"
	"github.com/ironveil/tactics/internal/game/status"
	"github.com/stretchr/testify/require"
)

// The fixture classes carry zero evasion and zero crit chance so that,
// combined with a zero variance window, every strike resolves without
// consulting the random source. Damage numbers in these tests are exact.

func testCatalogs() *catalog.Set {
	classes := stats.NewClassRegistry()
	classes.Register(&stats.Class{
		ID: "blade", Name: "Blade",
		Base:        stats.Block{MaxHP: 100, MaxMana: 30, Attack: 20, Magic: 5, Defense: 5, Resistance: 5, Speed: 12},
		AttackRange: 1, MoveRange: 3,
		SkillIDs: []string{"power_strike", "venom_strike", "double_stab", "war_shout"},
	})
	classes.Register(&stats.Class{
		ID: "caster", Name: "Caster",
		Base:        stats.Block{MaxHP: 80, MaxMana: 50, Attack: 5, Magic: 20, Defense: 5, Resistance: 10, Speed: 10},
		AttackRange: 2, MoveRange: 2,
		SkillIDs: []string{"zap", "mend", "raise", "nova", "beam", "dirge"},
	})
	classes.Register(&stats.Class{
		ID: "drone", Name: "Drone",
		Base:        stats.Block{MaxHP: 60, Attack: 10, Defense: 5, Resistance: 5, Speed: 8},
		AttackRange: 1, MoveRange: 2,
	})
	classes.Register(&stats.Class{
		ID: "turtle", Name: "Turtle",
		Base:        stats.Block{MaxHP: 80, Attack: 8, Defense: 15, Resistance: 10, Speed: 6},
		AttackRange: 1, MoveRange: 2,
	})
	classes.Register(&stats.Class{
		ID: "wolf", Name: "Wolf",
		Base:        stats.Block{MaxHP: 60, Attack: 12, Defense: 4, Resistance: 4, Speed: 14},
		AttackRange: 1, MoveRange: 4,
	})

	terrains := stats.NewTerrainRegistry()
	terrains.Register(&stats.Terrain{
		ID: "hill", Name: "Hill", Symbol: "h", MoveCost: 2,
		Modifiers: stats.Modifier{Defense: 20},
	})
	terrains.Register(&stats.Terrain{
		ID: "bog", Name: "Bog", Symbol: "b", MoveCost: 3,
		Modifiers: stats.Modifier{Speed: -25},
	})

	statuses := status.NewRegistry()
	statuses.Register(&status.Status{ID: "poison", Name: "Poison", Kind: status.KindDot, Value: 10, Duration: 2})
	statuses.Register(&status.Status{ID: "regen", Name: "Regen", Kind: status.KindHot, Value: 10, Duration: 2})
	statuses.Register(&status.Status{ID: "stun", Name: "Stun", Kind: status.KindDisable, Duration: 1, Restricts: []string{status.RestrictAct}})
	statuses.Register(&status.Status{ID: "long_stun", Name: "Long Stun", Kind: status.KindDisable, Duration: 5, Restricts: []string{status.RestrictAct}})
	statuses.Register(&status.Status{ID: "silence", Name: "Silence", Kind: status.KindDisable, Duration: 2, Restricts: []string{status.RestrictSkill}})
	statuses.Register(&status.Status{ID: "guard_up", Name: "Guard Up", Kind: status.KindBuff, Stat: stats.StatDefense, Value: 10, Duration: 2})
	statuses.Register(&status.Status{ID: "guard_break", Name: "Guard Break", Kind: status.KindDebuff, Stat: stats.StatDefense, Value: 5, Duration: 2})

	skills := skill.NewRegistry()
	skills.Register(&skill.Skill{
		ID: "power_strike", Name: "Power Strike", ManaCost: 10, Range: 1,
		RequiresTarget: true, DamageType: skill.DamagePhysical, Multiplier: 1.5, Target: skill.TargetEnemy,
	})
	skills.Register(&skill.Skill{
		ID: "venom_strike", Name: "Venom Strike", ManaCost: 5, Range: 1,
		RequiresTarget: true, DamageType: skill.DamagePhysical, Multiplier: 1.0, Target: skill.TargetEnemy,
		Effects: []effect.Effect{{Kind: effect.KindStatus, StatusID: "poison"}},
	})
	skills.Register(&skill.Skill{
		ID: "double_stab", Name: "Double Stab", ManaCost: 5, Range: 1,
		RequiresTarget: true, DamageType: skill.DamagePhysical, Multiplier: 0.5, Hits: 2, Target: skill.TargetEnemy,
	})
	skills.Register(&skill.Skill{
		ID: "war_shout", Name: "War Shout", ManaCost: 5,
		DamageType: skill.DamageNone, Shape: skill.ShapeAllAllies, Target: skill.TargetAlly,
		Effects: []effect.Effect{{Kind: effect.KindStatus, StatusID: "guard_up"}},
	})
	skills.Register(&skill.Skill{
		ID: "zap", Name: "Zap", ManaCost: 5, Range: 3,
		RequiresTarget: true, DamageType: skill.DamageMagical, Multiplier: 1.0, Target: skill.TargetEnemy,
	})
	skills.Register(&skill.Skill{
		ID: "mend", Name: "Mend", ManaCost: 5, Range: 3,
		RequiresTarget: true, DamageType: skill.DamageHealing, Multiplier: 1.0, Target: skill.TargetAlly,
	})
	skills.Register(&skill.Skill{
		ID: "raise", Name: "Raise", ManaCost: 15, Range: 2,
		RequiresTarget: true, DamageType: skill.DamageHealing, Multiplier: 1.0, Target: skill.TargetAlly, Revives: true,
	})
	skills.Register(&skill.Skill{
		ID: "nova", Name: "Nova", ManaCost: 10, Range: 2,
		DamageType: skill.DamageMagical, Multiplier: 1.0, Shape: skill.ShapeRadius, Radius: 1, Target: skill.TargetEnemy,
	})
	skills.Register(&skill.Skill{
		ID: "beam", Name: "Beam", ManaCost: 10, Range: 3,
		DamageType: skill.DamageMagical, Multiplier: 1.0, Shape: skill.ShapeLine, Target: skill.TargetEnemy,
	})
	skills.Register(&skill.Skill{
		ID: "dirge", Name: "Dirge", ManaCost: 5,
		DamageType: skill.DamageNone, Shape: skill.ShapeAllEnemies, Target: skill.TargetEnemy,
		Effects: []effect.Effect{{Kind: effect.KindStatus, StatusID: "poison"}},
	})

	items := item.NewRegistry()
	items.Register(&item.Item{
		ID: "potion", Name: "Potion", Type: item.TypeConsumable,
		Effects: []effect.Effect{{Kind: effect.KindHeal, Value: 30}},
	})
	items.Register(&item.Item{
		ID: "elixir", Name: "Elixir", Type: item.TypeConsumable,
		Effects: []effect.Effect{{Kind: effect.KindMana, Value: 20}},
	})
	items.Register(&item.Item{
		ID: "revive_doll", Name: "Revive Doll", Type: item.TypeConsumable,
		Effects: []effect.Effect{{Kind: effect.KindRevive, Value: 50}},
	})
	items.Register(&item.Item{ID: "sword", Name: "Sword", Type: item.TypeWeapon})

	return &catalog.Set{
		Classes:  classes,
		Terrains: terrains,
		Statuses: statuses,
		Skills:   skills,
		Items:    items,
		Stages:   stage.NewRegistry(),
	}
}

// newTestEngine builds an engine over the fixture catalogs with a zero
// variance window. inv may be nil for battles without items.
func newTestEngine(t *testing.T, inv item.Inventory) (*combat.Engine, *catalog.Set) {
	t.Helper()
	cat := testCatalogs()
	return combat.NewEngine(cat, inv, rng.NewSeededSource(7), zap.NewNop(), 0), cat
}

// testStage returns a featureless stage with the given lineup, defaulting
// to a single drone.
func testStage(enemies ...stage.Enemy) *stage.Stage {
	if len(enemies) == 0 {
		enemies = []stage.Enemy{{ClassID: "drone", Name: "Sentry", Level: 1}}
	}
	return &stage.Stage{
		ID:      "proving_grounds",
		Name:    "Proving Grounds",
		Enemies: enemies,
		Reward:  stage.Reward{Currency: 100, Experience: 50, TurnBonus: 10, ParTurns: 5, SurvivorBonus: 10},
	}
}

func rosterPair() []combat.RosterEntry {
	return []combat.RosterEntry{
		{ID: "p1", Name: "Aldric", ClassID: "blade", Level: 1},
		{ID: "p2", Name: "Mira", ClassID: "caster", Level: 1},
	}
}

// mustInit initializes a battle and fails the test on error.
func mustInit(t *testing.T, e *combat.Engine, players []combat.RosterEntry, stg *stage.Stage) *combat.State {
	t.Helper()
	s, _, err := e.Initialize(players, stg)
	require.NoError(t, err)
	return s
}

// placeAt teleports a combatant for scenario setup. Occupancy derives from
// positions, so this is all a test needs to arrange a board.
func placeAt(t *testing.T, s *combat.State, id string, p grid.Point) {
	t.Helper()
	c, ok := s.Combatant(id)
	require.True(t, ok, "no combatant %q", id)
	pos := p
	c.Pos = &pos
}

// strikeDown marks a combatant defeated the way the engine does: zero HP,
// off the board.
func strikeDown(t *testing.T, s *combat.State, id string) {
	t.Helper()
	c, ok := s.Combatant(id)
	require.True(t, ok, "no combatant %q", id)
	c.Cur.HP = 0
	c.Pos = nil
}

// makeCurrent rotates the order index to the given combatant.
func makeCurrent(t *testing.T, s *combat.State, id string) {
	t.Helper()
	for i, oid := range s.Order {
		if oid == id {
			s.CurrentIndex = i
			return
		}
	}
	t.Fatalf("combatant %q not in turn order", id)
}

// afflict applies a fixture status by id at its registered duration and
// magnitude.
func afflict(t *testing.T, cat *catalog.Set, s *combat.State, id, statusID string) {
	t.Helper()
	c, ok := s.Combatant(id)
	require.True(t, ok, "no combatant %q", id)
	def, ok := cat.Statuses.Get(statusID)
	require.True(t, ok, "no status %q", statusID)
	require.NoError(t, c.Statuses.Apply(def, def.Duration, def.Value))
	if def.Kind == status.KindBuff || def.Kind == status.KindDebuff {
		c.RecomputeStats(nil)
	}
}

func eventKinds(events []combat.Event) []combat.EventKind {
	out := make([]combat.EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func hasEvent(events []combat.Event, kind combat.EventKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}
