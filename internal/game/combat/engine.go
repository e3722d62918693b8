// Package combat implements the turn-based tactical battle engine: an 8x8
// board derived from a combatant roster, a speed-sorted turn rotation,
// action resolution for moves, attacks, skills, and items, per-round
// status processing, and win/loss detection. Every operation takes a
// State and returns a new one; the input is never mutated.
package combat

import (
	"fmt"
	"sort"

	"github.com/ironveil/tactics/internal/game/catalog"
	"github.com/ironveil/tactics/internal/game/grid"
	"github.com/ironveil/tactics/internal/game/item"
	"github.com/ironveil/tactics/internal/game/rng"
	"github.com/ironveil/tactics/internal/game/stage"
	"github.com/ironveil/tactics/internal/game/stats"
	"github.com/ironveil/tactics/internal/game/status"
	"go.uber.org/zap"
)

// DefaultVariance is the damage variance window used when no override is
// configured: every strike's offense is scaled by a uniform multiplier in
// [0.9, 1.1].
const DefaultVariance = 0.1

// MaxTeamSize caps each side to the cells of its starting flank.
const MaxTeamSize = 8

// Engine resolves combat operations. It is stateless between calls: all
// battle state lives in State values, so one Engine may serve any number
// of concurrent sessions as long as its Source is safe for concurrent
// use.
type Engine struct {
	catalogs  *catalog.Set
	inventory item.Inventory
	src       rng.Source
	logger    *zap.Logger
	variance  float64
}

// NewEngine creates an Engine.
//
// Precondition: cat, src, and logger must be non-nil; inv may be nil for
// battles without items; variance must be in [0, 1).
func NewEngine(cat *catalog.Set, inv item.Inventory, src rng.Source, logger *zap.Logger, variance float64) *Engine {
	if variance < 0 {
		variance = 0
	}
	return &Engine{
		catalogs:  cat,
		inventory: inv,
		src:       src,
		logger:    logger,
		variance:  variance,
	}
}

// RosterEntry describes one player character entering combat, supplied by
// the external character provider.
type RosterEntry struct {
	ID      string
	Name    string
	ClassID string
	Level   int
	// Base optionally carries provider-computed stats (equipment bonuses
	// included). A zero MaxHP means derive from the class base scaled for
	// Level.
	Base stats.Block
	// SkillIDs optionally overrides the class skill list.
	SkillIDs []string
	// Proficiency maps skill ids to points; skills not present default to
	// 1 point, and an explicit 0 makes the skill unusable.
	Proficiency map[string]int
}

// Initialize builds the opening state for a battle of players against the
// stage's lineup: players fill the left flank (rows 2-5, columns 1 then
// 0), enemies the right (rows 2-5, columns 6 then 7), terrain modifiers
// apply per starting cell, and the turn order is fixed by descending
// terrain-adjusted speed with ties kept in roster order.
//
// Postcondition: On success the state is in progress at round 1 with the
// fastest combatant current, and the events narrate the combat start.
func (e *Engine) Initialize(players []RosterEntry, stg *stage.Stage) (*State, []Event, error) {
	if stg == nil {
		return nil, nil, fmt.Errorf("%w: no stage", ErrDataLoad)
	}
	if len(players) < 1 || len(players) > MaxTeamSize {
		return nil, nil, fmt.Errorf("%w: player count must be in [1, %d], got %d", ErrInvalidAction, MaxTeamSize, len(players))
	}
	if len(stg.Enemies) < 1 || len(stg.Enemies) > MaxTeamSize {
		return nil, nil, fmt.Errorf("%w: stage %s enemy count must be in [1, %d], got %d", ErrDataLoad, stg.ID, MaxTeamSize, len(stg.Enemies))
	}

	terrain, err := stg.ResolveLayout(e.catalogs.Terrains)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDataLoad, err)
	}

	s := &State{
		Turn:    1,
		Phase:   PhaseInProgress,
		Terrain: terrain,
	}

	seen := make(map[string]bool, len(players)+len(stg.Enemies))
	for i, entry := range players {
		if entry.ID == "" || seen[entry.ID] {
			return nil, nil, fmt.Errorf("%w: roster entry %d needs a unique id", ErrInvalidAction, i)
		}
		seen[entry.ID] = true
		c, err := e.buildPlayer(entry)
		if err != nil {
			return nil, nil, err
		}
		e.place(s, c, playerCell(i))
		s.Roster = append(s.Roster, c)
	}
	for i, en := range stg.Enemies {
		c, err := e.buildEnemy(en, i)
		if err != nil {
			return nil, nil, fmt.Errorf("stage %s: %w", stg.ID, err)
		}
		if seen[c.ID] {
			return nil, nil, fmt.Errorf("%w: duplicate combatant id %q", ErrInvalidAction, c.ID)
		}
		seen[c.ID] = true
		e.place(s, c, enemyCell(i))
		s.Roster = append(s.Roster, c)
	}

	s.Order = initiativeOrder(s.Roster)
	s.index()

	events := []Event{
		newEvent(s, EventCombatStarted, "", "", 0, "battle begins: %s", stg.Name),
		newEvent(s, EventRoundStarted, "", "", 0, "round 1 begins"),
		newEvent(s, EventTurnStarted, s.Current().ID, "", 0, "%s's turn", s.Current().Name),
	}
	return s, events, nil
}

// buildPlayer constructs a player combatant from its roster entry.
func (e *Engine) buildPlayer(entry RosterEntry) (*Combatant, error) {
	class, ok := e.catalogs.Classes.Get(entry.ClassID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown class %q for %q", ErrDataLoad, entry.ClassID, entry.ID)
	}
	base := entry.Base
	if base.MaxHP == 0 {
		base = stats.ScaleForLevel(class.Base, entry.Level)
	}
	skills := entry.SkillIDs
	if skills == nil {
		skills = append([]string(nil), class.SkillIDs...)
	}
	prof := make(map[string]int, len(skills))
	for _, id := range skills {
		points, set := entry.Proficiency[id]
		if !set {
			points = 1
		}
		prof[id] = points
	}
	return &Combatant{
		ID:          entry.ID,
		Name:        entry.Name,
		Team:        TeamPlayer,
		ClassID:     class.ID,
		Level:       maxLevel(entry.Level, 1),
		Base:        base,
		Cur:         base.Filled(),
		SkillIDs:    skills,
		Proficiency: prof,
		Statuses:    status.NewList(),
		class:       class,
	}, nil
}

// buildEnemy constructs an enemy combatant from its stage lineup slot.
func (e *Engine) buildEnemy(en stage.Enemy, i int) (*Combatant, error) {
	class, ok := e.catalogs.Classes.Get(en.ClassID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown class %q", ErrDataLoad, en.ClassID)
	}
	base := stats.ScaleForLevel(class.Base, en.Level)
	skills := append([]string(nil), class.SkillIDs...)
	prof := make(map[string]int, len(skills))
	for _, id := range skills {
		prof[id] = 1
	}
	return &Combatant{
		ID:          fmt.Sprintf("enemy-%d", i+1),
		Name:        en.Name,
		Team:        TeamEnemy,
		ClassID:     class.ID,
		Level:       maxLevel(en.Level, 1),
		Base:        base,
		Cur:         base.Filled(),
		SkillIDs:    skills,
		Proficiency: prof,
		Statuses:    status.NewList(),
		class:       class,
	}, nil
}

// place puts c on cell and applies the cell's terrain modifiers.
func (e *Engine) place(s *State, c *Combatant, cell grid.Point) {
	p := cell
	c.Pos = &p
	c.RecomputeStats(s.Terrain.At(cell))
}

// playerCell returns the i-th player start cell on the left flank: the
// column nearest the center fills first, rows top to bottom.
func playerCell(i int) grid.Point {
	if i < 4 {
		return grid.Point{Row: 2 + i, Col: 1}
	}
	return grid.Point{Row: 2 + (i - 4), Col: 0}
}

// enemyCell mirrors playerCell on the right flank.
func enemyCell(i int) grid.Point {
	if i < 4 {
		return grid.Point{Row: 2 + i, Col: 6}
	}
	return grid.Point{Row: 2 + (i - 4), Col: 7}
}

// initiativeOrder returns combatant ids sorted by descending current
// speed. The sort is stable, so equal speeds keep roster order. The order
// is computed once per combat and never re-sorted.
func initiativeOrder(roster []*Combatant) []string {
	sorted := append([]*Combatant(nil), roster...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Cur.Speed > sorted[j].Cur.Speed
	})
	order := make([]string, len(sorted))
	for i, c := range sorted {
		order[i] = c.ID
	}
	return order
}

func maxLevel(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}
