package combat

import (
	"github.com/ironveil/tactics/internal/game/grid"
	"github.com/ironveil/tactics/internal/game/stats"
)

// Phase is the combat lifecycle state. Victory and Defeat are terminal;
// no action mutates combatant stats once either is reached.
type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	PhaseVictory    Phase = "victory"
	PhaseDefeat     Phase = "defeat"
)

// TerrainGrid maps every board cell to its terrain definition. Cells may
// be nil (featureless ground). Definitions are shared immutable data.
type TerrainGrid [grid.Size][grid.Size]*stats.Terrain

// At returns the terrain of cell p, or nil for off-board points.
func (g *TerrainGrid) At(p grid.Point) *stats.Terrain {
	if !p.InBounds() {
		return nil
	}
	return g[p.Row][p.Col]
}

// MoveCost returns the movement cost of entering cell p. Featureless
// ground costs 1.
func (g *TerrainGrid) MoveCost(p grid.Point) int {
	if t := g.At(p); t != nil {
		return t.MoveCost
	}
	return 1
}

// State is one immutable-style snapshot of a combat. Engine operations
// never mutate a State they are given; they clone, transform, and return
// the clone. The roster is the single source of truth for the board:
// occupancy is derived from combatant positions, never tracked separately.
type State struct {
	// Turn counts rounds, starting at 1 and incrementing when the
	// rotation wraps.
	Turn int
	// CurrentIndex points into Order at the combatant whose turn it is.
	CurrentIndex int
	// Order holds combatant ids sorted once at combat start by descending
	// speed, ties broken by roster position. Membership and order are
	// fixed for the whole combat; defeat removes a combatant from
	// rotation by skipping, not by re-sorting.
	Order []string
	// Roster holds every combatant, players first, in creation order.
	Roster []*Combatant
	// Terrain is the static board layout for this combat.
	Terrain TerrainGrid
	Phase   Phase

	byID map[string]*Combatant
}

// index rebuilds the id lookup. Called after construction and cloning.
func (s *State) index() {
	s.byID = make(map[string]*Combatant, len(s.Roster))
	for _, c := range s.Roster {
		s.byID[c.ID] = c
	}
}

// Combatant returns the combatant with the given id.
func (s *State) Combatant(id string) (*Combatant, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// Current returns the combatant whose turn it is.
func (s *State) Current() *Combatant {
	if len(s.Order) == 0 {
		return nil
	}
	c := s.byID[s.Order[s.CurrentIndex]]
	return c
}

// CombatantAt returns the living combatant standing on cell p, or nil.
func (s *State) CombatantAt(p grid.Point) *Combatant {
	for _, c := range s.Roster {
		if c.Pos != nil && *c.Pos == p {
			return c
		}
	}
	return nil
}

// Occupied reports whether any combatant stands on cell p.
func (s *State) Occupied(p grid.Point) bool {
	return s.CombatantAt(p) != nil
}

// Living returns the living members of team in roster order.
func (s *State) Living(team Team) []*Combatant {
	var out []*Combatant
	for _, c := range s.Roster {
		if c.Team == team && c.IsAlive() {
			out = append(out, c)
		}
	}
	return out
}

// Members returns all members of team in roster order, defeated included.
func (s *State) Members(team Team) []*Combatant {
	var out []*Combatant
	for _, c := range s.Roster {
		if c.Team == team {
			out = append(out, c)
		}
	}
	return out
}

// GameOver reports whether the combat reached a terminal phase.
func (s *State) GameOver() bool {
	return s.Phase != PhaseInProgress
}

// Victory reports whether the player team won. Meaningful only when
// GameOver is true.
func (s *State) Victory() bool {
	return s.Phase == PhaseVictory
}

// Clone returns a deep copy of the state. Terrain and rules definitions
// are shared; everything mutable is copied.
func (s *State) Clone() *State {
	cp := &State{
		Turn:         s.Turn,
		CurrentIndex: s.CurrentIndex,
		Order:        append([]string(nil), s.Order...),
		Roster:       make([]*Combatant, len(s.Roster)),
		Terrain:      s.Terrain,
		Phase:        s.Phase,
	}
	for i, c := range s.Roster {
		cp.Roster[i] = c.Clone()
	}
	cp.index()
	return cp
}
