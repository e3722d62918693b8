// Package stage defines battle stages: the enemy lineup, the terrain
// layout of the board, the reward table paid out on victory, and an
// optional Lua script hooked into battle lifecycle events.
package stage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ironveil/tactics/internal/game/grid"
	"github.com/ironveil/tactics/internal/game/stats"
	"gopkg.in/yaml.v3"
)

// MaxEnemies caps the enemy lineup to the cells of the right flank.
const MaxEnemies = 8

// Enemy is one slot in a stage's lineup. Stats derive from the class base
// scaled for Level.
type Enemy struct {
	ClassID string `yaml:"class"`
	Name    string `yaml:"name"`
	Level   int    `yaml:"level"`
}

// Reward is the payout table consumed by the reward ledger after victory.
type Reward struct {
	// Currency and Experience are the base victory payouts.
	Currency   int `yaml:"currency"`
	Experience int `yaml:"experience"`
	// TurnBonus pays extra currency for every round finished under
	// ParTurns.
	TurnBonus int `yaml:"turn_bonus"`
	ParTurns  int `yaml:"par_turns"`
	// SurvivorBonus pays extra currency per living player at battle end.
	SurvivorBonus int `yaml:"survivor_bonus"`
}

// Validate checks the payout numbers are non-negative.
func (r Reward) Validate() error {
	if r.Currency < 0 || r.Experience < 0 || r.TurnBonus < 0 || r.ParTurns < 0 || r.SurvivorBonus < 0 {
		return errors.New("reward values must be >= 0")
	}
	return nil
}

// Stage is one battle definition, loaded from YAML.
type Stage struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Layout is grid.Size rows of grid.Size terrain symbols. An empty
	// layout means featureless ground everywhere.
	Layout  []string `yaml:"layout"`
	Enemies []Enemy  `yaml:"enemies"`
	Reward  Reward   `yaml:"reward"`
	// Script names an optional Lua file with battle lifecycle hooks. The
	// loader resolves it relative to the stage file's directory.
	Script string `yaml:"script"`
}

// Validate checks the stage shape: lineup size, layout dimensions, enemy
// fields, and reward numbers. Terrain symbols and class ids are resolved
// against the catalogs separately.
func (s *Stage) Validate() error {
	var problems []string
	if s.ID == "" {
		problems = append(problems, "id must not be empty")
	}
	if s.Name == "" {
		problems = append(problems, "name must not be empty")
	}
	if len(s.Enemies) < 1 || len(s.Enemies) > MaxEnemies {
		problems = append(problems, fmt.Sprintf("enemy count must be in [1, %d], got %d", MaxEnemies, len(s.Enemies)))
	}
	for i, e := range s.Enemies {
		if e.ClassID == "" {
			problems = append(problems, fmt.Sprintf("enemy %d: class must not be empty", i))
		}
		if e.Name == "" {
			problems = append(problems, fmt.Sprintf("enemy %d: name must not be empty", i))
		}
		if e.Level < 1 {
			problems = append(problems, fmt.Sprintf("enemy %d: level must be >= 1, got %d", i, e.Level))
		}
	}
	if len(s.Layout) != 0 {
		if len(s.Layout) != grid.Size {
			problems = append(problems, fmt.Sprintf("layout must have %d rows, got %d", grid.Size, len(s.Layout)))
		}
		for i, row := range s.Layout {
			if len([]rune(row)) != grid.Size {
				problems = append(problems, fmt.Sprintf("layout row %d must have %d symbols, got %d", i, grid.Size, len([]rune(row))))
			}
		}
	}
	if err := s.Reward.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ResolveLayout maps the stage layout to terrain definitions using the
// registry. The symbol '.' always means featureless ground; every other
// symbol must be registered.
//
// Precondition: the stage passed Validate.
// Postcondition: Returns the full board's terrain, or an error naming the
// first unknown symbol.
func (s *Stage) ResolveLayout(reg *stats.TerrainRegistry) ([grid.Size][grid.Size]*stats.Terrain, error) {
	var out [grid.Size][grid.Size]*stats.Terrain
	if len(s.Layout) == 0 {
		return out, nil
	}
	for r, row := range s.Layout {
		for c, sym := range []rune(row) {
			if sym == '.' {
				continue
			}
			t, ok := reg.BySymbol(sym)
			if !ok {
				return out, fmt.Errorf("stage %s: unknown terrain symbol %q at row %d col %d", s.ID, string(sym), r, c)
			}
			out[r][c] = t
		}
	}
	return out, nil
}

// Registry holds all known Stages keyed by ID.
type Registry struct {
	defs map[string]*Stage
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Stage)}
}

// Register adds def to the registry, overwriting any existing entry with
// the same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Stage) {
	r.defs[def.ID] = def
}

// Get returns the Stage for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Stage, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns all registered stages sorted by ID.
func (r *Registry) All() []*Stage {
	out := make([]*Stage, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Stage,
// and returns a populated Registry. Script paths are resolved relative to
// dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error naming the first
// file that fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading stage dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Stage
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		if def.Script != "" {
			def.Script = filepath.Join(dir, def.Script)
		}
		reg.Register(&def)
	}
	return reg, nil
}
