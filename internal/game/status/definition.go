// Package status defines timed combat modifiers: damage- and heal-over-time
// ticks, stat buffs and debuffs, and action-disabling ailments. Definitions
// load from YAML; active instances attach to combatants and decay at round
// boundaries.
package status

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ironveil/tactics/internal/game/stats"
	"gopkg.in/yaml.v3"
)

// Kind classifies what a status does each round.
type Kind string

const (
	// KindDot deals Value percent of max HP as damage at each round wrap.
	KindDot Kind = "dot"
	// KindHot heals Value percent of max HP at each round wrap.
	KindHot Kind = "hot"
	// KindBuff raises Stat by Value points while active.
	KindBuff Kind = "buff"
	// KindDebuff lowers Stat by Value points while active.
	KindDebuff Kind = "debuff"
	// KindDisable blocks the actions named in Restricts while active.
	KindDisable Kind = "disable"
)

// Restriction names for KindDisable statuses.
const (
	// RestrictAct blocks the combatant's entire turn; stun and freeze
	// restrict this.
	RestrictAct = "act"
	// RestrictSkill blocks skill use only; silence restricts this.
	RestrictSkill = "skill"
)

// Status is the static definition of one status effect, loaded from YAML.
type Status struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Kind        Kind       `yaml:"kind"`
	Stat        stats.Stat `yaml:"stat"`
	Value       int        `yaml:"value"`
	Duration    int        `yaml:"duration"`
	Restricts   []string   `yaml:"restricts"`
}

// Validate checks the definition is coherent for its kind.
//
// Postcondition: Returns nil only if ID, Name, Kind, and Duration are set
// and the kind-specific fields are usable.
func (s *Status) Validate() error {
	var problems []string
	if s.ID == "" {
		problems = append(problems, "id must not be empty")
	}
	if s.Name == "" {
		problems = append(problems, "name must not be empty")
	}
	if s.Duration < 1 {
		problems = append(problems, fmt.Sprintf("duration must be >= 1, got %d", s.Duration))
	}
	switch s.Kind {
	case KindDot, KindHot:
		if s.Value < 1 {
			problems = append(problems, fmt.Sprintf("value must be >= 1 percent for %s, got %d", s.Kind, s.Value))
		}
	case KindBuff, KindDebuff:
		if !stats.ValidStat(s.Stat) {
			problems = append(problems, fmt.Sprintf("stat %q is not adjustable", s.Stat))
		}
		if s.Value < 1 {
			problems = append(problems, fmt.Sprintf("value must be >= 1 point for %s, got %d", s.Kind, s.Value))
		}
	case KindDisable:
		if len(s.Restricts) == 0 {
			problems = append(problems, "disable must restrict at least one action")
		}
		for _, r := range s.Restricts {
			if r != RestrictAct && r != RestrictSkill {
				problems = append(problems, fmt.Sprintf("unknown restriction %q", r))
			}
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown kind %q", s.Kind))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Registry holds all known Statuses keyed by ID.
type Registry struct {
	defs map[string]*Status
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Status)}
}

// Register adds def to the registry, overwriting any existing entry with
// the same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Status) {
	r.defs[def.ID] = def
}

// Get returns the Status for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Status, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns all registered statuses sorted by ID.
func (r *Registry) All() []*Status {
	out := make([]*Status, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Status,
// and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error naming the first
// file that fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading status dir %q: %w", dir, err)
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
		var def Status
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}
