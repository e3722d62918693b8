// Package skill defines the static skill catalog: damage profile, mana
// cost, range, area shape, and secondary effects of every learnable skill.
package skill

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ironveil/tactics/internal/game/effect"
	"gopkg.in/yaml.v3"
)

// DamageType classifies how a skill's primary amount resolves.
type DamageType string

const (
	// DamagePhysical resolves attack against defense.
	DamagePhysical DamageType = "physical"
	// DamageMagical resolves magic against resistance.
	DamageMagical DamageType = "magical"
	// DamageHealing restores HP derived from the caster's magic.
	DamageHealing DamageType = "healing"
	// DamageNone carries no primary amount; only effects apply.
	DamageNone DamageType = "none"
)

// Shape classifies a skill's area of effect.
type Shape string

const (
	// ShapeNone hits the single chosen target.
	ShapeNone Shape = "none"
	// ShapeLine hits cells extending from the caster toward the chosen
	// origin, Range cells long.
	ShapeLine Shape = "line"
	// ShapeRadius hits cells within Radius of the chosen origin.
	ShapeRadius Shape = "radius"
	// ShapeAllEnemies hits every living opposing combatant, ignoring range.
	ShapeAllEnemies Shape = "all_enemies"
	// ShapeAllAllies affects every living allied combatant, ignoring range.
	ShapeAllAllies Shape = "all_allies"
)

// Target classifies which team a skill may be aimed at.
type Target string

const (
	TargetEnemy Target = "enemy"
	TargetAlly  Target = "ally"
	TargetSelf  Target = "self"
)

// Skill is the static definition of one skill, loaded from YAML.
type Skill struct {
	ID             string          `yaml:"id"`
	Name           string          `yaml:"name"`
	Description    string          `yaml:"description"`
	ManaCost       int             `yaml:"mana_cost"`
	Range          int             `yaml:"range"`
	RequiresTarget bool            `yaml:"requires_target"`
	DamageType     DamageType      `yaml:"damage_type"`
	Multiplier     float64         `yaml:"multiplier"`
	Hits           int             `yaml:"hits"`
	Shape          Shape           `yaml:"shape"`
	Radius         int             `yaml:"radius"`
	Target         Target          `yaml:"target"`
	Revives        bool            `yaml:"revives"`
	Effects        []effect.Effect `yaml:"effects"`
}

// HitCount returns how many times the primary amount resolves; unset or
// zero Hits means a single hit.
func (s *Skill) HitCount() int {
	if s.Hits < 1 {
		return 1
	}
	return s.Hits
}

// EffectiveMultiplier returns the damage multiplier, defaulting to 1.0
// when unset.
func (s *Skill) EffectiveMultiplier() float64 {
	if s.Multiplier <= 0 {
		return 1.0
	}
	return s.Multiplier
}

// EffectiveShape returns the area shape, defaulting to ShapeNone when
// unset.
func (s *Skill) EffectiveShape() Shape {
	if s.Shape == "" {
		return ShapeNone
	}
	return s.Shape
}

// Validate checks the skill is coherent: known enums, sane numbers, and a
// target side consistent with the shape.
//
// Postcondition: Returns nil only if the definition can be resolved by the
// engine without further defaulting beyond HitCount, EffectiveMultiplier,
// and EffectiveShape.
func (s *Skill) Validate() error {
	var problems []string
	if s.ID == "" {
		problems = append(problems, "id must not be empty")
	}
	if s.Name == "" {
		problems = append(problems, "name must not be empty")
	}
	if s.ManaCost < 0 {
		problems = append(problems, fmt.Sprintf("mana_cost must be >= 0, got %d", s.ManaCost))
	}
	if s.Multiplier < 0 {
		problems = append(problems, fmt.Sprintf("multiplier must be >= 0, got %g", s.Multiplier))
	}
	if s.Hits < 0 {
		problems = append(problems, fmt.Sprintf("hits must be >= 0, got %d", s.Hits))
	}

	switch s.DamageType {
	case DamagePhysical, DamageMagical, DamageHealing, DamageNone:
	default:
		problems = append(problems, fmt.Sprintf("unknown damage_type %q", s.DamageType))
	}
	if s.Hits > 1 && s.DamageType != DamagePhysical && s.DamageType != DamageMagical {
		problems = append(problems, "multi-hit requires a physical or magical damage_type")
	}
	if s.Revives && s.DamageType != DamageHealing {
		problems = append(problems, "revives requires damage_type healing")
	}

	switch s.Target {
	case TargetEnemy, TargetAlly, TargetSelf:
	default:
		problems = append(problems, fmt.Sprintf("unknown target %q", s.Target))
	}

	switch s.EffectiveShape() {
	case ShapeNone:
		if s.RequiresTarget && s.Range < 1 {
			problems = append(problems, "targeted skill needs range >= 1")
		}
	case ShapeLine:
		if s.Range < 1 {
			problems = append(problems, "line skill needs range >= 1")
		}
	case ShapeRadius:
		if s.Radius < 1 {
			problems = append(problems, "radius skill needs radius >= 1")
		}
	case ShapeAllEnemies:
		if s.Target != TargetEnemy {
			problems = append(problems, "all_enemies shape requires target enemy")
		}
	case ShapeAllAllies:
		if s.Target == TargetEnemy {
			problems = append(problems, "all_allies shape cannot target enemies")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown shape %q", s.Shape))
	}

	if err := effect.ValidateAll(s.Effects); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Registry holds all known Skills keyed by ID.
type Registry struct {
	defs map[string]*Skill
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Skill)}
}

// Register adds def to the registry, overwriting any existing entry with
// the same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Skill) {
	r.defs[def.ID] = def
}

// Get returns the Skill for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Skill, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns all registered skills sorted by ID.
func (r *Registry) All() []*Skill {
	out := make([]*Skill, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Skill,
// and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error naming the first
// file that fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading skill dir %q: %w", dir, err)
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
		var def Skill
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
