package stats

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Range defaults for class files that omit them.
const (
	DefaultAttackRange = 1
	DefaultMoveRange   = 3
)

// Class defines a combatant class: the base stat line and the range rules
// every member of the class fights with. Attack range is class-driven for
// players and enemy AI alike.
type Class struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Base        Block    `yaml:"stats"`
	AttackRange int      `yaml:"attack_range"`
	MoveRange   int      `yaml:"move_range"`
	SkillIDs    []string `yaml:"skills"`
}

// Validate checks that the class is complete enough to field a combatant.
//
// Postcondition: Returns nil only if ID and Name are non-empty, ranges are
// >= 1, and the base block passes its own validation.
func (c *Class) Validate() error {
	var problems []string
	if c.ID == "" {
		problems = append(problems, "id must not be empty")
	}
	if c.Name == "" {
		problems = append(problems, "name must not be empty")
	}
	if c.AttackRange < 1 {
		problems = append(problems, fmt.Sprintf("attack_range must be >= 1, got %d", c.AttackRange))
	}
	if c.MoveRange < 1 {
		problems = append(problems, fmt.Sprintf("move_range must be >= 1, got %d", c.MoveRange))
	}
	if err := c.Base.Filled().Validate(); err != nil {
		problems = append(problems, fmt.Sprintf("stats: %v", err))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ClassRegistry holds all known Classes keyed by ID.
type ClassRegistry struct {
	defs map[string]*Class
}

// NewClassRegistry creates an empty ClassRegistry.
func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{defs: make(map[string]*Class)}
}

// Register adds c to the registry, overwriting any existing entry with the
// same ID.
//
// Precondition: c must not be nil and c.ID must not be empty.
func (r *ClassRegistry) Register(c *Class) {
	r.defs[c.ID] = c
}

// Get returns the Class for id, or (nil, false) if not found.
func (r *ClassRegistry) Get(id string) (*Class, bool) {
	c, ok := r.defs[id]
	return c, ok
}

// All returns all registered classes sorted by ID.
func (r *ClassRegistry) All() []*Class {
	out := make([]*Class, 0, len(r.defs))
	for _, c := range r.defs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadClasses reads every *.yaml file in dir, parses each as a Class, and
// returns a populated ClassRegistry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil registry, or an error naming the first
// file that fails to parse or validate.
func LoadClasses(dir string) (*ClassRegistry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading class dir %q: %w", dir, err)
	}
	reg := NewClassRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var c Class
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if c.AttackRange == 0 {
			c.AttackRange = DefaultAttackRange
		}
		if c.MoveRange == 0 {
			c.MoveRange = DefaultMoveRange
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		reg.Register(&c)
	}
	return reg, nil
}
