// Package item defines the static item catalog and the external inventory
// boundary. Combat consumes inventory items but never owns their storage;
// the web layer that tracks what a player actually holds sits behind the
// Inventory interface.
package item

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

// Type classifies an item.
type Type string

const (
	TypeWeapon     Type = "weapon"
	TypeArmor      Type = "armor"
	TypeConsumable Type = "consumable"
)

// Item is the static definition of one item, loaded from YAML. Only
// consumables are usable as a combat action; weapons and armor contribute
// to roster base stats outside combat.
type Item struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Type        Type            `yaml:"type"`
	Effects     []effect.Effect `yaml:"effects"`
}

// Validate checks the item definition.
//
// Postcondition: Returns nil only if ID, Name, and Type are set, the type
// is known, consumables carry at least one effect, and every effect
// validates.
func (i *Item) Validate() error {
	var problems []string
	if i.ID == "" {
		problems = append(problems, "id must not be empty")
	}
	if i.Name == "" {
		problems = append(problems, "name must not be empty")
	}
	switch i.Type {
	case TypeWeapon, TypeArmor:
	case TypeConsumable:
		if len(i.Effects) == 0 {
			problems = append(problems, "consumable must have at least one effect")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown type %q", i.Type))
	}
	if err := effect.ValidateAll(i.Effects); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Registry holds all known Items keyed by ID.
type Registry struct {
	defs map[string]*Item
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Item)}
}

// Register adds def to the registry, overwriting any existing entry with
// the same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Item) {
	r.defs[def.ID] = def
}

// Get returns the Item for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Item, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns all registered items sorted by ID.
func (r *Registry) All() []*Item {
	out := make([]*Item, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as an Item,
// and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error naming the first
// file that fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading item dir %q: %w", dir, err)
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
		var def Item
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
