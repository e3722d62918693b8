package stats

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Modifier is a set of percent deltas applied to a base Block. A value of
// 10 raises the stat by 10% of its base, -25 lowers it by a quarter. Zero
// fields leave the stat untouched.
type Modifier struct {
	MaxHP      int `yaml:"max_hp"`
	MaxMana    int `yaml:"max_mana"`
	Attack     int `yaml:"attack"`
	Magic      int `yaml:"magic"`
	Defense    int `yaml:"defense"`
	Resistance int `yaml:"resistance"`
	Speed      int `yaml:"speed"`
	Evasion    int `yaml:"evasion"`
	CritChance int `yaml:"crit_chance"`
}

// Add returns the field-wise sum of m and other. Class-specific terrain
// bonuses stack on top of the terrain's default modifier this way.
func (m Modifier) Add(other Modifier) Modifier {
	m.MaxHP += other.MaxHP
	m.MaxMana += other.MaxMana
	m.Attack += other.Attack
	m.Magic += other.Magic
	m.Defense += other.Defense
	m.Resistance += other.Resistance
	m.Speed += other.Speed
	m.Evasion += other.Evasion
	m.CritChance += other.CritChance
	return m
}

// ApplyTo scales each stat of base by the corresponding percent delta.
// Current HP and Mana in the result are meaningless; callers preserve
// vital ratios via RescaleVital.
//
// Postcondition: MaxHP >= 1, MaxMana >= 0, combat stats >= 0, Evasion and
// CritChance in [0, 100].
func (m Modifier) ApplyTo(base Block) Block {
	base.MaxHP = maxInt(1, scalePct(base.MaxHP, m.MaxHP))
	base.MaxMana = maxInt(0, scalePct(base.MaxMana, m.MaxMana))
	base.Attack = maxInt(0, scalePct(base.Attack, m.Attack))
	base.Magic = maxInt(0, scalePct(base.Magic, m.Magic))
	base.Defense = maxInt(0, scalePct(base.Defense, m.Defense))
	base.Resistance = maxInt(0, scalePct(base.Resistance, m.Resistance))
	base.Speed = maxInt(0, scalePct(base.Speed, m.Speed))
	base.Evasion = clampPct(scalePct(base.Evasion, m.Evasion))
	base.CritChance = clampPct(scalePct(base.CritChance, m.CritChance))
	return base
}

func scalePct(v, pct int) int {
	return v + v*pct/100
}

// Terrain defines one terrain type: its stage-layout symbol, the movement
// cost of entering a cell of it, and the stat modifiers it grants.
type Terrain struct {
	ID             string              `yaml:"id"`
	Name           string              `yaml:"name"`
	Description    string              `yaml:"description"`
	Symbol         string              `yaml:"symbol"`
	MoveCost       int                 `yaml:"move_cost"`
	Modifiers      Modifier            `yaml:"modifiers"`
	ClassModifiers map[string]Modifier `yaml:"class_modifiers"`
}

// Validate checks that the terrain can be referenced from a stage layout.
//
// Postcondition: Returns nil only if ID and Name are non-empty, Symbol is
// exactly one rune, and MoveCost >= 1.
func (t *Terrain) Validate() error {
	var problems []string
	if t.ID == "" {
		problems = append(problems, "id must not be empty")
	}
	if t.Name == "" {
		problems = append(problems, "name must not be empty")
	}
	if utf8.RuneCountInString(t.Symbol) != 1 {
		problems = append(problems, fmt.Sprintf("symbol must be exactly one rune, got %q", t.Symbol))
	}
	if t.MoveCost < 1 {
		problems = append(problems, fmt.Sprintf("move_cost must be >= 1, got %d", t.MoveCost))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ModifierFor returns the effective modifier for a combatant of classID:
// the terrain's default modifier plus any class-specific bonus.
func (t *Terrain) ModifierFor(classID string) Modifier {
	mod := t.Modifiers
	if extra, ok := t.ClassModifiers[classID]; ok {
		mod = mod.Add(extra)
	}
	return mod
}

// ApplyTerrain returns the terrain-adjusted stat block for a combatant of
// classID. Maxima and combat stats derive from base so that repeated
// application never compounds; HP and Mana keep the fill ratio they held
// under current's maxima. A nil terrain applies no modifier.
//
// Postcondition: result.HP = floor(result.MaxHP * current.HP /
// current.MaxHP), and likewise for Mana.
func ApplyTerrain(base, current Block, t *Terrain, classID string) Block {
	var mod Modifier
	if t != nil {
		mod = t.ModifierFor(classID)
	}
	next := mod.ApplyTo(base)
	next.HP = RescaleVital(current.HP, current.MaxHP, next.MaxHP)
	next.Mana = RescaleVital(current.Mana, current.MaxMana, next.MaxMana)
	return next
}

// TerrainRegistry holds all known Terrains keyed by ID and by layout symbol.
type TerrainRegistry struct {
	defs     map[string]*Terrain
	bySymbol map[rune]*Terrain
}

// NewTerrainRegistry creates an empty TerrainRegistry.
func NewTerrainRegistry() *TerrainRegistry {
	return &TerrainRegistry{
		defs:     make(map[string]*Terrain),
		bySymbol: make(map[rune]*Terrain),
	}
}

// Register adds t to the registry, overwriting any existing entry with the
// same ID or symbol.
//
// Precondition: t must not be nil and must pass Validate.
func (r *TerrainRegistry) Register(t *Terrain) {
	r.defs[t.ID] = t
	sym, _ := utf8.DecodeRuneInString(t.Symbol)
	r.bySymbol[sym] = t
}

// Get returns the Terrain for id, or (nil, false) if not found.
func (r *TerrainRegistry) Get(id string) (*Terrain, bool) {
	t, ok := r.defs[id]
	return t, ok
}

// BySymbol returns the Terrain whose layout symbol is sym, or (nil, false)
// if not found.
func (r *TerrainRegistry) BySymbol(sym rune) (*Terrain, bool) {
	t, ok := r.bySymbol[sym]
	return t, ok
}

// All returns all registered terrains sorted by ID.
func (r *TerrainRegistry) All() []*Terrain {
	out := make([]*Terrain, 0, len(r.defs))
	for _, t := range r.defs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadTerrains reads every *.yaml file in dir, parses each as a Terrain,
// and returns a populated TerrainRegistry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil registry, or an error naming the first
// file that fails to parse or validate.
func LoadTerrains(dir string) (*TerrainRegistry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading terrain dir %q: %w", dir, err)
	}
	reg := NewTerrainRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var t Terrain
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&t); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		reg.Register(&t)
	}
	return reg, nil
}
