// Package catalog bundles the static game data the combat engine is
// constructed with: classes, terrains, statuses, skills, items, and
// stages, loaded from a content root and cross-validated so that every
// reference between catalogs resolves before the first battle starts.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ironveil/tactics/internal/game/effect"
	"github.com/ironveil/tactics/internal/game/item"
	"github.com/ironveil/tactics/internal/game/skill"
	"github.com/ironveil/tactics/internal/game/stage"
	"github.com/ironveil/tactics/internal/game/stats"
	"github.com/ironveil/tactics/internal/game/status"
)

// Set holds every loaded catalog. All registries are read-only after Load;
// the engine and sessions share one Set safely across goroutines.
type Set struct {
	Classes  *stats.ClassRegistry
	Terrains *stats.TerrainRegistry
	Statuses *status.Registry
	Skills   *skill.Registry
	Items    *item.Registry
	Stages   *stage.Registry
}

// Subdirectory names under the content root.
const (
	classesDir  = "classes"
	terrainDir  = "terrain"
	statusesDir = "statuses"
	skillsDir   = "skills"
	itemsDir    = "items"
	stagesDir   = "stages"
)

// Load reads every catalog from its subdirectory under root and
// cross-validates the set.
//
// Precondition: root must contain the classes, terrain, statuses, skills,
// items, and stages subdirectories.
// Postcondition: Returns a fully resolved Set, or an error naming the
// first catalog or reference that failed.
func Load(root string) (*Set, error) {
	classes, err := stats.LoadClasses(join(root, classesDir))
	if err != nil {
		return nil, fmt.Errorf("loading classes: %w", err)
	}
	terrains, err := stats.LoadTerrains(join(root, terrainDir))
	if err != nil {
		return nil, fmt.Errorf("loading terrains: %w", err)
	}
	statuses, err := status.LoadDirectory(join(root, statusesDir))
	if err != nil {
		return nil, fmt.Errorf("loading statuses: %w", err)
	}
	skills, err := skill.LoadDirectory(join(root, skillsDir))
	if err != nil {
		return nil, fmt.Errorf("loading skills: %w", err)
	}
	items, err := item.LoadDirectory(join(root, itemsDir))
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	stages, err := stage.LoadDirectory(join(root, stagesDir))
	if err != nil {
		return nil, fmt.Errorf("loading stages: %w", err)
	}

	set := &Set{
		Classes:  classes,
		Terrains: terrains,
		Statuses: statuses,
		Skills:   skills,
		Items:    items,
		Stages:   stages,
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// Validate cross-checks every reference between catalogs: class skill
// lists, effect status ids, stage enemy classes, stage terrain symbols,
// and class modifier targets of terrains.
//
// Postcondition: Returns nil only if every reference resolves.
func (s *Set) Validate() error {
	var problems []string

	for _, c := range s.Classes.All() {
		for _, id := range c.SkillIDs {
			if _, ok := s.Skills.Get(id); !ok {
				problems = append(problems, fmt.Sprintf("class %s: unknown skill %q", c.ID, id))
			}
		}
	}

	for _, t := range s.Terrains.All() {
		for classID := range t.ClassModifiers {
			if _, ok := s.Classes.Get(classID); !ok {
				problems = append(problems, fmt.Sprintf("terrain %s: modifier for unknown class %q", t.ID, classID))
			}
		}
	}

	for _, def := range s.Skills.All() {
		problems = append(problems, s.checkEffects(fmt.Sprintf("skill %s", def.ID), def.Effects)...)
	}
	for _, def := range s.Items.All() {
		problems = append(problems, s.checkEffects(fmt.Sprintf("item %s", def.ID), def.Effects)...)
	}

	for _, st := range s.Stages.All() {
		for i, e := range st.Enemies {
			if _, ok := s.Classes.Get(e.ClassID); !ok {
				problems = append(problems, fmt.Sprintf("stage %s: enemy %d has unknown class %q", st.ID, i, e.ClassID))
			}
		}
		if _, err := st.ResolveLayout(s.Terrains); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func (s *Set) checkEffects(owner string, effects []effect.Effect) []string {
	var problems []string
	for i, e := range effects {
		if e.Kind == effect.KindStatus {
			if _, ok := s.Statuses.Get(e.StatusID); !ok {
				problems = append(problems, fmt.Sprintf("%s: effect %d references unknown status %q", owner, i, e.StatusID))
			}
		}
	}
	return problems
}

func join(root, sub string) string {
	return filepath.Join(root, sub)
}
