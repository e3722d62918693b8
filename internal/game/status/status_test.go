package status_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ironveil/tactics/internal/game/stats"
	"github.com/ironveil/tactics/internal/game/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func poisonDef() *status.Status {
	return &status.Status{
		ID: "poison", Name: "Poison", Kind: status.KindDot,
		Value: 5, Duration: 3,
	}
}

func stunDef() *status.Status {
	return &status.Status{
		ID: "stun", Name: "Stun", Kind: status.KindDisable,
		Duration: 1, Restricts: []string{status.RestrictAct},
	}
}

func atkBuffDef() *status.Status {
	return &status.Status{
		ID: "war_cry", Name: "War Cry", Kind: status.KindBuff,
		Stat: stats.StatAttack, Value: 5, Duration: 2,
	}
}

// TestStatus_Validate_Kinds verifies kind-specific validation rules.
func TestStatus_Validate_Kinds(t *testing.T) {
	require.NoError(t, poisonDef().Validate())
	require.NoError(t, stunDef().Validate())
	require.NoError(t, atkBuffDef().Validate())

	bad := poisonDef()
	bad.Kind = status.Kind("curse")
	assert.Error(t, bad.Validate(), "unknown kind must fail")

	bad = atkBuffDef()
	bad.Stat = stats.Stat("luck")
	assert.Error(t, bad.Validate(), "buff with unknown stat must fail")

	bad = stunDef()
	bad.Restricts = []string{"dance"}
	assert.Error(t, bad.Validate(), "unknown restriction must fail")

	bad = poisonDef()
	bad.Duration = 0
	assert.Error(t, bad.Validate(), "zero duration must fail")
}

// TestList_Apply_PreservesStacking verifies re-applying a status appends a
// second independent instance instead of refreshing the first.
func TestList_Apply_PreservesStacking(t *testing.T) {
	l := status.NewList()
	def := poisonDef()
	require.NoError(t, l.Apply(def, 3, 5))
	require.NoError(t, l.Apply(def, 1, 5))

	assert.Equal(t, 2, l.Len(), "stacked instances coexist")
	assert.True(t, l.Has("poison"))

	expired := l.Tick()
	require.Len(t, expired, 1, "only the short instance expires")
	assert.Equal(t, 1, l.Len())
	assert.True(t, l.Has("poison"), "long instance remains")
}

// TestList_Apply_Preconditions verifies nil defs and non-positive
// durations are rejected.
func TestList_Apply_Preconditions(t *testing.T) {
	l := status.NewList()
	assert.Error(t, l.Apply(nil, 3, 5))
	assert.Error(t, l.Apply(poisonDef(), 0, 5))
	assert.Equal(t, 0, l.Len())
}

// TestList_Tick_RemovesAtZero verifies the removal invariant: instances
// leave the list exactly when Remaining reaches 0.
func TestList_Tick_RemovesAtZero(t *testing.T) {
	l := status.NewList()
	require.NoError(t, l.Apply(poisonDef(), 2, 5))

	expired := l.Tick()
	assert.Empty(t, expired)
	assert.Equal(t, 1, l.Len())

	expired = l.Tick()
	require.Len(t, expired, 1)
	assert.Equal(t, "poison", expired[0].Def.ID)
	assert.Equal(t, 0, l.Len())
}

// TestList_Recurring verifies only dot and hot instances tick damage or
// healing.
func TestList_Recurring(t *testing.T) {
	l := status.NewList()
	require.NoError(t, l.Apply(poisonDef(), 3, 5))
	require.NoError(t, l.Apply(atkBuffDef(), 2, 5))
	require.NoError(t, l.Apply(stunDef(), 1, 0))

	rec := l.Recurring()
	require.Len(t, rec, 1)
	assert.Equal(t, "poison", rec[0].Def.ID)
}

// TestList_StatDeltas verifies buffs add, debuffs subtract, and stacks
// accumulate.
func TestList_StatDeltas(t *testing.T) {
	l := status.NewList()
	buff := atkBuffDef()
	slow := &status.Status{
		ID: "chill", Name: "Chill", Kind: status.KindDebuff,
		Stat: stats.StatSpeed, Value: 3, Duration: 2,
	}
	require.NoError(t, l.Apply(buff, 2, 5))
	require.NoError(t, l.Apply(buff, 2, 5))
	require.NoError(t, l.Apply(slow, 2, 3))

	deltas := l.StatDeltas()
	assert.Equal(t, 10, deltas[stats.StatAttack], "two buff stacks sum")
	assert.Equal(t, -3, deltas[stats.StatSpeed])
}

// TestList_Restricts verifies disables are read per restricted action.
func TestList_Restricts(t *testing.T) {
	l := status.NewList()
	assert.False(t, l.Restricts(status.RestrictAct))

	require.NoError(t, l.Apply(stunDef(), 1, 0))
	assert.True(t, l.Restricts(status.RestrictAct))
	assert.False(t, l.Restricts(status.RestrictSkill))
}

// TestList_Tick_Property verifies that across arbitrary apply sequences,
// every surviving instance has positive Remaining and expired count plus
// survivors equals the applied total.
func TestList_Tick_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := status.NewList()
		def := poisonDef()
		durations := rapid.SliceOfN(rapid.IntRange(1, 5), 1, 10).Draw(rt, "durations")
		for _, d := range durations {
			require.NoError(rt, l.Apply(def, d, 5))
		}

		total := len(durations)
		removed := 0
		for round := 0; round < 6; round++ {
			removed += len(l.Tick())
			for _, a := range l.All() {
				assert.GreaterOrEqual(rt, a.Remaining, 1,
					"surviving instance must have positive Remaining")
			}
		}
		assert.Equal(rt, total, removed, "every instance expires within max duration")
		assert.Equal(rt, 0, l.Len())
	})
}

// TestLoadDirectory_ParsesYAML verifies a status file round-trips through
// the loader.
func TestLoadDirectory_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "burn.yaml"), `
id: burn
name: "Burn"
description: "Searing flames eat away at the victim."
kind: dot
value: 8
duration: 2
`)
	writeFile(t, filepath.Join(dir, "silence.yaml"), `
id: silence
name: "Silence"
kind: disable
duration: 2
restricts:
  - skill
`)
	reg, err := status.LoadDirectory(dir)
	require.NoError(t, err)

	burn, ok := reg.Get("burn")
	require.True(t, ok)
	assert.Equal(t, status.KindDot, burn.Kind)
	assert.Equal(t, 8, burn.Value)

	silence, ok := reg.Get("silence")
	require.True(t, ok)
	assert.Equal(t, []string{"skill"}, silence.Restricts)
	assert.Len(t, reg.All(), 2)
}

// TestLoadDirectory_RejectsInvalid verifies malformed definitions fail the
// load with the file named.
func TestLoadDirectory_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.yaml"), `
id: broken
name: "Broken"
kind: dot
value: 0
duration: 2
`)
	_, err := status.LoadDirectory(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}
