package scripting

import (
	lua "github.com/yuin/gopher-lua"
)

// BattleHooks dispatches battle milestones to a stage's Lua script. It
// satisfies the combat session's Hooks contract without importing any game
// package.
//
// Script contract:
//
//	on_battle_start(stage)          -> string | {string, ...}
//	on_round_start(round)           -> string | {string, ...}
//	on_battle_end(victory, rounds)  -> number | string | {lines..., bonus = N}
//
// Every return value is optional; strings become narration lines in the
// battle log, and the battle-end number becomes a bonus currency award.
type BattleHooks struct {
	mgr *Manager
}

// NewBattleHooks wraps mgr for hook dispatch.
//
// Precondition: mgr must be non-nil.
func NewBattleHooks(mgr *Manager) *BattleHooks {
	if mgr == nil {
		panic("scripting: NewBattleHooks requires a non-nil Manager")
	}
	return &BattleHooks{mgr: mgr}
}

// OnBattleStart fires on_battle_start and returns its narration lines.
func (h *BattleHooks) OnBattleStart(stageID string) []string {
	ret, _ := h.mgr.CallHook(stageID, "on_battle_start", lua.LString(stageID))
	return linesFrom(ret)
}

// OnRoundStart fires on_round_start for the freshly begun round.
func (h *BattleHooks) OnRoundStart(stageID string, round int) []string {
	ret, _ := h.mgr.CallHook(stageID, "on_round_start", lua.LNumber(round))
	return linesFrom(ret)
}

// OnBattleEnd fires on_battle_end and returns its narration lines plus any
// bonus currency the script awards.
func (h *BattleHooks) OnBattleEnd(stageID string, victory bool, rounds int) ([]string, int) {
	ret, _ := h.mgr.CallHook(stageID, "on_battle_end", lua.LBool(victory), lua.LNumber(rounds))
	switch v := ret.(type) {
	case lua.LNumber:
		return nil, int(v)
	case *lua.LTable:
		bonus := 0
		if n, ok := v.RawGetString("bonus").(lua.LNumber); ok {
			bonus = int(n)
		}
		return linesFrom(v), bonus
	default:
		return linesFrom(ret), 0
	}
}

// linesFrom collects narration lines from a hook return value: a string is
// one line, a table contributes its array-part string entries, anything else
// yields none.
func linesFrom(v lua.LValue) []string {
	switch val := v.(type) {
	case lua.LString:
		return []string{string(val)}
	case *lua.LTable:
		var lines []string
		for i := 1; ; i++ {
			entry := val.RawGetInt(i)
			if entry == lua.LNil {
				break
			}
			if s, ok := entry.(lua.LString); ok {
				lines = append(lines, string(s))
			}
		}
		return lines
	default:
		return nil
	}
}
