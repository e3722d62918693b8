package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all engine.* Lua tables into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L with log and battle tables.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetGlobal("engine", engine)

	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "battle", m.battleModule(L))
}

// logModule builds engine.log with debug/info/warn/error functions routed to
// the Manager's zap logger.
func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	tbl := L.NewTable()
	bind := func(name string, sink func(string, ...zap.Field)) {
		L.SetField(tbl, name, L.NewFunction(func(L *lua.LState) int {
			sink(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	bind("debug", m.logger.Debug)
	bind("info", m.logger.Info)
	bind("warn", m.logger.Warn)
	bind("error", m.logger.Error)
	return tbl
}

// battleModule builds engine.battle, the read-only view of the running
// battle. Every function degrades to nil/0 when its callback is uninjected.
func (m *Manager) battleModule(L *lua.LState) *lua.LTable {
	tbl := L.NewTable()

	L.SetField(tbl, "combatant", L.NewFunction(func(L *lua.LState) int {
		if m.GetCombatant == nil {
			L.Push(lua.LNil)
			return 1
		}
		info := m.GetCombatant(L.CheckString(1))
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(combatantToTable(L, info))
		return 1
	}))

	L.SetField(tbl, "team", L.NewFunction(func(L *lua.LState) int {
		if m.TeamMembers == nil {
			L.Push(lua.LNil)
			return 1
		}
		arr := L.NewTable()
		for i, info := range m.TeamMembers(L.CheckString(1)) {
			arr.RawSetInt(i+1, combatantToTable(L, info))
		}
		L.Push(arr)
		return 1
	}))

	L.SetField(tbl, "living", L.NewFunction(func(L *lua.LState) int {
		if m.TeamMembers == nil {
			L.Push(lua.LNumber(0))
			return 1
		}
		n := 0
		for _, info := range m.TeamMembers(L.CheckString(1)) {
			if info.Alive {
				n++
			}
		}
		L.Push(lua.LNumber(n))
		return 1
	}))

	L.SetField(tbl, "round", L.NewFunction(func(L *lua.LState) int {
		if m.Round == nil {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(m.Round()))
		return 1
	}))

	return tbl
}

// combatantToTable converts a CombatantInfo snapshot into a Lua table.
// Row/col fields are present only while the combatant occupies a cell.
func combatantToTable(L *lua.LState, info *CombatantInfo) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "id", lua.LString(info.ID))
	L.SetField(tbl, "name", lua.LString(info.Name))
	L.SetField(tbl, "team", lua.LString(info.Team))
	L.SetField(tbl, "class", lua.LString(info.ClassID))
	L.SetField(tbl, "level", lua.LNumber(info.Level))
	L.SetField(tbl, "hp", lua.LNumber(info.HP))
	L.SetField(tbl, "max_hp", lua.LNumber(info.MaxHP))
	L.SetField(tbl, "mana", lua.LNumber(info.Mana))
	L.SetField(tbl, "max_mana", lua.LNumber(info.MaxMana))
	if info.Placed {
		L.SetField(tbl, "row", lua.LNumber(info.Row))
		L.SetField(tbl, "col", lua.LNumber(info.Col))
	}
	L.SetField(tbl, "alive", lua.LBool(info.Alive))
	L.SetField(tbl, "health", lua.LString(info.Health))
	return tbl
}
