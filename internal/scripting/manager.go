package scripting

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// CombatantInfo is a snapshot of a combatant's state passed to Lua callbacks.
type CombatantInfo struct {
	ID      string
	Name    string
	Team    string
	ClassID string
	Level   int
	HP      int
	MaxHP   int
	Mana    int
	MaxMana int
	// Row/Col are valid only while Placed is true; defeated combatants
	// leave the board.
	Row    int
	Col    int
	Placed bool
	Alive  bool
	// Health is the human-readable health band ("lightly wounded", ...).
	Health string
}

// stageVM pairs a sandboxed LState with the mutex serializing calls into it.
// An LState is single-threaded; concurrent hooks on one stage must queue.
type stageVM struct {
	mu     sync.Mutex
	L      *lua.LState
	cancel func()
}

// Manager owns one sandboxed LState per stage and exposes hook dispatch.
//
// Manager is safe for concurrent CallHook after all LoadStage calls complete.
// The map lock protects registration; each stage VM carries its own mutex, so
// hooks on different stages run concurrently while calls into one stage queue.
type Manager struct {
	mu     sync.RWMutex
	states map[string]*stageVM
	logger *zap.Logger

	// Injected after construction. nil = no-op in engine.* modules.
	GetCombatant func(id string) *CombatantInfo
	TeamMembers  func(team string) []*CombatantInfo
	Round        func() int
}

// NewManager creates a Manager.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager with an empty stage map.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting: NewManager requires a non-nil logger")
	}
	return &Manager{
		states: make(map[string]*stageVM),
		logger: logger,
	}
}

// LoadStage creates a sandboxed VM for stageID, registers all engine.*
// modules, then executes the stage's script file.
//
// Precondition: stageID must be non-empty; scriptPath must be a readable
// Lua file.
// Postcondition: Stage VM is registered; returns error on Lua load failure.
func (m *Manager) LoadStage(stageID, scriptPath string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	if err := L.DoFile(scriptPath); err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: loading %q for stage %q: %w", scriptPath, stageID, err)
	}

	m.mu.Lock()
	if old, ok := m.states[stageID]; ok {
		old.mu.Lock()
		old.cancel()
		old.L.Close()
		old.mu.Unlock()
	}
	m.states[stageID] = &stageVM{L: L, cancel: cancel}
	m.mu.Unlock()
	return nil
}

// CallHook calls the named Lua global function in stageID's VM. Returns
// (LNil, nil) if the hook is not defined or no VM exists for the stage. Lua
// runtime errors are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(stageID, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	vm, ok := m.states[stageID]
	m.mu.RUnlock()

	if !ok {
		m.logger.Info("scripting: no VM for stage",
			zap.String("stage", stageID),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	L := vm.L
	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("stage", stageID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases every stage VM. The Manager must not be used afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, vm := range m.states {
		vm.mu.Lock()
		vm.cancel()
		vm.L.Close()
		vm.mu.Unlock()
		delete(m.states, id)
	}
}
