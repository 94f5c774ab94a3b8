package ir

import (
	"fmt"

	"fortio.org/safecast"
)

// UseRef identifies a single call/reference site of a function or global:
// the instruction at Instr inside function Func.
type UseRef struct {
	Func  FuncID
	Instr InstrID
}

// Module owns all functions and global variables. FuncID and GlobalID are
// indices into the respective slices; removed entities leave a nil slot so
// identifiers stay stable.
type Module struct {
	Name    string
	Funcs   []*Func
	Globals []*Global

	funcByName   map[string]FuncID
	globalByName map[string]GlobalID

	funcUses   []map[UseRef]struct{}
	globalUses []map[UseRef]struct{}
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{
		Name:         name,
		funcByName:   make(map[string]FuncID),
		globalByName: make(map[string]GlobalID),
	}
}

// AddFunc registers a function and assigns its ID.
func (m *Module) AddFunc(f *Func) FuncID {
	n, err := safecast.Conv[int32](len(m.Funcs))
	if err != nil {
		panic(fmt.Errorf("function count overflow: %w", err))
	}
	id := FuncID(n)
	f.ID = id
	m.Funcs = append(m.Funcs, f)
	m.funcUses = append(m.funcUses, nil)
	m.funcByName[f.Name] = id
	return id
}

// AddGlobal registers a global variable and assigns its ID.
func (m *Module) AddGlobal(name string) GlobalID {
	n, err := safecast.Conv[int32](len(m.Globals))
	if err != nil {
		panic(fmt.Errorf("global count overflow: %w", err))
	}
	id := GlobalID(n)
	m.Globals = append(m.Globals, &Global{ID: id, Name: name})
	m.globalUses = append(m.globalUses, nil)
	m.globalByName[name] = id
	return id
}

// Func returns the function for id, or nil when removed or out of range.
func (m *Module) Func(id FuncID) *Func {
	if id < 0 || int(id) >= len(m.Funcs) {
		return nil
	}
	return m.Funcs[id]
}

// Global returns the global for id, or nil when removed or out of range.
func (m *Module) Global(id GlobalID) *Global {
	if id < 0 || int(id) >= len(m.Globals) {
		return nil
	}
	return m.Globals[id]
}

// FuncByName resolves a function by name.
func (m *Module) FuncByName(name string) (FuncID, bool) {
	id, ok := m.funcByName[name]
	return id, ok
}

// GlobalByName resolves a global by name.
func (m *Module) GlobalByName(name string) (GlobalID, bool) {
	id, ok := m.globalByName[name]
	return id, ok
}

// FuncHasUses reports whether any instruction references the function.
func (m *Module) FuncHasUses(id FuncID) bool {
	if id < 0 || int(id) >= len(m.funcUses) {
		return false
	}
	return len(m.funcUses[id]) > 0
}

// GlobalHasUses reports whether any instruction references the global.
func (m *Module) GlobalHasUses(id GlobalID) bool {
	if id < 0 || int(id) >= len(m.globalUses) {
		return false
	}
	return len(m.globalUses[id]) > 0
}

// FuncUseCount returns the number of recorded reference sites.
func (m *Module) FuncUseCount(id FuncID) int {
	if id < 0 || int(id) >= len(m.funcUses) {
		return 0
	}
	return len(m.funcUses[id])
}

func (m *Module) addFuncUse(id FuncID, ref UseRef) {
	if m.funcUses[id] == nil {
		m.funcUses[id] = make(map[UseRef]struct{}, 2)
	}
	m.funcUses[id][ref] = struct{}{}
}

func (m *Module) removeFuncUse(id FuncID, ref UseRef) {
	if id < 0 || int(id) >= len(m.funcUses) {
		return
	}
	delete(m.funcUses[id], ref)
}

func (m *Module) addGlobalUse(id GlobalID, ref UseRef) {
	if m.globalUses[id] == nil {
		m.globalUses[id] = make(map[UseRef]struct{}, 2)
	}
	m.globalUses[id][ref] = struct{}{}
}

func (m *Module) removeGlobalUse(id GlobalID, ref UseRef) {
	if id < 0 || int(id) >= len(m.globalUses) {
		return
	}
	delete(m.globalUses[id], ref)
}
