package opt

import (
	"cinder/internal/ir"
)

// CollectGlobals removes every function and global variable whose use-list
// is empty. The function named entry is always retained regardless of its
// use count.
//
// This is a single snapshot pass: eligibility is decided against the
// use-list state on entry, then the whole batch is removed. Removing a dead
// function detaches the references its body held, so a callee that becomes
// unreferenced only through this batch is collected by the NEXT invocation,
// not this one. Callers wanting multi-hop chains collected must call again
// until the returned counts are zero.
func CollectGlobals(m *ir.Module, entry string) (funcs, globals int) {
	var deadFuncs []ir.FuncID
	for _, f := range m.Funcs {
		if f == nil || f.Name == entry {
			continue
		}
		if !m.FuncHasUses(f.ID) {
			deadFuncs = append(deadFuncs, f.ID)
		}
	}
	var deadGlobals []ir.GlobalID
	for _, g := range m.Globals {
		if g == nil {
			continue
		}
		if !m.GlobalHasUses(g.ID) {
			deadGlobals = append(deadGlobals, g.ID)
		}
	}

	for _, id := range deadFuncs {
		m.RemoveFunc(id)
		funcs++
	}
	for _, id := range deadGlobals {
		m.RemoveGlobal(id)
		globals++
	}
	return funcs, globals
}
