// Package purity decides whether functions are free of externally
// observable side effects. The dead-code pass consults these facts before
// it may treat an unused call as removable.
package purity

import (
	"cinder/internal/ir"
)

// Facts holds per-function purity answers for one module snapshot.
// Valid only for the module state at Analyze time; rerun after functions
// are added or bodies change.
type Facts struct {
	pure []bool
}

// IsPure reports whether the function has no observable effect beyond its
// return value. Unknown or removed functions answer false.
func (f *Facts) IsPure(id ir.FuncID) bool {
	if f == nil || id < 0 || int(id) >= len(f.pure) {
		return false
	}
	return f.pure[id]
}

// Analyze computes purity facts for every function in the module.
//
// The analysis is pessimistic: declarations are never pure, and a defined
// function is impure if its body contains a store, a call through an
// unresolved operand, or a call to a declaration or impure function.
// Impurity propagates through the call graph until a fixpoint; recursive
// cycles that contain no impure instruction settle as pure.
//
// Functions in assumePure are treated as pure callees even when declared
// without a body. This affects propagation only: the dead-code pass still
// refuses to delete direct calls to declarations.
func Analyze(m *ir.Module, assumePure ...string) *Facts {
	assumed := make(map[string]struct{}, len(assumePure))
	for _, name := range assumePure {
		assumed[name] = struct{}{}
	}

	pure := make([]bool, len(m.Funcs))
	for id, f := range m.Funcs {
		if f == nil {
			continue
		}
		if f.IsDecl {
			_, ok := assumed[f.Name]
			pure[id] = ok
			continue
		}
		pure[id] = true
	}

	for changed := true; changed; {
		changed = false
		for id, f := range m.Funcs {
			if f == nil || f.IsDecl || !pure[id] {
				continue
			}
			if hasImpureInstr(f, pure) {
				pure[id] = false
				changed = true
			}
		}
	}

	// Assumed-pure declarations are a propagation device only; the facts
	// handed to callers must still answer false for declarations.
	for id, f := range m.Funcs {
		if f != nil && f.IsDecl {
			pure[id] = false
		}
	}
	return &Facts{pure: pure}
}

func hasImpureInstr(f *ir.Func, pure []bool) bool {
	for _, bid := range f.Blocks {
		for _, id := range f.Block(bid).Instrs {
			in := f.Instr(id)
			if in == nil {
				continue
			}
			switch in.Kind {
			case ir.InstrStore:
				return true
			case ir.InstrCall:
				callee := in.Call.Callee
				if callee.Kind != ir.OperandFunc {
					return true
				}
				if callee.Func < 0 || int(callee.Func) >= len(pure) || !pure[callee.Func] {
					return true
				}
			}
		}
	}
	return false
}
