// Package testkit holds invariant checks shared by pass tests.
package testkit

import (
	"testing"

	"cinder/internal/ir"
	"cinder/internal/opt"
	"cinder/internal/purity"
)

// CheckConsistent fails the test when the module violates structural
// invariants: terminated blocks, valid branch targets, and bidirectionally
// consistent operand and use-list edges.
func CheckConsistent(t *testing.T, m *ir.Module) {
	t.Helper()
	if err := ir.Validate(m); err != nil {
		t.Fatalf("module invariants violated: %v", err)
	}
}

// CheckSound fails the test when any remaining instruction of f is neither
// critical nor reachable via operand edges from a critical instruction.
// Everything a finished dead-code run leaves behind must pass this.
func CheckSound(t *testing.T, m *ir.Module, facts *purity.Facts, f *ir.Func) {
	t.Helper()
	live := make(map[ir.InstrID]struct{})
	var work []ir.InstrID
	for _, bid := range f.Blocks {
		for _, id := range f.Block(bid).Instrs {
			if opt.Critical(m, facts, f, id) {
				live[id] = struct{}{}
				work = append(work, id)
			}
		}
	}
	for len(work) > 0 {
		id := work[0]
		work = work[1:]
		in := f.Instr(id)
		if in == nil {
			continue
		}
		for _, op := range in.AppendOperands(nil) {
			if op.Kind != ir.OperandInstr {
				continue
			}
			if _, ok := live[op.Instr]; ok {
				continue
			}
			live[op.Instr] = struct{}{}
			work = append(work, op.Instr)
		}
	}
	for _, bid := range f.Blocks {
		for _, id := range f.Block(bid).Instrs {
			if _, ok := live[id]; !ok {
				t.Errorf("function @%s: %s survives but is neither critical nor needed by anything critical",
					f.Name, ir.FormatInstr(m, f, id))
			}
		}
	}
}

// TerminatorKinds records each layout block's terminator kind, keyed by
// block ID. Unterminated blocks are absent from the map.
func TerminatorKinds(f *ir.Func) map[ir.BlockID]ir.InstrKind {
	kinds := make(map[ir.BlockID]ir.InstrKind)
	for _, bid := range f.Blocks {
		if tid := f.Terminator(bid); tid != ir.NoInstrID {
			kinds[bid] = f.Instr(tid).Kind
		}
	}
	return kinds
}

// CheckTerminatorsPreserved fails the test when a block recorded in before
// no longer ends with a terminator of the same kind. Blocks pruned from the
// layout are exempt.
func CheckTerminatorsPreserved(t *testing.T, f *ir.Func, before map[ir.BlockID]ir.InstrKind) {
	t.Helper()
	inLayout := make(map[ir.BlockID]struct{}, len(f.Blocks))
	for _, bid := range f.Blocks {
		inLayout[bid] = struct{}{}
	}
	for bid, want := range before {
		if _, ok := inLayout[bid]; !ok {
			continue
		}
		tid := f.Terminator(bid)
		if tid == ir.NoInstrID {
			t.Errorf("function @%s: block %q lost its terminator", f.Name, f.Block(bid).Label)
			continue
		}
		if got := f.Instr(tid).Kind; got != want {
			t.Errorf("function @%s: block %q terminator changed kind: got %d, want %d",
				f.Name, f.Block(bid).Label, got, want)
		}
	}
}
