package opt

import (
	"cinder/internal/ir"
	"cinder/internal/purity"
)

// mark computes the live set of f: every critical instruction plus everything
// a critical instruction transitively depends on through operand edges.
//
// The worklist is FIFO so traversal order is deterministic; correctness does
// not depend on the order. Marking only reads the graph: use-lists are
// trusted here precisely because the sweep phase never runs concurrently
// with it.
func mark(m *ir.Module, facts *purity.Facts, f *ir.Func) map[ir.InstrID]struct{} {
	live := make(map[ir.InstrID]struct{})
	var work []ir.InstrID

	for _, bid := range f.Blocks {
		for _, id := range f.Block(bid).Instrs {
			if Critical(m, facts, f, id) {
				live[id] = struct{}{}
				work = append(work, id)
			}
		}
	}

	var ops []ir.Operand
	for len(work) > 0 {
		id := work[0]
		work = work[1:]
		in := f.Instr(id)
		if in == nil {
			continue
		}
		ops = in.AppendOperands(ops[:0])
		for _, op := range ops {
			if op.Kind != ir.OperandInstr {
				continue
			}
			dep := op.Instr
			if _, ok := live[dep]; ok {
				continue
			}
			if f.Instr(dep) == nil {
				continue
			}
			live[dep] = struct{}{}
			work = append(work, dep)
		}
	}
	return live
}
