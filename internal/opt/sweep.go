package opt

import (
	"cinder/internal/ir"
)

// sweep removes every non-terminator instruction of f that is absent from
// live. Classification finishes before the first mutation: the batch is
// collected over a stable view of every block, then deleted in one go, so
// block iteration never races with removal and use-lists shrink in a single
// coherent step.
//
// Blocks that are non-empty but lack a terminator are malformed input; they
// are skipped whole rather than partially edited.
func (p *DeadCode) sweep(f *ir.Func, live map[ir.InstrID]struct{}) bool {
	var batch []ir.InstrID
	for _, bid := range f.Blocks {
		bb := f.Block(bid)
		if !f.Terminated(bid) {
			if !bb.Empty() {
				p.reportMalformed(f, bb)
			}
			continue
		}
		for _, id := range bb.Instrs {
			in := f.Instr(id)
			if in == nil || in.IsTerminator() {
				continue
			}
			if _, ok := live[id]; !ok {
				batch = append(batch, id)
			}
		}
	}

	for _, id := range batch {
		p.mod.DetachOperands(f, id)
		p.mod.RemoveInstr(f, id)
		p.erased++
	}
	return len(batch) > 0
}
