package opt

import (
	"slices"

	"cinder/internal/ir"
)

// prune deletes blocks that are unreachable (no predecessors, not the entry)
// and empty. Unreachable blocks that still hold instructions are left in
// place even when properly terminated; full unreachable-code elimination
// belongs to a CFG simplification pass, not here. An empty block appears in
// no predecessor list and branches nowhere, so its removal needs no edge
// repair.
func prune(m *ir.Module, f *ir.Func) bool {
	changed := false
	for _, bid := range slices.Clone(f.Blocks) {
		if bid == f.Entry {
			continue
		}
		bb := f.Block(bid)
		if bb == nil || len(bb.Preds) > 0 || !bb.Empty() {
			continue
		}
		if m.RemoveBlock(f, bid) {
			changed = true
		}
	}
	return changed
}
