package ir

// Mutation entry points used by the optimization passes. Every removal keeps
// forward operand edges and backward use-list edges consistent: an
// instruction is first detached from the use-lists of everything it
// references, then unlinked from its block and tombstoned in the arena.

// DetachOperands removes id from the use-lists of every value it references
// as an operand. The operand payload itself is left in place; RemoveInstr
// clears it.
func (m *Module) DetachOperands(f *Func, id InstrID) {
	in := f.Instr(id)
	if in == nil {
		return
	}
	ref := UseRef{Func: f.ID, Instr: id}
	for _, op := range in.AppendOperands(nil) {
		switch op.Kind {
		case OperandInstr:
			f.removeUse(op.Instr, id)
		case OperandFunc:
			m.removeFuncUse(op.Func, ref)
		case OperandGlobal:
			m.removeGlobalUse(op.Global, ref)
		}
	}
}

// RemoveInstr unlinks id from its parent block and frees the arena slot.
// Callers must detach operands first; the slot is cleared so a stale InstrID
// can never resolve to the removed instruction again.
func (m *Module) RemoveInstr(f *Func, id InstrID) {
	in := f.Instr(id)
	if in == nil {
		return
	}
	if bb := f.Block(in.Parent); bb != nil {
		for i, cur := range bb.Instrs {
			if cur == id {
				bb.Instrs = append(bb.Instrs[:i], bb.Instrs[i+1:]...)
				break
			}
		}
	}
	f.arena[id] = Instr{Kind: InstrInvalid, Parent: NoBlockID}
}

// RemoveBlock deletes an empty block from the function layout. Blocks with
// instructions are never removed through this path.
func (m *Module) RemoveBlock(f *Func, id BlockID) bool {
	bb := f.Block(id)
	if bb == nil || !bb.Empty() {
		return false
	}
	for i, cur := range f.Blocks {
		if cur == id {
			f.Blocks = append(f.Blocks[:i], f.Blocks[i+1:]...)
			bb.Preds = nil
			return true
		}
	}
	return false
}

// RemoveFunc deletes a function from the module, detaching every reference
// its body holds to other functions and globals so their use-lists shrink.
// The caller is responsible for checking the function's own use-list.
func (m *Module) RemoveFunc(id FuncID) {
	f := m.Func(id)
	if f == nil {
		return
	}
	for _, bid := range f.Blocks {
		bb := f.Block(bid)
		for _, iid := range bb.Instrs {
			m.DetachOperands(f, iid)
		}
	}
	delete(m.funcByName, f.Name)
	m.Funcs[id] = nil
	m.funcUses[id] = nil
}

// RemoveGlobal deletes a global variable from the module.
func (m *Module) RemoveGlobal(id GlobalID) {
	g := m.Global(id)
	if g == nil {
		return
	}
	delete(m.globalByName, g.Name)
	m.Globals[id] = nil
	m.globalUses[id] = nil
}
