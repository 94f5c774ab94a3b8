package ir

import (
	"fmt"

	"fortio.org/safecast"
)

// Param is a function parameter.
type Param struct {
	Name string
}

// Func is a function: an ordered block layout over a block arena, plus an
// instruction arena addressed by InstrID. Declarations have no blocks.
type Func struct {
	ID     FuncID
	Name   string
	Params []Param
	IsDecl bool
	Entry  BlockID

	Blocks []BlockID // layout order; pruning removes entries, arena slots stay

	blocks []Block
	arena  []Instr
}

// NewFunc creates a function with no blocks. Entry is assigned by the first
// NewBlock call.
func NewFunc(name string, params []Param, decl bool) *Func {
	return &Func{
		ID:     NoFuncID,
		Name:   name,
		Params: params,
		IsDecl: decl,
		Entry:  NoBlockID,
	}
}

// NewBlock appends a fresh block to the arena and the layout.
func (f *Func) NewBlock(label string) BlockID {
	n, err := safecast.Conv[int32](len(f.blocks))
	if err != nil {
		panic(fmt.Errorf("block count overflow: %w", err))
	}
	id := BlockID(n)
	f.blocks = append(f.blocks, Block{ID: id, Label: label})
	f.Blocks = append(f.Blocks, id)
	if f.Entry == NoBlockID {
		f.Entry = id
	}
	return id
}

// Block returns the block for id, or nil when id is out of range.
func (f *Func) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(f.blocks) {
		return nil
	}
	return &f.blocks[id]
}

// Instr returns the instruction for id, or nil when id is out of range or
// the slot has been freed.
func (f *Func) Instr(id InstrID) *Instr {
	if id < 0 || int(id) >= len(f.arena) {
		return nil
	}
	in := &f.arena[id]
	if in.Kind == InstrInvalid {
		return nil
	}
	return in
}

// NumInstrs returns the number of live instructions across all blocks in
// the current layout.
func (f *Func) NumInstrs() int {
	n := 0
	for _, bid := range f.Blocks {
		n += len(f.blocks[bid].Instrs)
	}
	return n
}

// HasUses reports whether any instruction consumes the result of id.
func (f *Func) HasUses(id InstrID) bool {
	if id < 0 || int(id) >= len(f.arena) {
		return false
	}
	return len(f.arena[id].uses) > 0
}

// UseCount returns the number of distinct users of id.
func (f *Func) UseCount(id InstrID) int {
	if id < 0 || int(id) >= len(f.arena) {
		return 0
	}
	return len(f.arena[id].uses)
}

// Terminated reports whether the block ends with a terminator instruction.
// Empty blocks are not terminated.
func (f *Func) Terminated(id BlockID) bool {
	bb := f.Block(id)
	if bb == nil || bb.Empty() {
		return false
	}
	last := f.Instr(bb.Instrs[len(bb.Instrs)-1])
	return last != nil && last.IsTerminator()
}

// Terminator returns the block's terminator instruction ID, or NoInstrID.
func (f *Func) Terminator(id BlockID) InstrID {
	if !f.Terminated(id) {
		return NoInstrID
	}
	bb := f.Block(id)
	return bb.Instrs[len(bb.Instrs)-1]
}

// appendInstr allocates an arena slot and links it into the block.
func (f *Func) appendInstr(bb BlockID, in Instr) InstrID {
	n, err := safecast.Conv[int32](len(f.arena))
	if err != nil {
		panic(fmt.Errorf("instruction count overflow: %w", err))
	}
	id := InstrID(n)
	in.Parent = bb
	f.arena = append(f.arena, in)
	b := f.Block(bb)
	b.Instrs = append(b.Instrs, id)
	return id
}

func (f *Func) addUse(used, user InstrID) {
	in := &f.arena[used]
	if in.uses == nil {
		in.uses = make(map[InstrID]struct{}, 2)
	}
	in.uses[user] = struct{}{}
}

func (f *Func) removeUse(used, user InstrID) {
	if used < 0 || int(used) >= len(f.arena) {
		return
	}
	delete(f.arena[used].uses, user)
}
