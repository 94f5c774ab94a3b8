package ir

// Block is a basic block: an ordered list of instruction IDs plus the set of
// predecessor blocks. Instruction storage lives in the function's arena.
type Block struct {
	ID     BlockID
	Label  string
	Instrs []InstrID
	Preds  []BlockID
}

// Empty reports whether the block holds no instructions.
func (b *Block) Empty() bool {
	return len(b.Instrs) == 0
}

// HasPred reports whether p is a recorded predecessor.
func (b *Block) HasPred(p BlockID) bool {
	for _, id := range b.Preds {
		if id == p {
			return true
		}
	}
	return false
}
