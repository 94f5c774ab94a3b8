package ir

// InstrKind enumerates instruction kinds.
type InstrKind uint8

const (
	// InstrInvalid marks a freed arena slot.
	InstrInvalid InstrKind = iota
	// InstrBinOp represents a two-operand arithmetic or comparison instruction.
	InstrBinOp
	// InstrUnOp represents a single-operand arithmetic instruction.
	InstrUnOp
	// InstrLoad represents a memory load.
	InstrLoad
	// InstrStore represents a memory store.
	InstrStore
	// InstrCall represents a function call.
	InstrCall
	// InstrPhi represents an SSA phi node.
	InstrPhi
	// InstrRet represents a return terminator.
	InstrRet
	// InstrBr represents an unconditional branch terminator.
	InstrBr
	// InstrCondBr represents a two-way conditional branch terminator.
	InstrCondBr
)

// Instr is a single IR instruction stored in a function's arena.
type Instr struct {
	Kind   InstrKind
	Parent BlockID
	Name   string // SSA result name without the leading %, "" if unnamed

	BinOp  BinOpInstr
	UnOp   UnOpInstr
	Load   LoadInstr
	Store  StoreInstr
	Call   CallInstr
	Phi    PhiInstr
	Ret    RetInstr
	Br     BrInstr
	CondBr CondBrInstr

	uses map[InstrID]struct{} // instructions consuming this result
}

// BinOpInstr represents a two-operand instruction.
type BinOpInstr struct {
	Op    BinOp
	Left  Operand
	Right Operand
}

// UnOpInstr represents a single-operand instruction.
type UnOpInstr struct {
	Op    UnOp
	Value Operand
}

// LoadInstr reads a value from an addressable operand.
type LoadInstr struct {
	Addr Operand
}

// StoreInstr writes a value through an addressable operand.
type StoreInstr struct {
	Value Operand
	Addr  Operand
}

// CallInstr calls the callee operand with the given arguments.
// A callee that is not an OperandFunc is an unresolved (indirect) call.
type CallInstr struct {
	Callee Operand
	Args   []Operand
}

// PhiEdge is one incoming value of a phi node.
type PhiEdge struct {
	Value Operand
	From  BlockID
}

// PhiInstr merges values flowing in from predecessor blocks.
type PhiInstr struct {
	Incoming []PhiEdge
}

// RetInstr returns from the enclosing function.
type RetInstr struct {
	HasValue bool
	Value    Operand
}

// BrInstr branches unconditionally to Target.
type BrInstr struct {
	Target BlockID
}

// CondBrInstr branches to Then or Else based on Cond.
type CondBrInstr struct {
	Cond Operand
	Then BlockID
	Else BlockID
}

// IsTerminator reports whether the instruction ends a basic block.
func (in *Instr) IsTerminator() bool {
	switch in.Kind {
	case InstrRet, InstrBr, InstrCondBr:
		return true
	}
	return false
}

// IsRet reports whether the instruction is a return.
func (in *Instr) IsRet() bool { return in.Kind == InstrRet }

// IsBr reports whether the instruction is a branch, conditional or not.
func (in *Instr) IsBr() bool { return in.Kind == InstrBr || in.Kind == InstrCondBr }

// IsStore reports whether the instruction is a store.
func (in *Instr) IsStore() bool { return in.Kind == InstrStore }

// IsCall reports whether the instruction is a call.
func (in *Instr) IsCall() bool { return in.Kind == InstrCall }

// AppendOperands appends the instruction's operands to dst and returns it.
// The order is stable and matches the printed form.
func (in *Instr) AppendOperands(dst []Operand) []Operand {
	switch in.Kind {
	case InstrBinOp:
		dst = append(dst, in.BinOp.Left, in.BinOp.Right)
	case InstrUnOp:
		dst = append(dst, in.UnOp.Value)
	case InstrLoad:
		dst = append(dst, in.Load.Addr)
	case InstrStore:
		dst = append(dst, in.Store.Value, in.Store.Addr)
	case InstrCall:
		dst = append(dst, in.Call.Callee)
		dst = append(dst, in.Call.Args...)
	case InstrPhi:
		for _, e := range in.Phi.Incoming {
			dst = append(dst, e.Value)
		}
	case InstrRet:
		if in.Ret.HasValue {
			dst = append(dst, in.Ret.Value)
		}
	case InstrCondBr:
		dst = append(dst, in.CondBr.Cond)
	}
	return dst
}

// NumOperands returns the operand count.
func (in *Instr) NumOperands() int {
	switch in.Kind {
	case InstrBinOp, InstrStore:
		return 2
	case InstrUnOp, InstrLoad, InstrCondBr:
		return 1
	case InstrCall:
		return 1 + len(in.Call.Args)
	case InstrPhi:
		return len(in.Phi.Incoming)
	case InstrRet:
		if in.Ret.HasValue {
			return 1
		}
	}
	return 0
}

// HasResult reports whether the instruction produces an SSA value.
func (in *Instr) HasResult() bool {
	switch in.Kind {
	case InstrBinOp, InstrUnOp, InstrLoad, InstrCall, InstrPhi:
		return true
	}
	return false
}
