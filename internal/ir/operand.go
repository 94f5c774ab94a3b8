package ir

// OperandKind distinguishes operand variants.
type OperandKind uint8

const (
	// OperandConst represents an integer constant.
	OperandConst OperandKind = iota
	// OperandInstr represents the result of another instruction.
	OperandInstr
	// OperandParam represents a function parameter.
	OperandParam
	// OperandFunc represents a reference to a function.
	OperandFunc
	// OperandGlobal represents a reference to a global variable.
	OperandGlobal
)

// Operand is a closed tagged variant over everything an instruction can
// reference. Only the field matching Kind is meaningful.
type Operand struct {
	Kind   OperandKind
	Const  int64
	Instr  InstrID
	Param  int
	Func   FuncID
	Global GlobalID
}

// Const returns a constant operand.
func Const(v int64) Operand {
	return Operand{Kind: OperandConst, Const: v}
}

// Ref returns an operand referencing another instruction's result.
func Ref(id InstrID) Operand {
	return Operand{Kind: OperandInstr, Instr: id}
}

// ParamRef returns an operand referencing parameter i.
func ParamRef(i int) Operand {
	return Operand{Kind: OperandParam, Param: i}
}

// FuncRef returns an operand referencing a function.
func FuncRef(id FuncID) Operand {
	return Operand{Kind: OperandFunc, Func: id}
}

// GlobalRef returns an operand referencing a global variable.
func GlobalRef(id GlobalID) Operand {
	return Operand{Kind: OperandGlobal, Global: id}
}
