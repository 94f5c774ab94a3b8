package ir

// BinOp enumerates two-operand arithmetic and comparison operators.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var binOpNames = [...]string{
	OpAdd: "add",
	OpSub: "sub",
	OpMul: "mul",
	OpDiv: "div",
	OpRem: "rem",
	OpAnd: "and",
	OpOr:  "or",
	OpXor: "xor",
	OpShl: "shl",
	OpShr: "shr",
	OpEq:  "eq",
	OpNe:  "ne",
	OpLt:  "lt",
	OpLe:  "le",
	OpGt:  "gt",
	OpGe:  "ge",
}

func (op BinOp) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return "bad_binop"
}

// ParseBinOp maps a mnemonic to its BinOp.
func ParseBinOp(s string) (BinOp, bool) {
	for op, name := range binOpNames {
		if name == s {
			return BinOp(op), true //nolint:gosec // G115: bounded by table length
		}
	}
	return 0, false
}

// UnOp enumerates single-operand operators.
type UnOp uint8

const (
	OpNeg UnOp = iota
	OpNot
)

func (op UnOp) String() string {
	switch op {
	case OpNeg:
		return "neg"
	case OpNot:
		return "not"
	}
	return "bad_unop"
}

// ParseUnOp maps a mnemonic to its UnOp.
func ParseUnOp(s string) (UnOp, bool) {
	switch s {
	case "neg":
		return OpNeg, true
	case "not":
		return OpNot, true
	}
	return 0, false
}
