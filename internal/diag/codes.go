package diag

import "fmt"

// Code is a compact, stable identifier for a diagnostic class.
type Code uint16

const (
	// UnknownCode marks diagnostics without an assigned class.
	UnknownCode Code = 0

	// IR text parsing.
	ParseInfo             Code = 1000
	ParseUnexpectedLine   Code = 1001
	ParseBadOperand       Code = 1002
	ParseUnknownMnemonic  Code = 1003
	ParseDuplicateName    Code = 1004
	ParseUndefinedName    Code = 1005
	ParseUnclosedFunc     Code = 1006
	ParseBadArity         Code = 1007
	ParseStrayInstruction Code = 1008

	// IR structure.
	IRInfo              Code = 2000
	IRUnterminatedBlock Code = 2001
	IRMissingEntry      Code = 2002
	IRBadTarget         Code = 2003
	IRUseListMismatch   Code = 2004

	// Optimization passes.
	OptInfo               Code = 3000
	OptMalformedBlockSkip Code = 3001
)

func (c Code) String() string {
	return fmt.Sprintf("C%04d", uint16(c))
}
