package ir

// Stable identifiers into the module and function arenas. Removing an entity
// never renumbers the survivors; freed slots are tombstoned instead.
type (
	FuncID   int32
	BlockID  int32
	InstrID  int32
	GlobalID int32
)

const (
	NoFuncID   FuncID   = -1
	NoBlockID  BlockID  = -1
	NoInstrID  InstrID  = -1
	NoGlobalID GlobalID = -1
)
