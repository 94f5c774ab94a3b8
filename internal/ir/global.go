package ir

// Global is a module-level mutable variable.
type Global struct {
	ID   GlobalID
	Name string
}
