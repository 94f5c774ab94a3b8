package ir

import (
	"errors"
	"fmt"
)

// Validate checks module invariants.
// Returns a joined error listing every violation.
func Validate(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := validateFunc(m, f); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

func validateFunc(m *Module, f *Func) error {
	if f.IsDecl {
		if len(f.Blocks) > 0 {
			return errors.New("declaration has blocks")
		}
		return nil
	}

	var errs []error

	if f.Block(f.Entry) == nil {
		errs = append(errs, fmt.Errorf("entry block bb%d does not exist", f.Entry))
	} else if !inLayout(f, f.Entry) {
		errs = append(errs, fmt.Errorf("entry block bb%d not in layout", f.Entry))
	}

	for _, bid := range f.Blocks {
		bb := f.Block(bid)
		if bb == nil {
			errs = append(errs, fmt.Errorf("layout references missing block bb%d", bid))
			continue
		}
		errs = append(errs, validateBlock(m, f, bb)...)
	}

	if err := validateUseLists(f); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateBlock(m *Module, f *Func, bb *Block) []error {
	var errs []error

	if !bb.Empty() && !f.Terminated(bb.ID) {
		errs = append(errs, fmt.Errorf("bb%d: unterminated block", bb.ID))
	}

	for i, id := range bb.Instrs {
		in := f.Instr(id)
		if in == nil {
			errs = append(errs, fmt.Errorf("bb%d: freed instruction slot %%v%d still linked", bb.ID, id))
			continue
		}
		if in.Parent != bb.ID {
			errs = append(errs, fmt.Errorf("bb%d: %%v%d has parent bb%d", bb.ID, id, in.Parent))
		}
		if in.IsTerminator() && i != len(bb.Instrs)-1 {
			errs = append(errs, fmt.Errorf("bb%d: terminator %%v%d not in tail position", bb.ID, id))
		}
		errs = append(errs, validateOperands(m, f, bb, id, in)...)

		switch in.Kind {
		case InstrBr:
			if !inLayout(f, in.Br.Target) {
				errs = append(errs, fmt.Errorf("bb%d: branch to missing block bb%d", bb.ID, in.Br.Target))
			}
		case InstrCondBr:
			for _, t := range []BlockID{in.CondBr.Then, in.CondBr.Else} {
				if !inLayout(f, t) {
					errs = append(errs, fmt.Errorf("bb%d: branch to missing block bb%d", bb.ID, t))
				}
			}
		}
	}
	return errs
}

func validateOperands(m *Module, f *Func, bb *Block, id InstrID, in *Instr) []error {
	var errs []error
	for _, op := range in.AppendOperands(nil) {
		switch op.Kind {
		case OperandInstr:
			if f.Instr(op.Instr) == nil {
				errs = append(errs, fmt.Errorf("bb%d: %%v%d references freed instruction %%v%d", bb.ID, id, op.Instr))
			}
		case OperandParam:
			if op.Param < 0 || op.Param >= len(f.Params) {
				errs = append(errs, fmt.Errorf("bb%d: %%v%d references missing param %d", bb.ID, id, op.Param))
			}
		case OperandFunc:
			if m.Func(op.Func) == nil {
				errs = append(errs, fmt.Errorf("bb%d: %%v%d references removed function F%d", bb.ID, id, op.Func))
			}
		case OperandGlobal:
			if m.Global(op.Global) == nil {
				errs = append(errs, fmt.Errorf("bb%d: %%v%d references removed global G%d", bb.ID, id, op.Global))
			}
		}
	}
	return errs
}

// validateUseLists recomputes the operand relation and compares it with the
// stored use-lists in both directions.
func validateUseLists(f *Func) error {
	want := make(map[InstrID]map[InstrID]struct{})
	for _, bid := range f.Blocks {
		for _, id := range f.Block(bid).Instrs {
			in := f.Instr(id)
			if in == nil {
				continue
			}
			for _, op := range in.AppendOperands(nil) {
				if op.Kind != OperandInstr {
					continue
				}
				if want[op.Instr] == nil {
					want[op.Instr] = make(map[InstrID]struct{})
				}
				want[op.Instr][id] = struct{}{}
			}
		}
	}

	var errs []error
	for _, bid := range f.Blocks {
		for _, id := range f.Block(bid).Instrs {
			in := f.Instr(id)
			if in == nil {
				continue
			}
			for user := range in.uses {
				if _, ok := want[id][user]; !ok {
					errs = append(errs, fmt.Errorf("use-list of %%v%d records non-user %%v%d", id, user))
				}
			}
			for user := range want[id] {
				if _, ok := in.uses[user]; !ok {
					errs = append(errs, fmt.Errorf("use-list of %%v%d misses user %%v%d", id, user))
				}
			}
		}
	}
	return errors.Join(errs...)
}

func inLayout(f *Func, id BlockID) bool {
	for _, bid := range f.Blocks {
		if bid == id {
			return true
		}
	}
	return false
}
