package ir

import (
	"fmt"
	"io"
	"strings"
)

// DumpModule writes a parseable textual representation of the module.
func DumpModule(w io.Writer, m *Module) error {
	if w == nil || m == nil {
		return nil
	}
	for _, g := range m.Globals {
		if g == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "global @%s\n", g.Name); err != nil {
			return err
		}
	}
	for _, f := range m.Funcs {
		if f == nil || !f.IsDecl {
			continue
		}
		if _, err := fmt.Fprintf(w, "declare @%s(%d)\n", f.Name, len(f.Params)); err != nil {
			return err
		}
	}
	for _, f := range m.Funcs {
		if f == nil || f.IsDecl {
			continue
		}
		if err := dumpFunc(w, m, f); err != nil {
			return err
		}
	}
	return nil
}

func dumpFunc(w io.Writer, m *Module, f *Func) error {
	if _, err := fmt.Fprintf(w, "\nfunc @%s(%d) {\n", f.Name, len(f.Params)); err != nil {
		return err
	}
	for _, bid := range f.Blocks {
		bb := f.Block(bid)
		if _, err := fmt.Fprintf(w, "%s:\n", blockLabel(bb)); err != nil {
			return err
		}
		for _, id := range bb.Instrs {
			if _, err := fmt.Fprintf(w, "  %s\n", FormatInstr(m, f, id)); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

// FormatInstr renders one instruction the way the parser reads it.
func FormatInstr(m *Module, f *Func, id InstrID) string {
	in := f.Instr(id)
	if in == nil {
		return fmt.Sprintf("<freed %%v%d>", id)
	}
	var b strings.Builder
	if in.HasResult() {
		fmt.Fprintf(&b, "%s = ", valueName(f, id))
	}
	switch in.Kind {
	case InstrBinOp:
		fmt.Fprintf(&b, "%s %s, %s", in.BinOp.Op, formatOperand(m, f, in.BinOp.Left), formatOperand(m, f, in.BinOp.Right))
	case InstrUnOp:
		fmt.Fprintf(&b, "%s %s", in.UnOp.Op, formatOperand(m, f, in.UnOp.Value))
	case InstrLoad:
		fmt.Fprintf(&b, "load %s", formatOperand(m, f, in.Load.Addr))
	case InstrStore:
		fmt.Fprintf(&b, "store %s, %s", formatOperand(m, f, in.Store.Value), formatOperand(m, f, in.Store.Addr))
	case InstrCall:
		args := make([]string, len(in.Call.Args))
		for i, a := range in.Call.Args {
			args[i] = formatOperand(m, f, a)
		}
		fmt.Fprintf(&b, "call %s(%s)", formatOperand(m, f, in.Call.Callee), strings.Join(args, ", "))
	case InstrPhi:
		edges := make([]string, len(in.Phi.Incoming))
		for i, e := range in.Phi.Incoming {
			edges[i] = fmt.Sprintf("[%s, %s]", formatOperand(m, f, e.Value), blockLabel(f.Block(e.From)))
		}
		fmt.Fprintf(&b, "phi %s", strings.Join(edges, ", "))
	case InstrRet:
		if in.Ret.HasValue {
			fmt.Fprintf(&b, "ret %s", formatOperand(m, f, in.Ret.Value))
		} else {
			b.WriteString("ret")
		}
	case InstrBr:
		fmt.Fprintf(&b, "br %s", blockLabel(f.Block(in.Br.Target)))
	case InstrCondBr:
		fmt.Fprintf(&b, "condbr %s, %s, %s",
			formatOperand(m, f, in.CondBr.Cond),
			blockLabel(f.Block(in.CondBr.Then)),
			blockLabel(f.Block(in.CondBr.Else)))
	}
	return b.String()
}

func formatOperand(m *Module, f *Func, op Operand) string {
	switch op.Kind {
	case OperandConst:
		return fmt.Sprintf("%d", op.Const)
	case OperandInstr:
		return valueName(f, op.Instr)
	case OperandParam:
		return fmt.Sprintf("%%p%d", op.Param)
	case OperandFunc:
		if fn := m.Func(op.Func); fn != nil {
			return "@" + fn.Name
		}
		return fmt.Sprintf("@<removed F%d>", op.Func)
	case OperandGlobal:
		if g := m.Global(op.Global); g != nil {
			return "@" + g.Name
		}
		return fmt.Sprintf("@<removed G%d>", op.Global)
	}
	return "?"
}

func valueName(f *Func, id InstrID) string {
	if in := f.Instr(id); in != nil && in.Name != "" {
		return "%" + in.Name
	}
	return fmt.Sprintf("%%v%d", id)
}

func blockLabel(bb *Block) string {
	if bb == nil {
		return "<missing>"
	}
	if bb.Label != "" {
		return bb.Label
	}
	return fmt.Sprintf("bb%d", bb.ID)
}
