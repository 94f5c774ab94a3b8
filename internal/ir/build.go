package ir

import (
	"errors"
	"fmt"
)

// Builder constructs a module and, on Build, wires the derived graph state:
// instruction use-lists, function/global use-lists, and block predecessors.
type Builder struct {
	m     *Module
	built bool
}

// NewBuilder creates a builder for a fresh module.
func NewBuilder(moduleName string) *Builder {
	return &Builder{m: NewModule(moduleName)}
}

// DeclareFunc registers a function so later calls can reference it.
// Bodies are added through Func.
func (b *Builder) DeclareFunc(name string, params []Param, decl bool) FuncID {
	return b.m.AddFunc(NewFunc(name, params, decl))
}

// AddGlobal registers a global variable.
func (b *Builder) AddGlobal(name string) GlobalID {
	return b.m.AddGlobal(name)
}

// Func returns a body builder for a previously declared function.
func (b *Builder) Func(id FuncID) *FuncBuilder {
	return &FuncBuilder{m: b.m, f: b.m.Func(id)}
}

// Build wires use-lists and predecessor sets and returns the module.
// The builder must not be reused afterwards.
func (b *Builder) Build() (*Module, error) {
	if b.built {
		return nil, errors.New("builder already consumed")
	}
	b.built = true

	var errs []error
	for _, f := range b.m.Funcs {
		if f == nil || f.IsDecl {
			continue
		}
		if len(f.Blocks) == 0 {
			errs = append(errs, fmt.Errorf("function %s: defined but has no blocks", f.Name))
			continue
		}
		wireFunc(b.m, f)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return b.m, nil
}

func wireFunc(m *Module, f *Func) {
	for _, bid := range f.Blocks {
		bb := f.Block(bid)
		for _, id := range bb.Instrs {
			in := f.Instr(id)
			ref := UseRef{Func: f.ID, Instr: id}
			for _, op := range in.AppendOperands(nil) {
				switch op.Kind {
				case OperandInstr:
					f.addUse(op.Instr, id)
				case OperandFunc:
					m.addFuncUse(op.Func, ref)
				case OperandGlobal:
					m.addGlobalUse(op.Global, ref)
				}
			}
			switch in.Kind {
			case InstrBr:
				addPred(f, in.Br.Target, bid)
			case InstrCondBr:
				addPred(f, in.CondBr.Then, bid)
				addPred(f, in.CondBr.Else, bid)
			}
		}
	}
}

func addPred(f *Func, target, pred BlockID) {
	bb := f.Block(target)
	if bb == nil || bb.HasPred(pred) {
		return
	}
	bb.Preds = append(bb.Preds, pred)
}

// FuncBuilder appends blocks and instructions to one function body.
type FuncBuilder struct {
	m *Module
	f *Func
}

// Block appends a labeled block. The first block becomes the entry.
func (fb *FuncBuilder) Block(label string) BlockID {
	return fb.f.NewBlock(label)
}

// BinOp appends a two-operand instruction and returns its ID.
func (fb *FuncBuilder) BinOp(bb BlockID, op BinOp, left, right Operand) InstrID {
	return fb.f.appendInstr(bb, Instr{Kind: InstrBinOp, BinOp: BinOpInstr{Op: op, Left: left, Right: right}})
}

// UnOp appends a single-operand instruction and returns its ID.
func (fb *FuncBuilder) UnOp(bb BlockID, op UnOp, v Operand) InstrID {
	return fb.f.appendInstr(bb, Instr{Kind: InstrUnOp, UnOp: UnOpInstr{Op: op, Value: v}})
}

// Load appends a load from addr and returns its ID.
func (fb *FuncBuilder) Load(bb BlockID, addr Operand) InstrID {
	return fb.f.appendInstr(bb, Instr{Kind: InstrLoad, Load: LoadInstr{Addr: addr}})
}

// Store appends a store of v through addr and returns its ID.
func (fb *FuncBuilder) Store(bb BlockID, v, addr Operand) InstrID {
	return fb.f.appendInstr(bb, Instr{Kind: InstrStore, Store: StoreInstr{Value: v, Addr: addr}})
}

// Call appends a call and returns its ID.
func (fb *FuncBuilder) Call(bb BlockID, callee Operand, args ...Operand) InstrID {
	return fb.f.appendInstr(bb, Instr{Kind: InstrCall, Call: CallInstr{Callee: callee, Args: args}})
}

// Phi appends a phi node and returns its ID.
func (fb *FuncBuilder) Phi(bb BlockID, incoming ...PhiEdge) InstrID {
	return fb.f.appendInstr(bb, Instr{Kind: InstrPhi, Phi: PhiInstr{Incoming: incoming}})
}

// Ret appends a valueless return.
func (fb *FuncBuilder) Ret(bb BlockID) InstrID {
	return fb.f.appendInstr(bb, Instr{Kind: InstrRet})
}

// RetValue appends a return of v.
func (fb *FuncBuilder) RetValue(bb BlockID, v Operand) InstrID {
	return fb.f.appendInstr(bb, Instr{Kind: InstrRet, Ret: RetInstr{HasValue: true, Value: v}})
}

// Br appends an unconditional branch.
func (fb *FuncBuilder) Br(bb, target BlockID) InstrID {
	return fb.f.appendInstr(bb, Instr{Kind: InstrBr, Br: BrInstr{Target: target}})
}

// CondBr appends a conditional branch.
func (fb *FuncBuilder) CondBr(bb BlockID, cond Operand, then, els BlockID) InstrID {
	return fb.f.appendInstr(bb, Instr{Kind: InstrCondBr, CondBr: CondBrInstr{Cond: cond, Then: then, Else: els}})
}

// SetName records the SSA result name for an instruction.
func (fb *FuncBuilder) SetName(id InstrID, name string) {
	if in := fb.f.Instr(id); in != nil {
		in.Name = name
	}
}
