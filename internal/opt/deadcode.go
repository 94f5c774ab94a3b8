// Package opt implements optimization passes over the IR.
//
// The only pass so far is dead-code elimination: a mark-sweep fixpoint that
// removes instructions whose results are unused and whose execution has no
// observable effect, prunes empty unreachable blocks, and a separate
// module-level collector for unreferenced functions and globals.
package opt

import (
	"cinder/internal/diag"
	"cinder/internal/ir"
	"cinder/internal/purity"
	"cinder/internal/source"
)

// DeadCode is one invocation of the dead-code elimination pass. It holds no
// IR state beyond the run, only the running erased counter and diagnostics.
type DeadCode struct {
	mod   *ir.Module
	facts *purity.Facts
	bag   *diag.Bag

	erased   int
	reported map[blockKey]struct{}
}

type blockKey struct {
	fn ir.FuncID
	bb ir.BlockID
}

// NewDeadCode prepares a pass over m. facts must come from a purity analysis
// of the same module state; bag receives informational diagnostics and may
// be shared with other pipeline stages.
func NewDeadCode(m *ir.Module, facts *purity.Facts, bag *diag.Bag) *DeadCode {
	return &DeadCode{
		mod:      m,
		facts:    facts,
		bag:      bag,
		reported: make(map[blockKey]struct{}),
	}
}

// Run executes the fixpoint: for every defined function, mark live
// instructions, sweep the rest, prune empty unreachable blocks, and repeat
// the whole module round until one full round changes nothing. Returns the
// total number of instructions erased.
func (p *DeadCode) Run() int {
	for changed := true; changed; {
		changed = false
		for _, f := range p.mod.Funcs {
			if f == nil || f.IsDecl {
				continue
			}
			live := mark(p.mod, p.facts, f)
			if p.sweep(f, live) {
				changed = true
			}
			if prune(p.mod, f) {
				changed = true
			}
		}
	}
	return p.erased
}

// Erased returns the instruction count removed so far.
func (p *DeadCode) Erased() int { return p.erased }

// Critical reports whether the instruction must be kept: terminators,
// stores, calls with observable effects, and any instruction whose result is
// currently consumed. Calls are observable when the callee is a declaration,
// is not known pure, or cannot be resolved to a function at all.
func Critical(m *ir.Module, facts *purity.Facts, f *ir.Func, id ir.InstrID) bool {
	in := f.Instr(id)
	if in == nil {
		return false
	}
	if in.IsTerminator() || in.IsStore() {
		return true
	}
	if in.IsCall() {
		callee := in.Call.Callee
		if callee.Kind != ir.OperandFunc {
			return true
		}
		cf := m.Func(callee.Func)
		if cf == nil || cf.IsDecl || !facts.IsPure(cf.ID) {
			return true
		}
	}
	return f.HasUses(id)
}

func (p *DeadCode) reportMalformed(f *ir.Func, bb *ir.Block) {
	key := blockKey{fn: f.ID, bb: bb.ID}
	if _, seen := p.reported[key]; seen {
		return
	}
	p.reported[key] = struct{}{}
	if p.bag != nil {
		p.bag.Addf(diag.SevInfo, diag.OptMalformedBlockSkip, source.Span{},
			"function @%s: block %q has no terminator, left untouched", f.Name, bb.Label)
	}
}
