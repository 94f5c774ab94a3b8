package opt_test

import (
	"testing"

	"cinder/internal/diag"
	"cinder/internal/ir"
	"cinder/internal/irtext"
	"cinder/internal/opt"
	"cinder/internal/purity"
	"cinder/internal/source"
	"cinder/internal/testkit"
)

func build(t *testing.T, b *ir.Builder) *ir.Module {
	t.Helper()
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func runDCE(t *testing.T, m *ir.Module) (int, *diag.Bag) {
	t.Helper()
	facts := purity.Analyze(m)
	bag := diag.NewBag(64)
	n := opt.NewDeadCode(m, facts, bag).Run()
	return n, bag
}

func TestEraseUnusedArithmetic(t *testing.T) {
	b := ir.NewBuilder("m")
	mainID := b.DeclareFunc("main", nil, false)
	fb := b.Func(mainID)
	bb := fb.Block("entry")
	fb.BinOp(bb, ir.OpAdd, ir.Const(1), ir.Const(2))
	fb.Ret(bb)
	m := build(t, b)

	erased, _ := runDCE(t, m)
	if erased != 1 {
		t.Fatalf("erased = %d, want 1", erased)
	}
	f := m.Func(mainID)
	if got := f.NumInstrs(); got != 1 {
		t.Fatalf("instructions left = %d, want only the ret", got)
	}
	if tid := f.Terminator(f.Entry); tid == ir.NoInstrID || !f.Instr(tid).IsRet() {
		t.Errorf("entry block must still end in ret")
	}
	testkit.CheckConsistent(t, m)
}

func TestEraseDeadChainAcrossIterations(t *testing.T) {
	b := ir.NewBuilder("m")
	mainID := b.DeclareFunc("main", nil, false)
	fb := b.Func(mainID)
	bb := fb.Block("entry")
	a := fb.BinOp(bb, ir.OpAdd, ir.Const(1), ir.Const(2))
	fb.BinOp(bb, ir.OpMul, ir.Ref(a), ir.Const(3))
	fb.Ret(bb)
	m := build(t, b)

	// The chain head only loses its last use once the tail is swept, so the
	// second instruction falls in iteration one and the first in iteration two.
	erased, _ := runDCE(t, m)
	if erased != 2 {
		t.Fatalf("erased = %d, want 2", erased)
	}
	if got := m.Func(mainID).NumInstrs(); got != 1 {
		t.Fatalf("instructions left = %d, want 1", got)
	}
	testkit.CheckConsistent(t, m)
}

func TestKeepLiveChain(t *testing.T) {
	b := ir.NewBuilder("m")
	mainID := b.DeclareFunc("main", nil, false)
	fb := b.Func(mainID)
	bb := fb.Block("entry")
	a := fb.BinOp(bb, ir.OpAdd, ir.Const(1), ir.Const(2))
	prod := fb.BinOp(bb, ir.OpMul, ir.Ref(a), ir.Const(3))
	fb.RetValue(bb, ir.Ref(prod))
	m := build(t, b)

	erased, _ := runDCE(t, m)
	if erased != 0 {
		t.Fatalf("erased = %d, want 0: every instruction feeds the return", erased)
	}
	testkit.CheckSound(t, m, purity.Analyze(m), m.Func(mainID))
}

func TestRemoveUnusedPureCall(t *testing.T) {
	b := ir.NewBuilder("m")
	helperID := b.DeclareFunc("pure_helper", nil, false)
	mainID := b.DeclareFunc("main", nil, false)

	fb := b.Func(helperID)
	bb := fb.Block("entry")
	fb.RetValue(bb, ir.Const(7))

	fb = b.Func(mainID)
	bb = fb.Block("entry")
	fb.Call(bb, ir.FuncRef(helperID))
	fb.Ret(bb)
	m := build(t, b)

	erased, _ := runDCE(t, m)
	if erased != 1 {
		t.Fatalf("erased = %d, want 1: unused call to a pure function is removable", erased)
	}
	if m.FuncHasUses(helperID) {
		t.Errorf("pure_helper use-list must be empty after its only call site is removed")
	}
	testkit.CheckConsistent(t, m)
}

func TestKeepCallToDeclaration(t *testing.T) {
	b := ir.NewBuilder("m")
	declID := b.DeclareFunc("pure_helper", nil, true)
	mainID := b.DeclareFunc("main", nil, false)
	fb := b.Func(mainID)
	bb := fb.Block("entry")
	fb.Call(bb, ir.FuncRef(declID))
	fb.Ret(bb)
	m := build(t, b)

	erased, _ := runDCE(t, m)
	if erased != 0 {
		t.Fatalf("erased = %d, want 0: a declaration has an unknown body", erased)
	}
	if got := m.Func(mainID).NumInstrs(); got != 2 {
		t.Fatalf("instructions left = %d, want 2", got)
	}
}

func TestKeepUnresolvedCall(t *testing.T) {
	b := ir.NewBuilder("m")
	mainID := b.DeclareFunc("main", []ir.Param{{Name: "fp"}}, false)
	fb := b.Func(mainID)
	bb := fb.Block("entry")
	fb.Call(bb, ir.ParamRef(0))
	fb.Ret(bb)
	m := build(t, b)

	erased, _ := runDCE(t, m)
	if erased != 0 {
		t.Fatalf("erased = %d, want 0: indirect calls are conservatively kept", erased)
	}
}

func TestKeepStoreAndItsInputs(t *testing.T) {
	b := ir.NewBuilder("m")
	g := b.AddGlobal("g")
	mainID := b.DeclareFunc("main", nil, false)
	fb := b.Func(mainID)
	bb := fb.Block("entry")
	v := fb.BinOp(bb, ir.OpAdd, ir.Const(1), ir.Const(2))
	fb.Store(bb, ir.Ref(v), ir.GlobalRef(g))
	fb.BinOp(bb, ir.OpMul, ir.Const(3), ir.Const(4))
	fb.Ret(bb)
	m := build(t, b)

	erased, _ := runDCE(t, m)
	if erased != 1 {
		t.Fatalf("erased = %d, want 1: only the unused mul goes", erased)
	}
	f := m.Func(mainID)
	if got := f.NumInstrs(); got != 3 {
		t.Fatalf("instructions left = %d, want add, store, ret", got)
	}
	testkit.CheckSound(t, m, purity.Analyze(m), f)
}

func TestPruneEmptyUnreachableBlockOnly(t *testing.T) {
	b := ir.NewBuilder("m")
	mainID := b.DeclareFunc("main", nil, false)
	fb := b.Func(mainID)
	entry := fb.Block("entry")
	fb.Ret(entry)
	fb.Block("orphan_empty")
	orphanRet := fb.Block("orphan_ret")
	fb.Ret(orphanRet)
	m := build(t, b)

	erased, _ := runDCE(t, m)
	if erased != 0 {
		t.Fatalf("erased = %d, want 0", erased)
	}
	f := m.Func(mainID)
	if len(f.Blocks) != 2 {
		t.Fatalf("blocks left = %d, want entry plus the terminated orphan", len(f.Blocks))
	}
	for _, bid := range f.Blocks {
		if f.Block(bid).Label == "orphan_empty" {
			t.Errorf("empty unreachable block must be pruned")
		}
	}
	testkit.CheckConsistent(t, m)
}

func TestMalformedBlockIsSkipped(t *testing.T) {
	b := ir.NewBuilder("m")
	mainID := b.DeclareFunc("main", nil, false)
	fb := b.Func(mainID)
	entry := fb.Block("entry")
	fb.Ret(entry)
	junk := fb.Block("junk")
	fb.BinOp(junk, ir.OpAdd, ir.Const(1), ir.Const(2))
	m := build(t, b)

	erased, bag := runDCE(t, m)
	if erased != 0 {
		t.Fatalf("erased = %d, want 0: unterminated blocks are never edited", erased)
	}
	if got := m.Func(mainID).NumInstrs(); got != 2 {
		t.Fatalf("instructions left = %d, want 2", got)
	}
	items := bag.Items()
	if len(items) != 1 {
		t.Fatalf("diagnostics = %d, want one informational skip notice", len(items))
	}
	if items[0].Severity != diag.SevInfo || items[0].Code != diag.OptMalformedBlockSkip {
		t.Errorf("diagnostic = %v/%v, want SevInfo %v", items[0].Severity, items[0].Code, diag.OptMalformedBlockSkip)
	}
}

func TestMarkerTerminatesOnPhiCycle(t *testing.T) {
	const src = `func @main() {
entry:
  br loop
loop:
  %i = phi [0, entry], [%n, loop]
  %n = add %i, 1
  %c = lt %n, 10
  condbr %c, loop, exit
exit:
  ret %i
}
`
	fs := source.NewFileSet()
	bag := diag.NewBag(16)
	m := irtext.Parse(fs.Get(fs.AddVirtual("loop.cir", []byte(src))), bag)
	if m == nil {
		t.Fatalf("parse failed: %v", bag.Items())
	}

	erased, _ := runDCE(t, m)
	if erased != 0 {
		t.Fatalf("erased = %d, want 0: the whole loop is live", erased)
	}
	mainID, _ := m.FuncByName("main")
	testkit.CheckSound(t, m, purity.Analyze(m), m.Func(mainID))
}

func TestIdempotence(t *testing.T) {
	b := ir.NewBuilder("m")
	helperID := b.DeclareFunc("pure_helper", nil, false)
	mainID := b.DeclareFunc("main", nil, false)

	fb := b.Func(helperID)
	bb := fb.Block("entry")
	fb.RetValue(bb, ir.Const(1))

	fb = b.Func(mainID)
	entry := fb.Block("entry")
	a := fb.BinOp(entry, ir.OpAdd, ir.Const(1), ir.Const(2))
	fb.BinOp(entry, ir.OpMul, ir.Ref(a), ir.Const(3))
	fb.Call(entry, ir.FuncRef(helperID))
	fb.Ret(entry)
	fb.Block("orphan")
	m := build(t, b)

	f := m.Func(mainID)
	before := testkit.TerminatorKinds(f)

	erased, _ := runDCE(t, m)
	if erased == 0 {
		t.Fatalf("first run must erase something")
	}
	blocksAfterFirst := len(f.Blocks)

	again, _ := runDCE(t, m)
	if again != 0 {
		t.Errorf("second run erased %d, want 0", again)
	}
	if len(f.Blocks) != blocksAfterFirst {
		t.Errorf("second run deleted blocks: %d -> %d", blocksAfterFirst, len(f.Blocks))
	}
	testkit.CheckTerminatorsPreserved(t, f, before)
	testkit.CheckSound(t, m, purity.Analyze(m), f)
	testkit.CheckConsistent(t, m)
}
