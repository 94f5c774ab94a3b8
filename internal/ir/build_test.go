package ir

import "testing"

// buildSample constructs:
//
//	global @g
//	declare @print(1)
//	func @main(0) {
//	entry:
//	  %a = add 1, 2
//	  %b = mul %a, 3
//	  store %b, @g
//	  %c = call @print(%a)
//	  ret
//	}
func buildSample(t *testing.T) (*Module, *Func) {
	t.Helper()
	b := NewBuilder("sample")
	g := b.AddGlobal("g")
	printFn := b.DeclareFunc("print", []Param{{Name: "x"}}, true)
	main := b.DeclareFunc("main", nil, false)

	fb := b.Func(main)
	entry := fb.Block("entry")
	a := fb.BinOp(entry, OpAdd, Const(1), Const(2))
	bv := fb.BinOp(entry, OpMul, Ref(a), Const(3))
	fb.Store(entry, Ref(bv), GlobalRef(g))
	fb.Call(entry, FuncRef(printFn), Ref(a))
	fb.Ret(entry)

	m, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return m, m.Func(main)
}

func TestBuildWiresUseLists(t *testing.T) {
	m, f := buildSample(t)

	// %a is used by %b and the call.
	if got := f.UseCount(0); got != 2 {
		t.Errorf("expected 2 uses of %%a, got %d", got)
	}
	// %b is used by the store.
	if got := f.UseCount(1); got != 1 {
		t.Errorf("expected 1 use of %%b, got %d", got)
	}

	printID, _ := m.FuncByName("print")
	if got := m.FuncUseCount(printID); got != 1 {
		t.Errorf("expected 1 use of @print, got %d", got)
	}
	g, _ := m.GlobalByName("g")
	if !m.GlobalHasUses(g) {
		t.Error("expected @g to have uses")
	}

	if err := Validate(m); err != nil {
		t.Errorf("valid module rejected: %v", err)
	}
}

func TestBuildWiresPreds(t *testing.T) {
	b := NewBuilder("preds")
	id := b.DeclareFunc("f", nil, false)
	fb := b.Func(id)
	entry := fb.Block("entry")
	left := fb.Block("left")
	right := fb.Block("right")
	exit := fb.Block("exit")
	fb.CondBr(entry, Const(1), left, right)
	fb.Br(left, exit)
	fb.Br(right, exit)
	fb.Ret(exit)

	m, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f := m.Func(id)

	if got := len(f.Block(exit).Preds); got != 2 {
		t.Errorf("exit: expected 2 preds, got %d", got)
	}
	if got := len(f.Block(entry).Preds); got != 0 {
		t.Errorf("entry: expected 0 preds, got %d", got)
	}
	if !f.Terminated(entry) || !f.Terminated(exit) {
		t.Error("expected all blocks terminated")
	}
}

func TestRemoveInstrKeepsEdgesConsistent(t *testing.T) {
	m, f := buildSample(t)

	// Remove the store; @g loses its only use.
	g, _ := m.GlobalByName("g")
	var store InstrID = NoInstrID
	entry := f.Block(f.Entry)
	for _, id := range entry.Instrs {
		if f.Instr(id).IsStore() {
			store = id
		}
	}
	if store == NoInstrID {
		t.Fatal("store not found")
	}

	m.DetachOperands(f, store)
	m.RemoveInstr(f, store)

	if m.GlobalHasUses(g) {
		t.Error("expected @g use-list to be empty after removing store")
	}
	// %b lost its only user.
	if f.HasUses(1) {
		t.Errorf("expected %s use-list to be empty", "%b")
	}
	if f.Instr(store) != nil {
		t.Error("freed slot still resolves")
	}
	if err := Validate(m); err != nil {
		t.Errorf("module inconsistent after removal: %v", err)
	}
}

func TestRemoveBlockOnlyWhenEmpty(t *testing.T) {
	b := NewBuilder("blocks")
	id := b.DeclareFunc("f", nil, false)
	fb := b.Func(id)
	entry := fb.Block("entry")
	dead := fb.Block("dead") // never branched to, no instructions
	fb.Ret(entry)

	m, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f := m.Func(id)

	if !m.RemoveBlock(f, dead) {
		t.Error("expected empty block removal to succeed")
	}
	if m.RemoveBlock(f, entry) {
		t.Error("non-empty block must not be removable")
	}
	if len(f.Blocks) != 1 {
		t.Errorf("expected 1 block in layout, got %d", len(f.Blocks))
	}
}

func TestValidateCatchesUnterminatedBlock(t *testing.T) {
	b := NewBuilder("bad")
	id := b.DeclareFunc("f", nil, false)
	fb := b.Func(id)
	entry := fb.Block("entry")
	fb.BinOp(entry, OpAdd, Const(1), Const(2))
	// no terminator

	m, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := Validate(m); err == nil {
		t.Error("expected validation error for unterminated block")
	}
}
