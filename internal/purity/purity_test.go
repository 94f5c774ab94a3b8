package purity

import (
	"testing"

	"cinder/internal/ir"
)

func build(t *testing.T, b *ir.Builder) *ir.Module {
	t.Helper()
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestAnalyzeStoreIsImpure(t *testing.T) {
	b := ir.NewBuilder("m")
	g := b.AddGlobal("counter")
	pureID := b.DeclareFunc("square", []ir.Param{{Name: "x"}}, false)
	bumpID := b.DeclareFunc("bump", nil, false)

	fb := b.Func(pureID)
	bb := fb.Block("entry")
	mul := fb.BinOp(bb, ir.OpMul, ir.ParamRef(0), ir.ParamRef(0))
	fb.RetValue(bb, ir.Ref(mul))

	fb = b.Func(bumpID)
	bb = fb.Block("entry")
	ld := fb.Load(bb, ir.GlobalRef(g))
	add := fb.BinOp(bb, ir.OpAdd, ir.Ref(ld), ir.Const(1))
	fb.Store(bb, ir.Ref(add), ir.GlobalRef(g))
	fb.Ret(bb)

	facts := Analyze(build(t, b))
	if !facts.IsPure(pureID) {
		t.Errorf("square: want pure")
	}
	if facts.IsPure(bumpID) {
		t.Errorf("bump: stores through a global, want impure")
	}
}

func TestAnalyzeImpurityPropagates(t *testing.T) {
	b := ir.NewBuilder("m")
	printID := b.DeclareFunc("print", []ir.Param{{Name: "v"}}, true)
	loudID := b.DeclareFunc("loud", nil, false)
	outerID := b.DeclareFunc("outer", nil, false)

	fb := b.Func(loudID)
	bb := fb.Block("entry")
	fb.Call(bb, ir.FuncRef(printID), ir.Const(1))
	fb.Ret(bb)

	fb = b.Func(outerID)
	bb = fb.Block("entry")
	fb.Call(bb, ir.FuncRef(loudID))
	fb.Ret(bb)

	facts := Analyze(build(t, b))
	if facts.IsPure(printID) {
		t.Errorf("print: declarations are never pure")
	}
	if facts.IsPure(loudID) {
		t.Errorf("loud: calls a declaration, want impure")
	}
	if facts.IsPure(outerID) {
		t.Errorf("outer: calls an impure function, want impure")
	}
}

func TestAnalyzeRecursiveCycleIsPure(t *testing.T) {
	b := ir.NewBuilder("m")
	evenID := b.DeclareFunc("even", []ir.Param{{Name: "n"}}, false)
	oddID := b.DeclareFunc("odd", []ir.Param{{Name: "n"}}, false)

	fb := b.Func(evenID)
	bb := fb.Block("entry")
	c := fb.Call(bb, ir.FuncRef(oddID), ir.ParamRef(0))
	fb.RetValue(bb, ir.Ref(c))

	fb = b.Func(oddID)
	bb = fb.Block("entry")
	c = fb.Call(bb, ir.FuncRef(evenID), ir.ParamRef(0))
	fb.RetValue(bb, ir.Ref(c))

	facts := Analyze(build(t, b))
	if !facts.IsPure(evenID) || !facts.IsPure(oddID) {
		t.Errorf("mutually recursive functions with no effects: want both pure")
	}
}

func TestAnalyzeUnresolvedCalleeIsImpure(t *testing.T) {
	b := ir.NewBuilder("m")
	id := b.DeclareFunc("dispatch", []ir.Param{{Name: "fp"}}, false)
	fb := b.Func(id)
	bb := fb.Block("entry")
	fb.Call(bb, ir.ParamRef(0))
	fb.Ret(bb)

	facts := Analyze(build(t, b))
	if facts.IsPure(id) {
		t.Errorf("dispatch: indirect callee, want impure")
	}
}

func TestAnalyzeAssumePure(t *testing.T) {
	b := ir.NewBuilder("m")
	sqrtID := b.DeclareFunc("sqrt", []ir.Param{{Name: "x"}}, true)
	mathID := b.DeclareFunc("hypot", []ir.Param{{Name: "a"}, {Name: "b"}}, false)

	fb := b.Func(mathID)
	bb := fb.Block("entry")
	mulA := fb.BinOp(bb, ir.OpMul, ir.ParamRef(0), ir.ParamRef(0))
	mulB := fb.BinOp(bb, ir.OpMul, ir.ParamRef(1), ir.ParamRef(1))
	sum := fb.BinOp(bb, ir.OpAdd, ir.Ref(mulA), ir.Ref(mulB))
	c := fb.Call(bb, ir.FuncRef(sqrtID), ir.Ref(sum))
	fb.RetValue(bb, ir.Ref(c))

	m := build(t, b)

	facts := Analyze(m)
	if facts.IsPure(mathID) {
		t.Errorf("hypot without assumptions: calls a declaration, want impure")
	}

	facts = Analyze(m, "sqrt")
	if !facts.IsPure(mathID) {
		t.Errorf("hypot with sqrt assumed pure: want pure")
	}
	if facts.IsPure(sqrtID) {
		t.Errorf("sqrt itself is a declaration and must still answer impure")
	}
}

func TestIsPureOutOfRange(t *testing.T) {
	facts := Analyze(ir.NewModule("empty"))
	if facts.IsPure(ir.NoFuncID) || facts.IsPure(42) {
		t.Errorf("out-of-range IDs must answer false")
	}
}
