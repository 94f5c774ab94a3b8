package irtext_test

import (
	"strings"
	"testing"

	"cinder/internal/diag"
	"cinder/internal/ir"
	"cinder/internal/irtext"
	"cinder/internal/source"
)

func parseString(t *testing.T, src string) (*ir.Module, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.cir", []byte(src))
	bag := diag.NewBag(32)
	return irtext.Parse(fs.Get(id), bag), bag
}

func TestParseFullModule(t *testing.T) {
	m, bag := parseString(t, `
global @g
declare @print(1)

func @main(0) {
entry:
  %a = add 1, 2
  %b = mul %a, 3
  store %b, @g
  %c = call @print(%a)
  condbr %a, body, exit
body:
  %d = phi [%a, entry], [%e, body]
  %e = sub %d, 1
  br body
exit:
  ret
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	if m == nil {
		t.Fatal("expected module")
	}
	if err := ir.Validate(m); err != nil {
		t.Fatalf("parsed module invalid: %v", err)
	}

	mainID, ok := m.FuncByName("main")
	if !ok {
		t.Fatal("missing @main")
	}
	f := m.Func(mainID)
	if len(f.Blocks) != 3 {
		t.Errorf("expected 3 blocks, got %d", len(f.Blocks))
	}
	if f.NumInstrs() != 9 {
		t.Errorf("expected 9 instructions, got %d", f.NumInstrs())
	}

	printID, _ := m.FuncByName("print")
	if !m.Func(printID).IsDecl {
		t.Error("@print should be a declaration")
	}
	if got := m.FuncUseCount(printID); got != 1 {
		t.Errorf("expected 1 call site for @print, got %d", got)
	}
}

func TestParseRoundTrip(t *testing.T) {
	src := `global @g

func @main(1) {
entry:
  %a = add %p0, 1
  store %a, @g
  ret
}
`
	m, bag := parseString(t, src)
	if bag.HasErrors() || m == nil {
		t.Fatalf("parse failed: %+v", bag.Items())
	}

	var out strings.Builder
	if err := ir.DumpModule(&out, m); err != nil {
		t.Fatalf("dump: %v", err)
	}

	m2, bag2 := parseString(t, out.String())
	if bag2.HasErrors() || m2 == nil {
		t.Fatalf("reparse failed on:\n%s\nerrors: %+v", out.String(), bag2.Items())
	}
	mainID, _ := m2.FuncByName("main")
	if got := m2.Func(mainID).NumInstrs(); got != 3 {
		t.Errorf("round trip changed instruction count: %d", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{
			name: "undefined_value",
			src:  "func @f(0) {\nentry:\n  %a = add %missing, 1\n  ret\n}\n",
			code: diag.ParseUndefinedName,
		},
		{
			name: "unknown_mnemonic",
			src:  "func @f(0) {\nentry:\n  %a = frobnicate 1, 2\n  ret\n}\n",
			code: diag.ParseUnknownMnemonic,
		},
		{
			name: "duplicate_function",
			src:  "declare @f(0)\ndeclare @f(0)\n",
			code: diag.ParseDuplicateName,
		},
		{
			name: "missing_brace",
			src:  "func @f(0) {\nentry:\n  ret\n",
			code: diag.ParseUnclosedFunc,
		},
		{
			name: "stray_instruction",
			src:  "func @f(0) {\n  ret\n}\n",
			code: diag.ParseStrayInstruction,
		},
		{
			name: "bad_store_arity",
			src:  "func @f(0) {\nentry:\n  store 1\n  ret\n}\n",
			code: diag.ParseBadArity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, bag := parseString(t, tt.src)
			if m != nil {
				t.Error("expected nil module on error")
			}
			found := false
			for _, d := range bag.Items() {
				if d.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Errorf("expected code %v, got %+v", tt.code, bag.Items())
			}
		})
	}
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	m, bag := parseString(t, `; leading comment
func @f(0) { ; trailing comment
entry:
  ; a full-line comment
  ret ; done
}
`)
	if bag.HasErrors() || m == nil {
		t.Fatalf("parse failed: %+v", bag.Items())
	}
}
