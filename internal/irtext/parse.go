// Package irtext parses the line-oriented textual IR format (.cir).
//
// Grammar, one construct per line:
//
//	; comment (also after any construct)
//	global @name
//	declare @name(nparams)
//	func @name(nparams) {
//	label:
//	  %x = add <operand>, <operand>       (binary ops: add sub mul div rem
//	                                       and or xor shl shr eq ne lt le gt ge)
//	  %x = neg <operand>                  (unary ops: neg not)
//	  %x = load <operand>
//	  store <operand>, <operand>
//	  %x = call @callee(<operand>, ...)   (also: call %v(...) for indirect)
//	  %x = phi [<operand>, label], ...
//	  ret            | ret <operand>
//	  br label       | condbr <operand>, label, label
//	}
//
// Operands: integer literals, %name (instruction results), %pN (parameters),
// @name (functions or globals).
package irtext

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"cinder/internal/diag"
	"cinder/internal/ir"
	"cinder/internal/source"
)

type parser struct {
	file *source.File
	bag  *diag.Bag

	b       *ir.Builder
	lines   []string
	lineNo  uint32 // 1-based, line currently being parsed
	funcIDs map[string]ir.FuncID
	globals map[string]ir.GlobalID
}

// Parse parses the file's content into a module named after its path.
// Errors are reported into bag; a nil module is returned when any occurred.
func Parse(f *source.File, bag *diag.Bag) *ir.Module {
	p := &parser{
		file:    f,
		bag:     bag,
		b:       ir.NewBuilder(f.Path),
		lines:   strings.Split(string(f.Content), "\n"),
		funcIDs: make(map[string]ir.FuncID),
		globals: make(map[string]ir.GlobalID),
	}
	p.collectDecls()
	if !bag.HasErrors() {
		p.parseBodies()
	}
	if bag.HasErrors() {
		return nil
	}
	m, err := p.b.Build()
	if err != nil {
		p.errorAt(1, diag.ParseUnexpectedLine, "%v", err)
		return nil
	}
	return m
}

// collectDecls registers every global and function name so bodies can
// reference them regardless of declaration order.
func (p *parser) collectDecls() {
	for i, raw := range p.lines {
		lineNo, convErr := safecast.Conv[uint32](i + 1)
		if convErr != nil {
			panic(fmt.Errorf("line number overflow: %w", convErr))
		}
		p.lineNo = lineNo
		line := stripComment(raw)
		switch {
		case strings.HasPrefix(line, "global "):
			name, ok := parseAtName(strings.TrimPrefix(line, "global "))
			if !ok {
				p.errorAt(p.lineNo, diag.ParseUnexpectedLine, "malformed global declaration")
				continue
			}
			if _, dup := p.globals[name]; dup {
				p.errorAt(p.lineNo, diag.ParseDuplicateName, "duplicate global @%s", name)
				continue
			}
			p.globals[name] = p.b.AddGlobal(name)
		case strings.HasPrefix(line, "declare "):
			p.registerFunc(strings.TrimPrefix(line, "declare "), true)
		case strings.HasPrefix(line, "func "):
			header, found := strings.CutSuffix(line, "{")
			if !found {
				p.errorAt(p.lineNo, diag.ParseUnexpectedLine, "func header must end with '{'")
				continue
			}
			p.registerFunc(strings.TrimPrefix(header, "func "), false)
		}
	}
}

func (p *parser) registerFunc(sig string, decl bool) {
	name, nparams, ok := parseSignature(sig)
	if !ok {
		p.errorAt(p.lineNo, diag.ParseUnexpectedLine, "malformed function signature %q", strings.TrimSpace(sig))
		return
	}
	if _, dup := p.funcIDs[name]; dup {
		p.errorAt(p.lineNo, diag.ParseDuplicateName, "duplicate function @%s", name)
		return
	}
	params := make([]ir.Param, nparams)
	for i := range params {
		params[i] = ir.Param{Name: fmt.Sprintf("p%d", i)}
	}
	p.funcIDs[name] = p.b.DeclareFunc(name, params, decl)
}

// parseBodies walks the file a second time, filling in function bodies.
func (p *parser) parseBodies() {
	for i := 0; i < len(p.lines); i++ {
		lineNo, convErr := safecast.Conv[uint32](i + 1)
		if convErr != nil {
			panic(fmt.Errorf("line number overflow: %w", convErr))
		}
		p.lineNo = lineNo
		line := stripComment(p.lines[i])
		switch {
		case line == "" || strings.HasPrefix(line, "global ") || strings.HasPrefix(line, "declare "):
			continue
		case strings.HasPrefix(line, "func "):
			end := p.parseFuncBody(i)
			if end < 0 {
				return
			}
			i = end
		default:
			p.errorAt(p.lineNo, diag.ParseStrayInstruction, "instruction outside function body")
		}
	}
}

// parseFuncBody parses lines after the header at index start until the
// closing brace. Returns the index of the closing line, or -1 on a missing
// brace.
func (p *parser) parseFuncBody(start int) int {
	header := stripComment(p.lines[start])
	name, _, _ := parseSignature(strings.TrimSuffix(strings.TrimPrefix(header, "func "), "{"))
	fid := p.funcIDs[name]
	fb := p.b.Func(fid)

	end := -1
	for j := start + 1; j < len(p.lines); j++ {
		if stripComment(p.lines[j]) == "}" {
			end = j
			break
		}
	}
	if end < 0 {
		p.errorAt(uint32(start)+1, diag.ParseUnclosedFunc, "missing closing '}' for @%s", name)
		return -1
	}

	// Labels first so branches can reference blocks ahead of their
	// definition.
	blocks := make(map[string]ir.BlockID)
	for j := start + 1; j < end; j++ {
		line := stripComment(p.lines[j])
		if label, ok := strings.CutSuffix(line, ":"); ok && isIdent(label) {
			if _, dup := blocks[label]; dup {
				lineNo, convErr := safecast.Conv[uint32](j + 1)
				if convErr != nil {
					panic(fmt.Errorf("line number overflow: %w", convErr))
				}
				p.errorAt(lineNo, diag.ParseDuplicateName, "duplicate block label %s", label)
				continue
			}
			blocks[label] = fb.Block(label)
		}
	}

	// Pre-register result names with the arena IDs their defining lines
	// will receive, so phi nodes can reference values defined later
	// (loop-carried dependencies). Every instruction line consumes one
	// arena slot, in order.
	values := make(map[string]ir.InstrID)
	next := ir.InstrID(0)
	for j := start + 1; j < end; j++ {
		line := stripComment(p.lines[j])
		if line == "" {
			continue
		}
		if label, ok := strings.CutSuffix(line, ":"); ok && isIdent(label) {
			continue
		}
		if strings.HasPrefix(line, "%") {
			if lhs, _, found := strings.Cut(line, "="); found {
				vname := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lhs), "%"))
				if _, dup := values[vname]; dup {
					lineNo, convErr := safecast.Conv[uint32](j + 1)
					if convErr != nil {
						panic(fmt.Errorf("line number overflow: %w", convErr))
					}
					p.errorAt(lineNo, diag.ParseDuplicateName, "duplicate value %%%s", vname)
				} else {
					values[vname] = next
				}
			}
		}
		next++
	}

	fp := &funcParser{parser: p, fb: fb, blocks: blocks, values: values}
	cur := ir.NoBlockID
	for j := start + 1; j < end; j++ {
		lineNo, convErr := safecast.Conv[uint32](j + 1)
		if convErr != nil {
			panic(fmt.Errorf("line number overflow: %w", convErr))
		}
		p.lineNo = lineNo
		line := stripComment(p.lines[j])
		if line == "" {
			continue
		}
		if label, ok := strings.CutSuffix(line, ":"); ok && isIdent(label) {
			cur = blocks[label]
			continue
		}
		if cur == ir.NoBlockID {
			p.errorAt(p.lineNo, diag.ParseStrayInstruction, "instruction before first block label")
			continue
		}
		fp.parseInstr(cur, line)
	}
	return end
}

type funcParser struct {
	*parser
	fb     *ir.FuncBuilder
	blocks map[string]ir.BlockID
	values map[string]ir.InstrID
}

func (fp *funcParser) parseInstr(bb ir.BlockID, line string) {
	name := ""
	if strings.HasPrefix(line, "%") {
		lhs, rhs, found := strings.Cut(line, "=")
		if found {
			name = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lhs), "%"))
			line = strings.TrimSpace(rhs)
		}
	}

	mnemonic, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var id ir.InstrID = ir.NoInstrID
	switch {
	case mnemonic == "ret":
		if rest == "" {
			id = fp.fb.Ret(bb)
		} else if v, ok := fp.operand(rest); ok {
			id = fp.fb.RetValue(bb, v)
		}
	case mnemonic == "br":
		if target, ok := fp.blocks[rest]; ok {
			id = fp.fb.Br(bb, target)
		} else {
			fp.errorAt(fp.lineNo, diag.ParseUndefinedName, "unknown block label %q", rest)
		}
	case mnemonic == "condbr":
		id = fp.parseCondBr(bb, rest)
	case mnemonic == "store":
		parts := splitOperands(rest)
		if len(parts) != 2 {
			fp.errorAt(fp.lineNo, diag.ParseBadArity, "store expects 2 operands")
			break
		}
		v, okV := fp.operand(parts[0])
		addr, okA := fp.operand(parts[1])
		if okV && okA {
			id = fp.fb.Store(bb, v, addr)
		}
	case mnemonic == "load":
		if addr, ok := fp.operand(rest); ok {
			id = fp.fb.Load(bb, addr)
		}
	case mnemonic == "call":
		id = fp.parseCall(bb, rest)
	case mnemonic == "phi":
		id = fp.parsePhi(bb, rest)
	default:
		id = fp.parseOp(bb, mnemonic, rest)
	}

	if id != ir.NoInstrID && name != "" {
		fp.fb.SetName(id, name)
	}
}

func (fp *funcParser) parseOp(bb ir.BlockID, mnemonic, rest string) ir.InstrID {
	if op, ok := ir.ParseBinOp(mnemonic); ok {
		parts := splitOperands(rest)
		if len(parts) != 2 {
			fp.errorAt(fp.lineNo, diag.ParseBadArity, "%s expects 2 operands", mnemonic)
			return ir.NoInstrID
		}
		l, okL := fp.operand(parts[0])
		r, okR := fp.operand(parts[1])
		if !okL || !okR {
			return ir.NoInstrID
		}
		return fp.fb.BinOp(bb, op, l, r)
	}
	if op, ok := ir.ParseUnOp(mnemonic); ok {
		v, okV := fp.operand(rest)
		if !okV {
			return ir.NoInstrID
		}
		return fp.fb.UnOp(bb, op, v)
	}
	fp.errorAt(fp.lineNo, diag.ParseUnknownMnemonic, "unknown mnemonic %q", mnemonic)
	return ir.NoInstrID
}

func (fp *funcParser) parseCondBr(bb ir.BlockID, rest string) ir.InstrID {
	parts := splitOperands(rest)
	if len(parts) != 3 {
		fp.errorAt(fp.lineNo, diag.ParseBadArity, "condbr expects cond, then, else")
		return ir.NoInstrID
	}
	cond, ok := fp.operand(parts[0])
	if !ok {
		return ir.NoInstrID
	}
	then, okT := fp.blocks[parts[1]]
	els, okE := fp.blocks[parts[2]]
	if !okT || !okE {
		fp.errorAt(fp.lineNo, diag.ParseUndefinedName, "unknown block label in condbr")
		return ir.NoInstrID
	}
	return fp.fb.CondBr(bb, cond, then, els)
}

func (fp *funcParser) parseCall(bb ir.BlockID, rest string) ir.InstrID {
	open := strings.Index(rest, "(")
	if open < 0 || !strings.HasSuffix(rest, ")") {
		fp.errorAt(fp.lineNo, diag.ParseUnexpectedLine, "call expects callee(args)")
		return ir.NoInstrID
	}
	callee, ok := fp.operand(strings.TrimSpace(rest[:open]))
	if !ok {
		return ir.NoInstrID
	}
	var args []ir.Operand
	inner := strings.TrimSpace(rest[open+1 : len(rest)-1])
	if inner != "" {
		for _, part := range splitOperands(inner) {
			a, okA := fp.operand(part)
			if !okA {
				return ir.NoInstrID
			}
			args = append(args, a)
		}
	}
	return fp.fb.Call(bb, callee, args...)
}

func (fp *funcParser) parsePhi(bb ir.BlockID, rest string) ir.InstrID {
	var edges []ir.PhiEdge
	for _, part := range splitOperands(rest) {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "[") || !strings.HasSuffix(part, "]") {
			fp.errorAt(fp.lineNo, diag.ParseUnexpectedLine, "phi expects [value, label] edges")
			return ir.NoInstrID
		}
		inner := part[1 : len(part)-1]
		valueText, labelText, found := strings.Cut(inner, ",")
		if !found {
			fp.errorAt(fp.lineNo, diag.ParseUnexpectedLine, "phi edge needs value and label")
			return ir.NoInstrID
		}
		v, ok := fp.operand(strings.TrimSpace(valueText))
		if !ok {
			return ir.NoInstrID
		}
		from, okB := fp.blocks[strings.TrimSpace(labelText)]
		if !okB {
			fp.errorAt(fp.lineNo, diag.ParseUndefinedName, "unknown block label in phi")
			return ir.NoInstrID
		}
		edges = append(edges, ir.PhiEdge{Value: v, From: from})
	}
	return fp.fb.Phi(bb, edges...)
}

// operand parses a single operand token.
func (fp *funcParser) operand(tok string) (ir.Operand, bool) {
	tok = strings.TrimSpace(tok)
	switch {
	case tok == "":
		fp.errorAt(fp.lineNo, diag.ParseBadOperand, "empty operand")
		return ir.Operand{}, false
	case strings.HasPrefix(tok, "@"):
		name := tok[1:]
		if fid, ok := fp.funcIDs[name]; ok {
			return ir.FuncRef(fid), true
		}
		if gid, ok := fp.globals[name]; ok {
			return ir.GlobalRef(gid), true
		}
		fp.errorAt(fp.lineNo, diag.ParseUndefinedName, "undefined symbol @%s", name)
		return ir.Operand{}, false
	case strings.HasPrefix(tok, "%p") && isDigits(tok[2:]):
		n, err := strconv.Atoi(tok[2:])
		if err != nil {
			fp.errorAt(fp.lineNo, diag.ParseBadOperand, "bad parameter reference %q", tok)
			return ir.Operand{}, false
		}
		return ir.ParamRef(n), true
	case strings.HasPrefix(tok, "%"):
		name := tok[1:]
		id, ok := fp.values[name]
		if !ok {
			fp.errorAt(fp.lineNo, diag.ParseUndefinedName, "undefined value %%%s", name)
			return ir.Operand{}, false
		}
		return ir.Ref(id), true
	default:
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			fp.errorAt(fp.lineNo, diag.ParseBadOperand, "bad operand %q", tok)
			return ir.Operand{}, false
		}
		return ir.Const(v), true
	}
}

func (p *parser) errorAt(line uint32, code diag.Code, format string, args ...any) {
	p.bag.Addf(diag.SevError, code, p.file.LineSpan(line), format, args...)
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// splitOperands splits on top-level commas, respecting [...] phi edges.
func splitOperands(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}

func parseAtName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "@") || !isIdent(s[1:]) {
		return "", false
	}
	return s[1:], true
}

// parseSignature parses "@name(nparams)".
func parseSignature(s string) (name string, nparams int, ok bool) {
	s = strings.TrimSpace(s)
	open := strings.Index(s, "(")
	if open < 0 || !strings.HasSuffix(s, ")") {
		return "", 0, false
	}
	name, okName := parseAtName(s[:open])
	if !okName {
		return "", 0, false
	}
	inner := strings.TrimSpace(s[open+1 : len(s)-1])
	if inner == "" {
		return name, 0, true
	}
	n, err := strconv.Atoi(inner)
	if err != nil || n < 0 {
		return "", 0, false
	}
	return name, n, true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '.':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
