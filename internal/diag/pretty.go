package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"cinder/internal/source"
)

// PrettyOpts configures human-readable diagnostic output.
type PrettyOpts struct {
	Color   bool
	Context bool // print the offending line with an underline
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
	noteColor = color.New(color.FgHiBlack)
)

// Pretty writes diagnostics in a human-readable form:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line and an underline when opts.Context is set.
// Callers should Sort the bag first.
func Pretty(w io.Writer, bag *Bag, fs *source.FileSet, opts PrettyOpts) {
	if w == nil || bag == nil {
		return
	}
	for _, d := range bag.Items() {
		printOne(w, &d, fs, opts)
	}
}

func printOne(w io.Writer, d *Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	path, lc := fs.Resolve(d.Primary)
	sev := d.Severity.String()
	if opts.Color {
		sev = severityColor(d.Severity).Sprint(sev)
	}
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, lc.Line, lc.Col, sev, d.Code, d.Message)

	if opts.Context {
		printContext(w, d.Primary, fs, opts)
	}
	for _, n := range d.Notes {
		npath, nlc := fs.Resolve(n.Span)
		label := "note"
		if opts.Color {
			label = noteColor.Sprint(label)
		}
		fmt.Fprintf(w, "  %s: %s:%d:%d: %s\n", label, npath, nlc.Line, nlc.Col, n.Msg)
	}
}

func printContext(w io.Writer, sp source.Span, fs *source.FileSet, opts PrettyOpts) {
	f := fs.Get(sp.File)
	if f == nil {
		return
	}
	lc := f.LineColAt(sp.Start)
	text := f.LineText(lc.Line)
	if text == "" {
		return
	}
	fmt.Fprintf(w, "  %s\n", text)

	width := int(sp.Len())
	if width < 1 {
		width = 1
	}
	if remain := len(text) - int(lc.Col) + 1; width > remain && remain > 0 {
		width = remain
	}
	marker := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		marker = severityColor(SevError).Sprint(marker)
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", int(lc.Col)-1), marker)
}

func severityColor(s Severity) *color.Color {
	switch s {
	case SevError:
		return errColor
	case SevWarning:
		return warnColor
	default:
		return infoColor
	}
}
