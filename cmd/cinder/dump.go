package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cinder/internal/diag"
	"cinder/internal/ir"
	"cinder/internal/irtext"
	"cinder/internal/source"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file.cir>",
	Short: "Parse a .cir file and print its canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]
		if !strings.HasSuffix(target, ".cir") {
			return fmt.Errorf("%q is not a .cir file", target)
		}
		maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")
		colorMode, _ := cmd.Flags().GetString("color")
		useColor, err := readColorMode(colorMode)
		if err != nil {
			return err
		}

		fs := source.NewFileSet()
		bag := diag.NewBag(maxDiags)
		fid, err := fs.Load(target)
		if err != nil {
			return err
		}
		m := irtext.Parse(fs.Get(fid), bag)
		bag.Sort()
		diag.Pretty(cmd.ErrOrStderr(), bag, fs, diag.PrettyOpts{Color: useColor, Context: true})
		if m == nil {
			return fmt.Errorf("%s: parse failed with %d diagnostics", target, bag.Len())
		}
		return ir.DumpModule(cmd.OutOrStdout(), m)
	},
}
