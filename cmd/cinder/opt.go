package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cinder/internal/diag"
	"cinder/internal/driver"
	"cinder/internal/observ"
	"cinder/internal/pipeline"
	"cinder/internal/project"
)

var (
	optEmit           string
	optUI             string
	optEntry          string
	optJobs           int
	optNoCache        bool
	optCollectGlobals int
)

func init() {
	optCmd.Flags().StringVar(&optEmit, "emit", "", "output format (text|none)")
	optCmd.Flags().StringVar(&optUI, "ui", "auto", "interactive progress (auto|on|off)")
	optCmd.Flags().StringVar(&optEntry, "entry", "", "entry function the global collector must keep")
	optCmd.Flags().IntVar(&optJobs, "jobs", 0, "max files optimized in parallel (0 = GOMAXPROCS)")
	optCmd.Flags().BoolVar(&optNoCache, "no-cache", false, "bypass the result cache")
	optCmd.Flags().IntVar(&optCollectGlobals, "collect-globals", -1, "global collector invocations after the pass (-1 = manifest default)")
}

var optCmd = &cobra.Command{
	Use:   "opt [path]",
	Short: "Run dead-code elimination over .cir files",
	Long:  `Parses the target, runs purity analysis and the dead-code pass, and emits the optimized IR. The target is a .cir file or a directory; defaults to the current directory.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) == 1 {
			target = args[0]
		}
		info, err := os.Stat(target)
		if err != nil {
			return fmt.Errorf("cannot stat %q: %w", target, err)
		}
		if !info.IsDir() && !strings.HasSuffix(target, ".cir") {
			return fmt.Errorf("%q is not a .cir file", target)
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		timings, _ := cmd.Flags().GetBool("timings")
		maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")
		colorMode, _ := cmd.Flags().GetString("color")
		useColor, err := readColorMode(colorMode)
		if err != nil {
			return err
		}
		mode, err := readUIMode(optUI)
		if err != nil {
			return err
		}

		opts, err := resolveOptions(target, maxDiags)
		if err != nil {
			return err
		}
		if timings && info.IsDir() {
			// Per-phase timings only make sense for a single file.
			timings = false
		}
		var timer *observ.Timer
		if timings {
			timer = observ.NewTimer()
			opts.Timer = timer
		}

		var files []string
		if info.IsDir() {
			files, err = driver.ListCIRFiles(target)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no .cir files under %q", target)
			}
		} else {
			files = []string{target}
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		run := func(sink pipeline.ProgressSink) ([]driver.FileResult, error) {
			o := *opts
			o.Progress = sink
			if info.IsDir() {
				return driver.OptimizeDir(ctx, target, &o, optJobs)
			}
			res, _ := driver.OptimizeFile(ctx, target, &o)
			return []driver.FileResult{res}, nil
		}

		var results []driver.FileResult
		if shouldUseTUI(mode) && !quiet {
			results, err = runOptimizeWithUI(ctx, "cinder opt", files, run)
		} else {
			results, err = run(nil)
		}
		if err != nil {
			return err
		}

		failed := 0
		out := cmd.OutOrStdout()
		for i := range results {
			res := &results[i]
			if res.Bag != nil {
				res.Bag.Sort()
				if !quiet || res.Bag.HasErrors() {
					diag.Pretty(out, res.Bag, res.FileSet, diag.PrettyOpts{Color: useColor, Context: true})
				}
			}
			if res.Err != nil {
				failed++
				continue
			}
			if !quiet && (res.FuncsCollected > 0 || res.GlobalsCollected > 0) {
				fmt.Fprintf(out, "collected %d functions, %d globals\n", res.FuncsCollected, res.GlobalsCollected)
			}
			if res.Emitted != "" {
				fmt.Fprint(out, res.Emitted)
			}
		}
		if timer != nil {
			printStageTimings(out, results[0].Timings)
			fmt.Fprint(out, timer.Summary())
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(results))
		}
		return nil
	},
}

// resolveOptions merges manifest settings with command-line overrides.
// Flags win when set; otherwise the nearest cinder.toml supplies defaults.
func resolveOptions(target string, maxDiags int) (*driver.Options, error) {
	startDir := target
	if strings.HasSuffix(target, ".cir") {
		startDir = filepath.Dir(target)
	}
	opts := &driver.Options{
		MaxDiagnostics: maxDiags,
		Entry:          "main",
		CollectGlobals: 1,
		Emit:           pipeline.EmitText,
	}
	manifest, found, err := project.Load(startDir)
	if err != nil {
		return nil, err
	}
	if found {
		cfg := manifest.Config.Optimize
		opts.Entry = cfg.Entry
		opts.CollectGlobals = cfg.CollectGlobals
		opts.AssumePure = cfg.AssumePure
		opts.Emit = pipeline.EmitMode(cfg.Emit)
	}
	if optEntry != "" {
		opts.Entry = optEntry
	}
	if optCollectGlobals >= 0 {
		opts.CollectGlobals = optCollectGlobals
	}
	switch optEmit {
	case "":
	case "text":
		opts.Emit = pipeline.EmitText
	case "none":
		opts.Emit = pipeline.EmitNone
	default:
		return nil, fmt.Errorf("invalid --emit value %q (expected text|none)", optEmit)
	}
	if !optNoCache {
		cache, err := driver.OpenDiskCache("cinder")
		if err == nil {
			opts.Cache = cache
		}
		// A cache that cannot be opened just means fresh runs.
	}
	return opts, nil
}

func readColorMode(value string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stdout), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}
