// Package pipeline orchestrates the optimization process.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cinder/internal/diag"
	"cinder/internal/ir"
	"cinder/internal/irtext"
	"cinder/internal/observ"
	"cinder/internal/opt"
	"cinder/internal/purity"
	"cinder/internal/source"
)

// Request configures one file's run through the pipeline.
type Request struct {
	Path           string
	MaxDiagnostics int
	Entry          string
	CollectGlobals int
	AssumePure     []string
	Emit           EmitMode
	Progress       ProgressSink
	Timer          *observ.Timer
}

// Result captures pipeline artefacts and stage timings.
type Result struct {
	Module  *ir.Module
	FileSet *source.FileSet
	Bag     *diag.Bag

	Erased           int
	FuncsCollected   int
	GlobalsCollected int
	Emitted          string

	Timings Timings
}

// Optimize runs parse, purity analysis, dead-code elimination and emission
// for a single file. Diagnostics are collected in Result.Bag; a parse with
// errors stops the pipeline and returns an error.
func Optimize(ctx context.Context, req *Request) (Result, error) {
	var result Result
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing optimize request")
	}
	if req.Path == "" {
		return result, fmt.Errorf("missing target path")
	}
	maxDiags := req.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = 256
	}
	entry := req.Entry
	if entry == "" {
		entry = "main"
	}
	if req.Emit == "" {
		req2 := *req
		req2.Emit = EmitText
		req = &req2
	}

	result.FileSet = source.NewFileSet()
	result.Bag = diag.NewBag(maxDiags)

	emit := func(stage Stage, status Status, err error, elapsed time.Duration) {
		if req.Progress != nil {
			req.Progress.OnEvent(Event{File: req.Path, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
		}
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	// Parse.
	emit(StageParse, StatusWorking, nil, 0)
	stop := timerPhase(req.Timer, string(StageParse))
	start := time.Now()
	fid, err := result.FileSet.Load(req.Path)
	if err != nil {
		emit(StageParse, StatusError, err, time.Since(start))
		stop("")
		return result, err
	}
	mod := irtext.Parse(result.FileSet.Get(fid), result.Bag)
	result.Timings.Set(StageParse, time.Since(start))
	stop(fmt.Sprintf("%d diagnostics", result.Bag.Len()))
	if mod == nil {
		err = fmt.Errorf("%s: parse failed with %d diagnostics", req.Path, result.Bag.Len())
		emit(StageParse, StatusError, err, result.Timings.Duration(StageParse))
		return result, err
	}
	result.Module = mod
	emit(StageParse, StatusDone, nil, result.Timings.Duration(StageParse))
	if err := ctx.Err(); err != nil {
		return result, err
	}

	// Analyze.
	emit(StageAnalyze, StatusWorking, nil, 0)
	stop = timerPhase(req.Timer, string(StageAnalyze))
	start = time.Now()
	facts := purity.Analyze(mod, req.AssumePure...)
	result.Timings.Set(StageAnalyze, time.Since(start))
	stop("")
	emit(StageAnalyze, StatusDone, nil, result.Timings.Duration(StageAnalyze))
	if err := ctx.Err(); err != nil {
		return result, err
	}

	// Optimize.
	emit(StageOptimize, StatusWorking, nil, 0)
	stop = timerPhase(req.Timer, string(StageOptimize))
	start = time.Now()
	result.Erased = opt.NewDeadCode(mod, facts, result.Bag).Run()
	for i := 0; i < req.CollectGlobals; i++ {
		funcs, globals := opt.CollectGlobals(mod, entry)
		result.FuncsCollected += funcs
		result.GlobalsCollected += globals
		if funcs == 0 && globals == 0 {
			break
		}
	}
	result.Timings.Set(StageOptimize, time.Since(start))
	stop(fmt.Sprintf("erased %d", result.Erased))
	result.Bag.Addf(diag.SevInfo, diag.OptInfo, source.Span{},
		"dead code pass erased %d instructions", result.Erased)
	emit(StageOptimize, StatusDone, nil, result.Timings.Duration(StageOptimize))
	if err := ctx.Err(); err != nil {
		return result, err
	}

	// Emit.
	emit(StageEmit, StatusWorking, nil, 0)
	stop = timerPhase(req.Timer, string(StageEmit))
	start = time.Now()
	if req.Emit == EmitText {
		var sb strings.Builder
		if err := ir.DumpModule(&sb, mod); err != nil {
			result.Timings.Set(StageEmit, time.Since(start))
			stop("")
			emit(StageEmit, StatusError, err, result.Timings.Duration(StageEmit))
			return result, err
		}
		result.Emitted = sb.String()
	}
	result.Timings.Set(StageEmit, time.Since(start))
	stop("")
	emit(StageEmit, StatusDone, nil, result.Timings.Duration(StageEmit))
	return result, nil
}

func timerPhase(t *observ.Timer, name string) func(string) {
	if t == nil {
		return func(string) {}
	}
	return t.Phase(name)
}
