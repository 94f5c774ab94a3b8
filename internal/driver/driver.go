// Package driver runs the optimization pipeline over files and directories
// and manages the result cache.
package driver

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"

	"cinder/internal/diag"
	"cinder/internal/observ"
	"cinder/internal/pipeline"
	"cinder/internal/source"
)

// Options configures one driver run. The zero value is usable: entry
// defaults to main, output to textual IR, caching off.
type Options struct {
	MaxDiagnostics int
	Entry          string
	CollectGlobals int
	AssumePure     []string
	Emit           pipeline.EmitMode
	Progress       pipeline.ProgressSink
	Timer          *observ.Timer
	Cache          *DiskCache
}

// FileResult is the outcome of optimizing a single file.
type FileResult struct {
	Path    string
	Bag     *diag.Bag
	FileSet *source.FileSet

	Erased           int
	FuncsCollected   int
	GlobalsCollected int
	Emitted          string

	FromCache bool
	Timings   pipeline.Timings
	Err       error
}

// OptimizeFile runs the pipeline for a single file, consulting the disk
// cache first when one is configured. Only clean runs are cached, so a hit
// carries the result counts and output but no diagnostics beyond the
// summary line.
func OptimizeFile(ctx context.Context, path string, opts *Options) (FileResult, error) {
	if opts == nil {
		opts = &Options{}
	}
	result := FileResult{Path: path}

	var key Digest
	var content []byte
	if opts.Cache != nil {
		var err error
		content, err = os.ReadFile(path)
		if err != nil {
			result.Err = err
			return result, err
		}
		key = CacheKey(content, opts)
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err == nil && hit {
			result.FromCache = true
			result.Erased = payload.Erased
			result.FuncsCollected = payload.FuncsCollected
			result.GlobalsCollected = payload.GlobalsCollected
			result.Emitted = payload.Emitted
			result.Bag = diag.NewBag(1)
			result.Bag.Addf(diag.SevInfo, diag.OptInfo, source.Span{},
				"dead code pass erased %d instructions", result.Erased)
			return result, nil
		}
		// Cache read failures fall through to a fresh run.
	}

	res, err := pipeline.Optimize(ctx, &pipeline.Request{
		Path:           path,
		MaxDiagnostics: opts.MaxDiagnostics,
		Entry:          opts.Entry,
		CollectGlobals: opts.CollectGlobals,
		AssumePure:     opts.AssumePure,
		Emit:           opts.Emit,
		Progress:       opts.Progress,
		Timer:          opts.Timer,
	})
	result.Bag = res.Bag
	result.FileSet = res.FileSet
	result.Erased = res.Erased
	result.FuncsCollected = res.FuncsCollected
	result.GlobalsCollected = res.GlobalsCollected
	result.Emitted = res.Emitted
	result.Timings = res.Timings
	if err != nil {
		result.Err = err
		return result, err
	}

	if opts.Cache != nil && result.Bag != nil && !result.Bag.HasErrors() {
		if putErr := opts.Cache.Put(key, &DiskPayload{
			Schema:           diskCacheSchemaVersion,
			Path:             path,
			ContentHash:      sha256.Sum256(content),
			Erased:           result.Erased,
			FuncsCollected:   result.FuncsCollected,
			GlobalsCollected: result.GlobalsCollected,
			Emitted:          result.Emitted,
		}); putErr != nil {
			// A broken cache never fails the run.
			fmt.Fprintf(os.Stderr, "cache write failed: %v\n", putErr)
		}
	}
	return result, nil
}
