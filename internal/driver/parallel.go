package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ListCIRFiles returns the sorted list of all *.cir files under dir.
func ListCIRFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".cir") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Deterministic order regardless of walk internals.
	sort.Strings(files)
	return files, nil
}

// OptimizeDir optimizes every *.cir file under dir, at most jobs files in
// flight at once (GOMAXPROCS when jobs <= 0). Results come back in sorted
// file order; per-file failures are recorded in FileResult.Err rather than
// aborting the whole run. The returned error reports walk failures or
// context cancellation only.
func OptimizeDir(ctx context.Context, dir string, opts *Options, jobs int) ([]FileResult, error) {
	files, err := ListCIRFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if opts != nil && opts.Timer != nil {
		// The phase timer is not safe for concurrent use.
		o := *opts
		o.Timer = nil
		opts = &o
	}

	// Each goroutine writes a distinct index, no mutex needed.
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, _ := OptimizeFile(gctx, path, opts)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
