package main

import (
	"fmt"
	"io"
	"time"

	"cinder/internal/pipeline"
)

func printStageTimings(out io.Writer, timings pipeline.Timings) {
	if out == nil {
		return
	}
	if timings.Has(pipeline.StageParse) {
		fmt.Fprintf(out, "parsed %.1f ms\n", toMillis(timings.Duration(pipeline.StageParse)))
	}
	if timings.Has(pipeline.StageAnalyze) {
		fmt.Fprintf(out, "analyzed %.1f ms\n", toMillis(timings.Duration(pipeline.StageAnalyze)))
	}
	if timings.Has(pipeline.StageOptimize) {
		fmt.Fprintf(out, "optimized %.1f ms\n", toMillis(timings.Duration(pipeline.StageOptimize)))
	}
	if timings.Has(pipeline.StageEmit) {
		fmt.Fprintf(out, "emitted %.1f ms\n", toMillis(timings.Duration(pipeline.StageEmit)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
