package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerPhases(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("parse")
	time.Sleep(time.Millisecond)
	tm.End(idx, "1 file")

	stop := tm.Phase("optimize")
	stop("erased 3")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(report.Phases))
	}
	if report.Phases[0].Name != "parse" || report.Phases[0].Note != "1 file" {
		t.Errorf("first phase = %+v", report.Phases[0])
	}
	if report.Phases[0].DurationMS <= 0 {
		t.Errorf("parse duration must be positive, got %f", report.Phases[0].DurationMS)
	}
	if report.TotalMS < report.Phases[0].DurationMS {
		t.Errorf("total %f must cover the parse phase %f", report.TotalMS, report.Phases[0].DurationMS)
	}

	summary := tm.Summary()
	for _, want := range []string{"parse", "optimize", "erased 3", "total"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "ignored")
	if got := tm.Report(); len(got.Phases) != 0 {
		t.Errorf("out-of-range End must be a no-op, got %+v", got)
	}
}
