package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"cinder/internal/driver"
	"cinder/internal/pipeline"
	"cinder/internal/ui"
)

type optOutcome struct {
	results []driver.FileResult
	err     error
}

// runOptimizeWithUI drives the run in a goroutine while Bubble Tea renders
// progress events on stdout. The event channel closes when the run returns,
// which quits the program.
func runOptimizeWithUI(ctx context.Context, title string, files []string, run func(pipeline.ProgressSink) ([]driver.FileResult, error)) ([]driver.FileResult, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan optOutcome, 1)

	go func() {
		results, err := run(pipeline.ChannelSink{Ch: events})
		outcomeCh <- optOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
