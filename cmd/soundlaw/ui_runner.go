package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"soundlaw/internal/apply"
	"soundlaw/internal/driver"
	"soundlaw/internal/ui"
)

type applyOutcome struct {
	result *driver.ApplyResult
	err    error
}

// applyRunner runs the pipeline, writing word progress to events and phase
// boundaries to the observer. Either may be nil.
type applyRunner func(ctx context.Context, events chan<- apply.Event, obs driver.PhaseObserver) (*driver.ApplyResult, error)

// runApplyWithUI runs the apply pipeline behind a progress TUI. Конвейер
// пишет события в канал; закрытие канала после записи исхода переводит
// модель в done.
func runApplyWithUI(ctx context.Context, title string, ruleTexts []string, run applyRunner) (*driver.ApplyResult, error) {
	events := make(chan apply.Event, 256)
	phases := make(chan string, 8)
	outcomeCh := make(chan applyOutcome, 1)

	obs := driver.PhaseObserver(func(ev driver.PhaseEvent) {
		if ev.Status != driver.PhaseStart {
			return
		}
		// Отставшая отрисовка не должна тормозить конвейер.
		select {
		case phases <- ev.Name:
		default:
		}
	})

	go func() {
		res, err := run(ctx, events, obs)
		outcomeCh <- applyOutcome{result: res, err: err}
		close(events)
		close(phases)
	}()

	model := ui.NewProgressModel(title, ruleTexts, events, phases)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
