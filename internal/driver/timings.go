package driver

import (
	"encoding/json"
	"fmt"

	"soundlaw/internal/diag"
	"soundlaw/internal/observ"
	"soundlaw/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// AppendTimings кладёт отчёт таймера в Bag информационной диагностикой,
// чтобы таймингам не нужен был отдельный канал вывода. The JSON payload
// rides along as a note for machine-readable output.
func AppendTimings(bag *diag.Bag, timer *observ.Timer, kind, path string) {
	if bag == nil || timer == nil {
		return
	}
	report := timer.Report()
	if len(report.Phases) == 0 {
		return
	}
	payload := timingPayload{
		Kind:    kind,
		Path:    path,
		TotalMS: report.TotalMS,
		Phases:  report.Phases,
	}
	if payload.Kind == "" {
		payload.Kind = "pipeline"
	}

	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s — %s", msg, payload.Path)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	entry := diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  msg,
		Primary:  source.Span{},
		Notes: []diag.Note{
			{Span: source.Span{}, Msg: string(data)},
		},
	}

	if bag.Add(entry) {
		return
	}
	// Bag переполнен: расширяем лимит, тайминги запрашивали явно.
	overflow := diag.NewBag(len(bag.Items()) + 1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
