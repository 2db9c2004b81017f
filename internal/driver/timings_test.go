package driver

import (
	"strings"
	"testing"

	"soundlaw/internal/diag"
	"soundlaw/internal/observ"
)

func trackedTimer() *observ.Timer {
	timer := observ.NewTimer()
	stop := timer.Track("compile")
	stop("3 rules")
	return timer
}

func TestAppendTimings(t *testing.T) {
	bag := diag.NewBag(4)
	AppendTimings(bag, trackedTimer(), "apply", "changes.law")

	if bag.Len() != 1 {
		t.Fatalf("bag len = %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.ObsTimings || d.Severity != diag.SevInfo {
		t.Fatalf("diagnostic = %+v", d)
	}
	if !strings.Contains(d.Message, "timings (apply)") || !strings.Contains(d.Message, "changes.law") {
		t.Fatalf("message = %q", d.Message)
	}
	if len(d.Notes) != 1 || !strings.Contains(d.Notes[0].Msg, `"phases"`) {
		t.Fatalf("notes = %+v", d.Notes)
	}
}

func TestAppendTimingsFullBag(t *testing.T) {
	// Переполненный Bag расширяется: тайминги запрашивали явно.
	bag := diag.NewBag(0)
	AppendTimings(bag, trackedTimer(), "", "")

	if bag.Len() != 1 {
		t.Fatalf("bag len = %d", bag.Len())
	}
	if !strings.Contains(bag.Items()[0].Message, "timings (pipeline)") {
		t.Fatalf("message = %q", bag.Items()[0].Message)
	}
}

func TestAppendTimingsNoop(t *testing.T) {
	bag := diag.NewBag(4)

	AppendTimings(nil, trackedTimer(), "x", "")
	AppendTimings(bag, nil, "x", "")
	AppendTimings(bag, observ.NewTimer(), "x", "")

	if bag.Len() != 0 {
		t.Fatalf("bag len = %d, want 0", bag.Len())
	}
}
