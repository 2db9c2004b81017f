package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a pipeline phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events as the pipeline moves through load,
// parse, compile and apply. Вызывается синхронно из горутины драйвера.
type PhaseObserver func(PhaseEvent)

// begin emits the start of a phase and returns the closure emitting its
// end with the elapsed time. Nil observers yield no-ops.
func (obs PhaseObserver) begin(name string) func() {
	if obs == nil {
		return func() {}
	}
	start := time.Now()
	obs(PhaseEvent{Name: name, Status: PhaseStart})
	return func() {
		obs(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(start)})
	}
}
