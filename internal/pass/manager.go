package pass

import (
	"log/slog"
	"time"

	"github.com/sarchlab/grhc/internal/diag"
	"github.com/sarchlab/grhc/internal/netlist"
)

// ManagerResult is the PassManager's final outcome after driving its whole
// pipeline (spec.md §4.8: "success: !anyFailure && !anyError, changed: or
// of changes").
type ManagerResult struct {
	Success bool
	Changed bool
	Timings []PassTiming
}

// PassTiming is one pass's wall-clock contribution to a Run, kept around so
// internal/report can render the same timing table the log sink already
// receives at Info, without re-running the pipeline.
type PassTiming struct {
	Id      string
	Elapsed time.Duration
	Changed bool
	Failed  bool
}

// Manager drives an insertion-ordered list of passes over one Netlist,
// sharing a single Diagnostics buffer across every pass run.
type Manager struct {
	passes      []Pass
	nl          *netlist.Netlist
	diagnostics *diag.Diagnostics
	stopOnError bool
	verbosity   int
	logLevel    slog.Level
	logSink     *slog.Logger
}

// NewManager creates a Manager over nl, appending every diagnostic any pass
// raises into diagnostics.
func NewManager(nl *netlist.Netlist, diagnostics *diag.Diagnostics, logSink *slog.Logger) *Manager {
	return &Manager{nl: nl, diagnostics: diagnostics, logSink: logSink}
}

// SetStopOnError controls whether the pipeline halts after the first
// failed pass or Error-level diagnostic (spec.md §4.8).
func (m *Manager) SetStopOnError(v bool) *Manager { m.stopOnError = v; return m }

// SetVerbosity and SetLogLevel configure the PassContext every pass
// receives; they are only read by passes that choose to use them (e.g.
// stats).
func (m *Manager) SetVerbosity(v int) *Manager          { m.verbosity = v; return m }
func (m *Manager) SetLogLevel(l slog.Level) *Manager    { m.logLevel = l; return m }

// Add appends p to the pipeline, in the order the pipeline will run it.
func (m *Manager) Add(p Pass) *Manager {
	m.passes = append(m.passes, p)
	return m
}

// Passes returns the pipeline's passes in run order.
func (m *Manager) Passes() []Pass { return append([]Pass(nil), m.passes...) }

// Run drives every pass in insertion order, measuring and logging each
// pass's wall-clock time at Info, and stops early once stopOnError is set
// and a pass either fails or raises an Error-level diagnostic.
func (m *Manager) Run() ManagerResult {
	var anyFailure, anyChange bool
	var timings []PassTiming
	errsBefore := 0
	for _, p := range m.passes {
		view := m.diagnostics.WithPass(p.Id())
		ctx := &Context{
			Netlist:     m.nl,
			Diagnostics: view,
			Verbosity:   m.verbosity,
			LogLevel:    m.logLevel,
			LogSink:     m.logSink,
		}

		start := time.Now()
		res := p.Run(ctx)
		elapsed := time.Since(start)

		if m.logSink != nil {
			m.logSink.Info("pass completed",
				slog.String("pass", p.Id()),
				slog.Duration("elapsed", elapsed),
				slog.Bool("changed", res.Changed),
				slog.Bool("failed", res.Failed))
		}

		anyChange = anyChange || res.Changed
		if res.Failed {
			anyFailure = true
		}
		timings = append(timings, PassTiming{Id: p.Id(), Elapsed: elapsed, Changed: res.Changed, Failed: res.Failed})

		newErrs := countNewErrors(m.diagnostics, errsBefore)
		errsBefore = m.diagnostics.Len()

		if m.stopOnError && (res.Failed || newErrs > 0) {
			break
		}
	}

	return ManagerResult{
		Success: !anyFailure && !m.diagnostics.HasErrors(),
		Changed: anyChange,
		Timings: timings,
	}
}

func countNewErrors(d *diag.Diagnostics, from int) int {
	all := d.All()
	n := 0
	for _, rec := range all[from:] {
		if rec.Kind.IsError() {
			n++
		}
	}
	return n
}
