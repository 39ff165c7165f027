// Package pass implements the pass framework spec.md §4.8 describes: an
// immutable Pass identity, a PassContext handed to run() and relinquished
// after, and the PassManager driving an insertion-ordered pipeline.
package pass

import (
	"log/slog"

	"github.com/sarchlab/grhc/internal/diag"
	"github.com/sarchlab/grhc/internal/netlist"
)

// Result is what a single pass run reports back to the PassManager.
type Result struct {
	Changed bool
	Failed  bool
}

// Context is handed to a Pass's Run before it starts and is not valid to
// retain afterward. Diagnostics is a diag.PassView so every diagnostic a
// pass raises is automatically stamped with the pass's own name.
type Context struct {
	Netlist     *netlist.Netlist
	Diagnostics *diag.PassView
	Verbosity   int
	LogLevel    slog.Level
	LogSink     *slog.Logger
}

// Pass is one named, self-contained netlist rewrite or check. Id is a
// short stable identifier usable in pipeline configuration
// (internal/pipelinecfg); Name/Description are for human-facing reports.
type Pass interface {
	Id() string
	Name() string
	Description() string
	Run(ctx *Context) Result
}
