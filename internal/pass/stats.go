package pass

import (
	"os"
	"runtime"
	"sort"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/sarchlab/grhc/internal/grh"
)

// OpKindCount is one row of the stats pass's per-op-kind histogram.
type OpKindCount struct {
	Kind  string
	Count int
}

// ProcessSnapshot is the optional process-resource sample the stats pass
// attaches to its report (SPEC_FULL.md §5.1): purely informational, never
// consulted by any other pass and never affecting Changed/Failed.
type ProcessSnapshot struct {
	RSSBytes   uint64
	Goroutines int
	Sampled    bool
}

// StatsReport is what the stats pass leaves behind for internal/report to
// render; it is not itself part of the Netlist.
type StatsReport struct {
	PerGraph map[string][]OpKindCount
	Process  ProcessSnapshot
}

// Stats is the read-only stats pass (spec.md §4.8): emits counts per
// op-kind via logs and never mutates the graph. Report, once Run has
// executed, holds the same data structured for internal/report's table
// renderer.
type Stats struct {
	Report StatsReport
}

func (*Stats) Id() string          { return "stats" }
func (*Stats) Name() string        { return "Statistics" }
func (*Stats) Description() string { return "Read-only per-op-kind counts and process resource sampling." }

func (p *Stats) Run(ctx *Context) Result {
	perGraph := make(map[string][]OpKindCount)
	for _, sym := range ctx.Netlist.GraphOrder() {
		g, ok := ctx.Netlist.Graph(sym)
		if !ok {
			continue
		}
		counts := make(map[grh.Kind]int)
		for _, op := range g.Operations() {
			counts[op.Kind()]++
		}
		graphName := g.Symbols().Text(sym)
		rows := make([]OpKindCount, 0, len(counts))
		for k, n := range counts {
			rows = append(rows, OpKindCount{Kind: k.String(), Count: n})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Kind < rows[j].Kind })
		perGraph[graphName] = rows

		if ctx.LogSink != nil {
			for _, r := range rows {
				ctx.LogSink.Info("op-kind count", "graph", graphName, "kind", r.Kind, "count", r.Count)
			}
		}
	}

	p.Report = StatsReport{PerGraph: perGraph, Process: sampleProcess()}
	if ctx.LogSink != nil && p.Report.Process.Sampled {
		ctx.LogSink.Info("process snapshot",
			"rssBytes", p.Report.Process.RSSBytes,
			"goroutines", p.Report.Process.Goroutines)
	}

	return Result{}
}

func sampleProcess() ProcessSnapshot {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return ProcessSnapshot{}
	}
	mem, err := proc.MemoryInfo()
	if err != nil || mem == nil {
		return ProcessSnapshot{}
	}
	return ProcessSnapshot{
		RSSBytes:   mem.RSS,
		Goroutines: runtime.NumGoroutine(),
		Sampled:    true,
	}
}
