// Package report renders the stats pass's per-op-kind histogram and the
// PassManager's per-pass timing as aligned tables, grounded on the
// teacher's table.NewWriter()/AppendHeader()/AppendRow()/Render() pattern
// from core/util.go's PrintState (jedib0t/go-pretty/v6/table), the same
// dependency the teacher already carries.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/grhc/internal/pass"
)

// WriteTimingTable renders one row per pass run, in run order, with its
// elapsed time and changed/failed outcome.
func WriteTimingTable(w io.Writer, result pass.ManagerResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Pass Timing")
	t.AppendHeader(table.Row{"Pass", "Elapsed", "Changed", "Failed"})
	for _, timing := range result.Timings {
		t.AppendRow(table.Row{timing.Id, timing.Elapsed.String(), timing.Changed, timing.Failed})
	}
	t.AppendFooter(table.Row{"Overall", "", result.Changed, !result.Success})
	t.Render()
}

// WriteStatsTable renders one table per graph, each row a (kind, count)
// pair sorted by kind, followed by the process snapshot line if the stats
// pass managed to sample one (SPEC_FULL.md §5.1).
func WriteStatsTable(w io.Writer, statsReport pass.StatsReport) {
	graphNames := make([]string, 0, len(statsReport.PerGraph))
	for name := range statsReport.PerGraph {
		graphNames = append(graphNames, name)
	}
	sort.Strings(graphNames)

	for _, name := range graphNames {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle(fmt.Sprintf("Op-kind counts: %s", name))
		t.AppendHeader(table.Row{"Kind", "Count"})
		for _, row := range statsReport.PerGraph[name] {
			t.AppendRow(table.Row{row.Kind, row.Count})
		}
		t.Render()
	}

	if statsReport.Process.Sampled {
		fmt.Fprintf(w, "process: rss=%d bytes, goroutines=%d\n",
			statsReport.Process.RSSBytes, statsReport.Process.Goroutines)
	}
}
