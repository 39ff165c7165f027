package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/sarchlab/grhc/internal/pass"
	"github.com/sarchlab/grhc/internal/report"
)

func TestWriteTimingTableRendersEachPass(t *testing.T) {
	result := pass.ManagerResult{
		Success: true,
		Changed: true,
		Timings: []pass.PassTiming{
			{Id: "const-inline", Elapsed: 2 * time.Millisecond, Changed: true},
			{Id: "stats", Elapsed: 500 * time.Microsecond},
		},
	}

	var sb strings.Builder
	report.WriteTimingTable(&sb, result)
	out := sb.String()

	if !strings.Contains(out, "const-inline") || !strings.Contains(out, "stats") {
		t.Errorf("expected both pass ids in output:\n%s", out)
	}
}

func TestWriteStatsTableRendersPerGraphCounts(t *testing.T) {
	statsReport := pass.StatsReport{
		PerGraph: map[string][]pass.OpKindCount{
			"top": {{Kind: "Add", Count: 3}, {Kind: "Mux", Count: 1}},
		},
		Process: pass.ProcessSnapshot{RSSBytes: 1024, Goroutines: 4, Sampled: true},
	}

	var sb strings.Builder
	report.WriteStatsTable(&sb, statsReport)
	out := sb.String()

	if !strings.Contains(out, "top") {
		t.Errorf("expected graph name in output:\n%s", out)
	}
	if !strings.Contains(out, "Add") || !strings.Contains(out, "Mux") {
		t.Errorf("expected op-kind rows in output:\n%s", out)
	}
	if !strings.Contains(out, "rss=1024") {
		t.Errorf("expected process snapshot line:\n%s", out)
	}
}

func TestWriteStatsTableSkipsProcessLineWhenNotSampled(t *testing.T) {
	statsReport := pass.StatsReport{
		PerGraph: map[string][]pass.OpKindCount{"leaf": {{Kind: "Constant", Count: 1}}},
	}

	var sb strings.Builder
	report.WriteStatsTable(&sb, statsReport)
	if strings.Contains(sb.String(), "process:") {
		t.Errorf("did not expect a process line when not sampled:\n%s", sb.String())
	}
}
