// Command grhc is a thin demonstration driver wiring Elaborator ->
// PassManager -> Emitter end to end, mirroring the teacher's
// samples/*/main.go convention of a flag-parsed entry point cleaned up via
// tebeka/atexit. It is demonstration glue, not a production CLI (SPEC_FULL.md
// §6): it accepts an already-elaborated astiface.Unit (the built-in
// demoUnit) rather than parsing SystemVerilog source files itself, the
// front end being out of scope per spec.md §1.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/grhc/internal/diag"
	"github.com/sarchlab/grhc/internal/elaborate"
	"github.com/sarchlab/grhc/internal/emit"
	"github.com/sarchlab/grhc/internal/pass"
	"github.com/sarchlab/grhc/internal/pipelinecfg"
	"github.com/sarchlab/grhc/internal/report"
)

// exit codes from spec.md §6.
const (
	exitSuccess     = 0
	exitCLIError    = 1
	exitOptionError = 2
	// exitSourceParseError = 3 (unused: this driver never parses SystemVerilog)
	exitAnalysisError = 4
)

func main() {
	var tops repeatableFlag
	outputPath := flag.String("o", "", "output file for emitted SystemVerilog (default stdout)")
	pipelinePath := flag.String("pipeline", "", "YAML pass-pipeline file (default: built-in pipeline)")
	stopOnError := flag.Bool("stop-on-error", false, "halt the pipeline after the first failed pass or error diagnostic")
	verbosity := flag.Int("verbosity", 0, "pass verbosity level")
	showStats := flag.Bool("stats", false, "print the stats pass's per-op-kind report")
	showTiming := flag.Bool("timing", false, "print the pass-manager timing table")
	flag.Var(&tops, "top", "restrict emission to this module (may repeat)")
	flag.Parse()

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "grhc: positional source files are not accepted by this demo driver: %v\n", flag.Args())
		atexit.Exit(exitCLIError)
	}

	passes, stopFlag, verbosityFlag, err := resolvePipeline(*pipelinePath, *stopOnError, *verbosity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "grhc: %v\n", err)
		atexit.Exit(exitOptionError)
	}

	diagnostics := diag.New()
	elaborator := elaborate.New(diagnostics)
	nl, err := elaborator.Elaborate(demoUnit())
	if err != nil {
		fmt.Fprintf(os.Stderr, "grhc: elaboration failed: %v\n", err)
		atexit.Exit(exitAnalysisError)
	}

	logSink := slog.New(slog.NewTextHandler(os.Stderr, nil))
	manager := pass.NewManager(nl, diagnostics, logSink).
		SetStopOnError(stopFlag).
		SetVerbosity(verbosityFlag)
	for _, p := range passes {
		manager.Add(p)
	}
	result := manager.Run()

	if *showTiming {
		report.WriteTimingTable(os.Stdout, result)
	}
	if *showStats {
		for _, p := range passes {
			if stats, ok := p.(*pass.Stats); ok {
				report.WriteStatsTable(os.Stdout, stats.Report)
			}
		}
	}

	if !result.Success || diagnostics.HasErrors() {
		diagnostics.Drain(logSink)
		atexit.Exit(exitAnalysisError)
	}

	out := os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "grhc: %v\n", err)
			atexit.Exit(exitAnalysisError)
			return
		}
		defer f.Close()
		out = f
	}

	emitResult := emit.New().Emit(out, nl, emit.Options{Top: []string(tops)})
	for _, w := range emitResult.Warnings {
		fmt.Fprintf(os.Stderr, "grhc: warning: %s\n", w)
	}
	if !emitResult.Success {
		for _, e := range emitResult.Errors {
			fmt.Fprintf(os.Stderr, "grhc: error: %s\n", e)
		}
		atexit.Exit(exitAnalysisError)
	}

	atexit.Exit(exitSuccess)
}

// resolvePipeline loads the pipeline file when given, falling back to
// pipelinecfg.Default(); CLI stop-on-error/verbosity flags override the
// pipeline file's own settings only when explicitly passed as non-zero,
// matching the "CLI wins" convention spec.md §6 sketches for overrides.
func resolvePipeline(path string, stopOnError bool, verbosity int) ([]pass.Pass, bool, int, error) {
	if path == "" {
		return pipelinecfg.Default(), stopOnError, verbosity, nil
	}
	root, passes, err := pipelinecfg.Load(path)
	if err != nil {
		return nil, false, 0, err
	}
	effectiveStop := root.StopOnError || stopOnError
	effectiveVerbosity := verbosity
	if effectiveVerbosity == 0 {
		effectiveVerbosity = root.Verbosity
	}
	return passes, effectiveStop, effectiveVerbosity, nil
}
