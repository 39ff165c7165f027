// Package diag implements the leveled diagnostics spec.md §7 describes:
// Elaboration kinds (Todo, NotYetImplemented, Conflict, Unsupported), Pass
// kinds (Debug, Info, Warning, Todo, Error), and Emission kinds (Warning,
// Error). Severities are modeled as extra log/slog levels, grounded on the
// teacher's core/util.go pattern of defining LevelTrace/LevelWaveform
// alongside the stdlib slog levels.
package diag

import (
	"context"
	"fmt"
	"log/slog"
)

// Extra severities slotted between the standard slog levels, the same way
// the teacher's core/util.go defines LevelTrace/LevelWaveform relative to
// slog.LevelInfo.
const (
	LevelTodo              slog.Level = slog.LevelDebug + 1
	LevelNotYetImplemented slog.Level = slog.LevelDebug + 2
)

// Kind is the closed set of diagnostic kinds from spec.md §7.
type Kind string

const (
	KindTodo              Kind = "Todo"
	KindNotYetImplemented Kind = "NotYetImplemented"
	KindConflict          Kind = "Conflict"
	KindUnsupported       Kind = "Unsupported"
	KindDebug             Kind = "Debug"
	KindInfo              Kind = "Info"
	KindWarning           Kind = "Warning"
	KindError             Kind = "Error"
)

// severity maps each Kind to the slog.Level used when draining into a
// handler.
func (k Kind) severity() slog.Level {
	switch k {
	case KindDebug:
		return slog.LevelDebug
	case KindTodo:
		return LevelTodo
	case KindNotYetImplemented:
		return LevelNotYetImplemented
	case KindInfo:
		return slog.LevelInfo
	case KindWarning, KindConflict, KindUnsupported:
		return slog.LevelWarn
	case KindError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsError reports whether this kind halts a pass pipeline configured with
// stopOnError (spec.md §7: "Only Error halts on stopOnError").
func (k Kind) IsError() bool { return k == KindError }

// Diagnostic is a single leveled diagnostic. Context is of the form
// "<graph>::<opOrValue>" per spec.md §7; Pass is filled in by the pass
// framework when a diagnostic is raised from inside a pass run.
type Diagnostic struct {
	Kind    Kind
	Message string
	Context string
	Pass    string
	SrcLoc  string
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s", d.Kind, d.Message)
	if d.Context != "" {
		s += fmt.Sprintf(" (%s)", d.Context)
	}
	if d.Pass != "" {
		s = fmt.Sprintf("[%s] %s", d.Pass, s)
	}
	return s
}

// Diagnostics is an append-only buffer of Diagnostic records. Spec.md §5
// requires it stay append-only during a pass and never be read by passes;
// callers enforce that by only exposing Append to pass code and reserving
// the read accessors for the driving PassManager/tests.
type Diagnostics struct {
	records []Diagnostic
}

// New creates an empty Diagnostics buffer.
func New() *Diagnostics { return &Diagnostics{} }

// Append records a diagnostic.
func (d *Diagnostics) Append(rec Diagnostic) { d.records = append(d.records, rec) }

// Todof is a convenience wrapper building a Todo diagnostic.
func (d *Diagnostics) Todof(context, format string, args ...any) {
	d.Append(Diagnostic{Kind: KindTodo, Message: fmt.Sprintf(format, args...), Context: context})
}

// NotYetImplementedf is a convenience wrapper building a NotYetImplemented
// diagnostic.
func (d *Diagnostics) NotYetImplementedf(context, format string, args ...any) {
	d.Append(Diagnostic{Kind: KindNotYetImplemented, Message: fmt.Sprintf(format, args...), Context: context})
}

// Conflictf is a convenience wrapper building a Conflict diagnostic.
func (d *Diagnostics) Conflictf(context, format string, args ...any) {
	d.Append(Diagnostic{Kind: KindConflict, Message: fmt.Sprintf(format, args...), Context: context})
}

// Unsupportedf is a convenience wrapper building an Unsupported diagnostic.
func (d *Diagnostics) Unsupportedf(context, format string, args ...any) {
	d.Append(Diagnostic{Kind: KindUnsupported, Message: fmt.Sprintf(format, args...), Context: context})
}

// Warnf is a convenience wrapper building a Warning diagnostic.
func (d *Diagnostics) Warnf(context, format string, args ...any) {
	d.Append(Diagnostic{Kind: KindWarning, Message: fmt.Sprintf(format, args...), Context: context})
}

// Errorf is a convenience wrapper building an Error diagnostic.
func (d *Diagnostics) Errorf(context, format string, args ...any) {
	d.Append(Diagnostic{Kind: KindError, Message: fmt.Sprintf(format, args...), Context: context})
}

// Infof is a convenience wrapper building an Info diagnostic.
func (d *Diagnostics) Infof(context, format string, args ...any) {
	d.Append(Diagnostic{Kind: KindInfo, Message: fmt.Sprintf(format, args...), Context: context})
}

// All returns every recorded diagnostic, in recording order.
func (d *Diagnostics) All() []Diagnostic { return append([]Diagnostic(nil), d.records...) }

// HasErrors reports whether any Error-kind diagnostic was recorded.
func (d *Diagnostics) HasErrors() bool {
	for _, r := range d.records {
		if r.Kind.IsError() {
			return true
		}
	}
	return false
}

// Len reports how many diagnostics have been recorded.
func (d *Diagnostics) Len() int { return len(d.records) }

// Drain logs every recorded diagnostic to handler's logger, at the
// severity its Kind maps to, tagged with its pass name and context as
// structured attributes.
func (d *Diagnostics) Drain(logger *slog.Logger) {
	for _, r := range d.records {
		attrs := []any{}
		if r.Context != "" {
			attrs = append(attrs, slog.String("context", r.Context))
		}
		if r.Pass != "" {
			attrs = append(attrs, slog.String("pass", r.Pass))
		}
		if r.SrcLoc != "" {
			attrs = append(attrs, slog.String("srcloc", r.SrcLoc))
		}
		logger.Log(context.Background(), r.Kind.severity(), r.Message, attrs...)
	}
}

// PassView stamps every diagnostic appended through it with a fixed pass
// name before forwarding it to the shared buffer, used by the PassManager
// to inject pass identity (spec.md §7: "The pass framework additionally
// appends the pass name") without each Pass implementation doing it itself.
type PassView struct {
	buf  *Diagnostics
	pass string
}

// WithPass returns a PassView over d that tags every appended diagnostic
// with passName.
func (d *Diagnostics) WithPass(passName string) *PassView {
	return &PassView{buf: d, pass: passName}
}

// Append records a diagnostic, stamping it with this view's pass name.
func (v *PassView) Append(rec Diagnostic) {
	rec.Pass = v.pass
	v.buf.Append(rec)
}

func (v *PassView) Todof(context, format string, args ...any) {
	v.Append(Diagnostic{Kind: KindTodo, Message: fmt.Sprintf(format, args...), Context: context})
}

func (v *PassView) NotYetImplementedf(context, format string, args ...any) {
	v.Append(Diagnostic{Kind: KindNotYetImplemented, Message: fmt.Sprintf(format, args...), Context: context})
}

func (v *PassView) Warnf(context, format string, args ...any) {
	v.Append(Diagnostic{Kind: KindWarning, Message: fmt.Sprintf(format, args...), Context: context})
}

func (v *PassView) Errorf(context, format string, args ...any) {
	v.Append(Diagnostic{Kind: KindError, Message: fmt.Sprintf(format, args...), Context: context})
}

func (v *PassView) Infof(context, format string, args ...any) {
	v.Append(Diagnostic{Kind: KindInfo, Message: fmt.Sprintf(format, args...), Context: context})
}

func (v *PassView) Debugf(context, format string, args ...any) {
	v.Append(Diagnostic{Kind: KindDebug, Message: fmt.Sprintf(format, args...), Context: context})
}
