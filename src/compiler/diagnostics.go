package compiler

import (
	"fmt"
)

type Location struct {
	Index  int // file stream index
	Line   int // code line
	Column int // column on line
}

var locationZero = Location{0, 0, 0}

type PipelinePhase uint8

const (
	PipelineInternal PipelinePhase = iota
	PipelineTokenizer
	PipelinePass1
	PipelinePass2
	PipelineExport
)

type DiagnosticSeverity uint8

const (
	SeverityCritical DiagnosticSeverity = iota
	SeverityError
	SeverityWarning
	SeverityInfo
	SeverityVerbose
)

type Diagnostic struct {
	Source   string
	Message  string
	Location Location
	Phase    PipelinePhase
	Severity DiagnosticSeverity
}

func NewDiagnostic(source, message string, location Location, phase PipelinePhase, severity DiagnosticSeverity) *Diagnostic {
	return &Diagnostic{
		Source:   source,
		Message:  message,
		Location: location,
		Phase:    phase,
		Severity: severity,
	}
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.Source, d.Location.Line, d.Location.Column, d.Message)
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("%T", d)
}

// Diagnostics accumulates warnings and fatal errors across a pass, per
// §7's propagation policy: warnings never abort, fatals do, and both are
// available afterwards for the end-of-pass summary.
type Diagnostics struct {
	errors   []*Diagnostic
	warnings []*Diagnostic
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

func (d *Diagnostics) Fatal(source, message string, loc Location, phase PipelinePhase) *Diagnostic {
	diag := NewDiagnostic(source, message, loc, phase, SeverityError)
	d.errors = append(d.errors, diag)
	return diag
}

func (d *Diagnostics) Warn(source, message string, loc Location, phase PipelinePhase) *Diagnostic {
	diag := NewDiagnostic(source, message, loc, phase, SeverityWarning)
	d.warnings = append(d.warnings, diag)
	return diag
}

func (d *Diagnostics) HasErrors() bool { return len(d.errors) > 0 }

func (d *Diagnostics) Errors() []*Diagnostic { return d.errors }

func (d *Diagnostics) Warnings() []*Diagnostic { return d.warnings }

// Summary renders the end-of-pass warning/error counts required by §7.
func (d *Diagnostics) Summary(phase PipelinePhase) string {
	return fmt.Sprintf("%d warning(s), %d error(s)", len(d.warnings), len(d.errors))
}
