package diagnostic

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"mapper-engine/internal/common"
)

// Diagnostics collects the problems found in one validation pass.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic is a single problem.
type Diagnostic struct {
	Severity Severity
	// Code identifies the kind of problem, e.g. "unknown_input_field".
	Code    string
	Message string
	// Side is the tree the problem was found in, empty for document-level
	// problems.
	Side common.Side
	// FieldPath is the serialized path of the field concerned, if any.
	FieldPath string
	// Suggestions are existing paths close to a missing one.
	Suggestions []string
}

// Severity orders diagnostics from notice to blocking error.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Add files d under its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case SeverityError:
		d.Errors = append(d.Errors, diag)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError records a problem that blocks submission.
func (d *Diagnostics) AddError(code, message string, side common.Side, fieldPath string, suggestions ...string) {
	d.Add(Diagnostic{SeverityError, code, message, side, fieldPath, suggestions})
}

// AddWarning records a problem the mapper can be submitted with.
func (d *Diagnostics) AddWarning(code, message string, side common.Side, fieldPath string, suggestions ...string) {
	d.Add(Diagnostic{SeverityWarning, code, message, side, fieldPath, suggestions})
}

// AddInfo records a notice.
func (d *Diagnostics) AddInfo(code, message string, side common.Side, fieldPath string) {
	d.Add(Diagnostic{Severity: SeverityInfo, Code: code, Message: message, Side: side, FieldPath: fieldPath})
}

func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// IsValid reports whether nothing blocks submission.
func (d *Diagnostics) IsValid() bool {
	return !d.HasErrors()
}

// Merge appends every diagnostic of other.
func (d *Diagnostics) Merge(other Diagnostics) {
	for diag := range other.All() {
		d.Add(diag)
	}
}

// All yields errors first, then warnings, then notices.
func (d *Diagnostics) All() iter.Seq[Diagnostic] {
	return func(yield func(Diagnostic) bool) {
		for _, group := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
			for _, diag := range group {
				if !yield(diag) {
					return
				}
			}
		}
	}
}

// Count returns how many diagnostics of any severity carry code.
func (d *Diagnostics) Count(code string) int {
	n := 0

	for diag := range d.All() {
		if diag.Code == code {
			n++
		}
	}

	return n
}

// Len returns the number of diagnostics of every severity.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// Error joins the error diagnostics, nil when there are none.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String renders "[side] path: [code] message (did you mean ...?)".
func (d Diagnostic) String() string {
	var b strings.Builder

	if d.Side != "" {
		fmt.Fprintf(&b, "[%s] ", d.Side)
	}

	if d.FieldPath != "" {
		b.WriteString(d.FieldPath)
		b.WriteString(": ")
	}

	if d.Code != "" {
		fmt.Fprintf(&b, "[%s] ", d.Code)
	}

	b.WriteString(d.Message)

	if len(d.Suggestions) > 0 {
		fmt.Fprintf(&b, " (did you mean %s?)", strings.Join(d.Suggestions, ", "))
	}

	return b.String()
}
