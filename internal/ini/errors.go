package ini

import (
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2"
)

// location identifies the line an error refers to.
type location struct {
	rng hcl.Range
	src []byte
}

// ParseError reports a line that does not match the construct expected by
// the current section, or a line whose effect violates the group hierarchy.
type ParseError struct {
	File string
	Line int
	// Text is the offending line without its line terminator.
	Text string
	// Expected names the construct the line should have been, such as
	// "host definition" or "key=value". Empty for hierarchy violations.
	Expected string
	// Err is the underlying cause, if any.
	Err error

	loc location
}

func (e *ParseError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("%s:%d: %v, got: %s", e.File, e.Line, e.Err, e.Text)
	}
	msg := fmt.Sprintf("%s:%d: expected comment, section, or %s, got: %s", e.File, e.Line, e.Expected, e.Text)
	if e.Err != nil {
		msg += " (" + e.Err.Error() + ")"
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Diagnostic converts the error into an HCL diagnostic pointing at the line.
func (e *ParseError) Diagnostic() *hcl.Diagnostic {
	summary := "Invalid inventory line"
	detail := fmt.Sprintf("Expected a comment, a section header, or a %s.", e.Expected)
	if e.Expected == "" {
		summary = "Invalid group hierarchy"
		detail = fmt.Sprintf("%v.", e.Err)
	} else if e.Err != nil {
		detail += fmt.Sprintf(" %v.", e.Err)
	}
	rng := e.loc.rng
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  &rng,
	}
}

// UnresolvedReferenceError reports a group that was only named by a ":vars"
// header or a ":children" line and never declared.
type UnresolvedReferenceError struct {
	File string
	// Line is where the forward reference was made.
	Line  int
	Group string
	// Kind is "vars" or "children".
	Kind string
	// Parent is the group whose ":children" section named Group.
	Parent string

	loc location
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Kind == kindChildren.String() {
		return fmt.Sprintf("%s:%d: can't include undefined group %s in group %s", e.File, e.Line, e.Group, e.Parent)
	}
	return fmt.Sprintf("%s:%d: can't define variables for undefined group %s", e.File, e.Line, e.Group)
}

// Diagnostic converts the error into an HCL diagnostic pointing at the
// referencing line.
func (e *UnresolvedReferenceError) Diagnostic() *hcl.Diagnostic {
	detail := fmt.Sprintf("Group %q has variables but is never declared with [%s] or [%s:children].", e.Group, e.Group, e.Group)
	if e.Kind == kindChildren.String() {
		detail = fmt.Sprintf("Group %q is listed as a child of %q but is never declared with [%s] or [%s:children].", e.Group, e.Parent, e.Group, e.Group)
	}
	rng := e.loc.rng
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Undefined group",
		Detail:   detail,
		Subject:  &rng,
	}
}

// Render writes err to w. Parse failures are printed with the offending
// source line; other errors are printed as plain text.
func Render(w io.Writer, err error, width uint, color bool) error {
	var (
		diag *hcl.Diagnostic
		loc  location
	)
	var parseErr *ParseError
	var refErr *UnresolvedReferenceError
	switch {
	case errors.As(err, &parseErr):
		diag, loc = parseErr.Diagnostic(), parseErr.loc
	case errors.As(err, &refErr):
		diag, loc = refErr.Diagnostic(), refErr.loc
	default:
		_, werr := fmt.Fprintln(w, err)
		return werr
	}

	files := map[string]*hcl.File{
		loc.rng.Filename: {Bytes: loc.src},
	}
	return hcl.NewDiagnosticTextWriter(w, files, width, color).WriteDiagnostic(diag)
}
