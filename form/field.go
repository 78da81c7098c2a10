// Package form turns the inputs of the intake and quote forms into report
// records and email drafts.
//
// Forms are validated and sanitised here; the renderer draws whatever
// record it is given. Sanitize strips markup from free text, Validate checks
// presence and ranges, and Record builds the jobpdf.ReportRecord.
package form

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/revuapp/jobpdf"
)

// FieldType specifies the kind of input a form field holds.
type FieldType int

const (
	TypeText     FieldType = iota // single-line text
	TypeTextArea                  // multi-line text
	TypeChoice                    // one of Options
	TypeNumber                    // non-negative number
	TypeDate                      // calendar date
)

// Field describes one input of a form and the checks it must pass.
type Field struct {
	Name     string    // key used in JSON and YAML
	Label    string    // label shown on the report
	Type     FieldType // input kind
	Options  []string  // allowed values for TypeChoice
	MaxLen   int       // maximum length in characters (0 = unlimited)
	Max      float64   // upper bound for TypeNumber (0 = unbounded)
	Required bool      // whether the field must be filled in
}

// FieldError names a field that failed validation.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationError lists every field of a form that failed validation.
type ValidationError struct {
	Form     string
	Problems []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Error()
	}
	return fmt.Sprintf("form: invalid %s form: %s", e.Form, strings.Join(parts, "; "))
}

// Unwrap reports a ValidationError as an invalid record.
func (e *ValidationError) Unwrap() error {
	return jobpdf.ErrInvalidRecord
}

// checker collects field problems for one form.
type checker struct {
	problems []FieldError
}

func (c *checker) add(name, format string, args ...any) {
	c.problems = append(c.problems, FieldError{Field: name, Reason: fmt.Sprintf(format, args...)})
}

// text checks a text or choice value against f.
func (c *checker) text(f Field, v string) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		if f.Required {
			c.add(f.Name, "required")
		}
		return
	case f.MaxLen > 0 && utf8.RuneCountInString(v) > f.MaxLen:
		c.add(f.Name, "longer than %d characters", f.MaxLen)
	}
	if f.Type == TypeChoice && !slices.Contains(f.Options, v) {
		c.add(f.Name, "must be one of %s", strings.Join(f.Options, ", "))
	}
}

// number checks a numeric value against f.
func (c *checker) number(f Field, v float64) {
	switch {
	case v < 0:
		c.add(f.Name, "must not be negative")
	case f.Max > 0 && v > f.Max:
		c.add(f.Name, "must not exceed %g", f.Max)
	}
}

func (c *checker) err(form string) error {
	if len(c.problems) == 0 {
		return nil
	}
	return &ValidationError{Form: form, Problems: c.problems}
}
