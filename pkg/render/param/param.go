// Package param describes tunable render parameters.
//
// Renderers expose their parameters as a list of [Field] values that point
// into a parameter struct. The CLI binds each field to a flag, the HTTP
// server reads them from query strings, and the interactive tuner nudges
// them with the arrow keys, all without knowing the concrete struct.
package param

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/matzehuels/polytree/pkg/errors"
)

// Kind is the value type of a field.
type Kind uint8

const (
	KindNumber Kind = iota
	KindColor
	KindToggle
)

// Field is a named, settable parameter. Exactly one of Num, Str and Bool is
// set, matching Kind.
type Field struct {
	Name  string
	Usage string
	Kind  Kind
	Step  float64 // increment used by Nudge for numbers

	Num  *float64
	Str  *string
	Bool *bool
}

// Number returns a numeric field backed by p.
func Number(name, usage string, p *float64, step float64) Field {
	return Field{Name: name, Usage: usage, Kind: KindNumber, Step: step, Num: p}
}

// Color returns a hex color field backed by p.
func Color(name, usage string, p *string) Field {
	return Field{Name: name, Usage: usage, Kind: KindColor, Str: p}
}

// Toggle returns a boolean field backed by p.
func Toggle(name, usage string, p *bool) Field {
	return Field{Name: name, Usage: usage, Kind: KindToggle, Bool: p}
}

// String formats the current value.
func (f Field) String() string {
	switch f.Kind {
	case KindNumber:
		return strconv.FormatFloat(*f.Num, 'g', -1, 64)
	case KindColor:
		return *f.Str
	default:
		return strconv.FormatBool(*f.Bool)
	}
}

// Type names the value type, for flag help output.
func (f Field) Type() string {
	switch f.Kind {
	case KindNumber:
		return "float"
	case KindColor:
		return "color"
	default:
		return "bool"
	}
}

// Set parses s and stores it in the field.
func (f Field) Set(s string) error {
	s = strings.TrimSpace(s)
	switch f.Kind {
	case KindNumber:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidParameter, "%s: %q is not a finite number", f.Name, s)
		}
		*f.Num = v
	case KindColor:
		if err := errors.ValidateColor(f.Name, s); err != nil {
			return err
		}
		*f.Str = s
	default:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidParameter, "%s: %q is not a boolean", f.Name, s)
		}
		*f.Bool = v
	}
	return nil
}

// Nudge changes a number by steps increments of Step, or flips a toggle.
// Colors are left unchanged.
func (f Field) Nudge(steps int) {
	switch f.Kind {
	case KindNumber:
		v := *f.Num + float64(steps)*f.Step
		// Keep repeated nudges from accumulating float noise.
		*f.Num = math.Round(v*1e6) / 1e6
	case KindToggle:
		if steps != 0 {
			*f.Bool = !*f.Bool
		}
	}
}

// Validate checks the field's current value.
func (f Field) Validate() error {
	switch f.Kind {
	case KindNumber:
		if math.IsNaN(*f.Num) || math.IsInf(*f.Num, 0) {
			return errors.New(errors.ErrCodeInvalidParameter, "%s must be finite", f.Name)
		}
	case KindColor:
		return errors.ValidateColor(f.Name, *f.Str)
	}
	return nil
}

// Lookup finds the field called name.
func Lookup(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Apply sets every field named in values. Unknown names and bad values are
// all reported, combined into one error.
func Apply(fields []Field, values map[string]string) error {
	var err error
	for name, v := range values {
		f, ok := Lookup(fields, name)
		if !ok {
			err = multierr.Append(err, errors.New(errors.ErrCodeInvalidParameter, "unknown parameter %q", name))
			continue
		}
		err = multierr.Append(err, f.Set(v))
	}
	return err
}

// Validate checks every field and combines the failures.
func Validate(fields []Field) error {
	var err error
	for _, f := range fields {
		err = multierr.Append(err, f.Validate())
	}
	return err
}

// Positive returns an error if v is not strictly positive.
func Positive(name string, v float64) error {
	if !(v > 0) {
		return errors.New(errors.ErrCodeInvalidParameter, "%s must be positive, got %v", name, v)
	}
	return nil
}

// Describe formats fields as "name=value" pairs, one per line.
func Describe(fields []Field) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "%s=%s\n", f.Name, f)
	}
	return b.String()
}
