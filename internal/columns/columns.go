// Package columns parses fixed-width lines and delimited records into typed
// rows from a declarative list of column specs.
//
// A Column names a field, says where it lives (a [Start,End) byte span for
// fixed-width input, or the field index Start for delimited input), lists the
// sentinel strings that mean "missing", and carries a setter that stores the
// parsed value into the destination row.
package columns

import (
	"fmt"
	"strconv"
	"strings"
)

// Column describes one field of a row of type T.
type Column[T any] struct {
	Name    string
	Start   int
	End     int
	Missing []string
	set     func(row *T, raw string) error
}

// ParseError reports the column and line that could not be parsed.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %s: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Table is an ordered set of columns applied uniformly to every input row.
type Table[T any] struct {
	Columns []Column[T]
}

// ParseLine applies the table to a fixed-width line. Spans running past the end
// of the line are clamped, so trailing blank columns read as empty.
func (t Table[T]) ParseLine(lineNo int, line string) (T, error) {
	var row T
	for _, c := range t.Columns {
		if err := c.apply(&row, span(line, c.Start, c.End)); err != nil {
			return row, &ParseError{Line: lineNo, Column: c.Name, Value: span(line, c.Start, c.End), Err: err}
		}
	}
	return row, nil
}

// ParseRecord applies the table to a delimited record, reading field Start for
// each column. Fields beyond the end of the record read as empty.
func (t Table[T]) ParseRecord(lineNo int, record []string) (T, error) {
	var row T
	for _, c := range t.Columns {
		var raw string
		if c.Start < len(record) {
			raw = record[c.Start]
		}
		if err := c.apply(&row, raw); err != nil {
			return row, &ParseError{Line: lineNo, Column: c.Name, Value: raw, Err: err}
		}
	}
	return row, nil
}

func (c Column[T]) apply(row *T, raw string) error {
	v := strings.TrimSpace(raw)
	for _, m := range c.Missing {
		if v == m {
			v = ""
			break
		}
	}
	return c.set(row, v)
}

func span(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

// Text stores the trimmed field as-is.
func Text[T any](name string, start, end int, field func(*T) *string) Column[T] {
	return Column[T]{Name: name, Start: start, End: end, set: func(row *T, v string) error {
		*field(row) = v
		return nil
	}}
}

// Float parses a required floating point field.
func Float[T any](name string, start, end int, field func(*T) *float64) Column[T] {
	return Column[T]{Name: name, Start: start, End: end, set: func(row *T, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*field(row) = f
		return nil
	}}
}

// OptionalFloat parses a floating point field that may be blank or equal to
// one of the missing sentinels, in which case the field is left nil. Numeric
// sentinels also match the same number written differently ("-9900.0").
func OptionalFloat[T any](name string, start, end int, field func(*T) **float64, missing ...string) Column[T] {
	sentinels := parseSentinels(missing)
	return Column[T]{Name: name, Start: start, End: end, Missing: missing, set: func(row *T, v string) error {
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		if isSentinel(f, sentinels) {
			return nil
		}
		*field(row) = &f
		return nil
	}}
}

// OptionalInt parses an integer field that may be blank or missing. Values
// written as floats ("2.0") are accepted when they are whole numbers.
func OptionalInt[T any](name string, start, end int, field func(*T) **int, missing ...string) Column[T] {
	sentinels := parseSentinels(missing)
	return Column[T]{Name: name, Start: start, End: end, Missing: missing, set: func(row *T, v string) error {
		if v == "" {
			return nil
		}
		n, err := parseInt(v)
		if err != nil {
			return err
		}
		if isSentinel(float64(n), sentinels) {
			return nil
		}
		*field(row) = &n
		return nil
	}}
}

// LenientInt is like OptionalInt but coerces unparseable values to nil
// instead of failing the row.
func LenientInt[T any](name string, start, end int, field func(*T) **int) Column[T] {
	return Column[T]{Name: name, Start: start, End: end, set: func(row *T, v string) error {
		if n, err := parseInt(v); err == nil {
			*field(row) = &n
		}
		return nil
	}}
}

// Present sets the field to true when the column holds any non-blank text.
func Present[T any](name string, start, end int, field func(*T) *bool) Column[T] {
	return Column[T]{Name: name, Start: start, End: end, set: func(row *T, v string) error {
		*field(row) = v != ""
		return nil
	}}
}

// Bool parses 1/0, true/false, t/f and y/n in any case. Blank is false.
func Bool[T any](name string, start, end int, field func(*T) *bool) Column[T] {
	return Column[T]{Name: name, Start: start, End: end, set: func(row *T, v string) error {
		switch strings.ToLower(v) {
		case "1", "true", "t", "y", "yes":
			*field(row) = true
		case "", "0", "false", "f", "n", "no":
			*field(row) = false
		default:
			return fmt.Errorf("not a boolean")
		}
		return nil
	}}
}

func parseSentinels(missing []string) []float64 {
	var out []float64
	for _, m := range missing {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

func isSentinel(f float64, sentinels []float64) bool {
	for _, s := range sentinels {
		if f == s {
			return true
		}
	}
	return false
}

// ClonePtr returns a pointer to a copy of *p, or nil.
func ClonePtr[V any](p *V) *V {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func parseInt(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("not a whole number")
	}
	return int(f), nil
}
