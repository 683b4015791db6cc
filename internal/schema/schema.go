// Package schema validates untyped request input against declarative
// per-field constraints. A Record is an ordered allow-list: keys present in
// the input but absent from the schema never reach the output, and every
// failing field is reported in one batch rather than failing on the first.
package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind discriminates the field descriptor variants.
type Kind int

const (
	// KindString validates text with optional length and format constraints.
	KindString Kind = iota
	// KindNumber validates numeric values with optional bounds.
	KindNumber
	// KindEnum validates membership in a fixed set of string literals.
	KindEnum
)

// EmailFormat matches the permissive address shape accepted at the boundary.
var EmailFormat = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Field describes one input field and its constraints.
type Field struct {
	Name     string
	Kind     Kind
	Required bool

	// KindString payload. MaxLen 0 means unbounded.
	MinLen int
	MaxLen int
	Format *regexp.Regexp

	// KindNumber payload. Nil bound means unbounded; Integer rejects
	// fractional values.
	Min     *float64
	Max     *float64
	Integer bool

	// KindEnum payload.
	Allowed []string

	// Default is stored under Name when an optional field is absent.
	Default any

	// Transform runs after the constraints pass, commonly a sanitizer.
	Transform func(string) string
}

// Record is an ordered field schema with unique names.
type Record struct {
	fields []Field
}

// NewRecord builds a Record, rejecting duplicate field names.
func NewRecord(fields ...Field) (*Record, error) {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return nil, fmt.Errorf("schema: field with empty name")
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("schema: duplicate field %q", name)
		}
		seen[name] = struct{}{}
	}
	return &Record{fields: fields}, nil
}

// MustRecord builds a Record and panics on schema definition errors.
func MustRecord(fields ...Field) *Record {
	record, err := NewRecord(fields...)
	if err != nil {
		panic(err)
	}
	return record
}

// FieldError is one validation failure for one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors aggregates every field failure from a single Validate call.
type Errors struct {
	Fields []FieldError
}

// Error joins the per-field messages in schema order.
func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, fieldErr := range e.Fields {
		parts = append(parts, fieldErr.Field+": "+fieldErr.Message)
	}
	return strings.Join(parts, "; ")
}

// add records a failure for the named field.
func (e *Errors) add(name, message string) {
	e.Fields = append(e.Fields, FieldError{Field: name, Message: message})
}

// Validate checks input against the schema in declaration order. On success
// it returns the transformed record containing only schema-declared keys; on
// failure it returns nil and every per-field message collected during the
// pass. The input map is never mutated.
func (r *Record) Validate(input map[string]any) (map[string]any, *Errors) {
	out := make(map[string]any, len(r.fields))
	errs := &Errors{}

	for _, field := range r.fields {
		raw, present := input[field.Name]
		if !present || raw == nil {
			if field.Required {
				errs.add(field.Name, "is required")
				continue
			}
			if field.Default != nil {
				out[field.Name] = field.Default
			}
			continue
		}

		switch field.Kind {
		case KindString:
			validateString(field, raw, out, errs)
		case KindNumber:
			validateNumber(field, raw, out, errs)
		case KindEnum:
			validateEnum(field, raw, out, errs)
		default:
			errs.add(field.Name, "has unsupported kind")
		}
	}

	if len(errs.Fields) > 0 {
		return nil, errs
	}
	return out, nil
}

// Parse is the aggregated-error convenience around Validate.
func (r *Record) Parse(input map[string]any) (map[string]any, error) {
	out, errs := r.Validate(input)
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

func validateString(field Field, raw any, out map[string]any, errs *Errors) {
	value, ok := raw.(string)
	if !ok {
		errs.add(field.Name, "must be a string")
		return
	}
	length := utf8.RuneCountInString(value)
	if length < field.MinLen {
		errs.add(field.Name, fmt.Sprintf("must be at least %d characters", field.MinLen))
		return
	}
	if field.MaxLen > 0 && length > field.MaxLen {
		errs.add(field.Name, fmt.Sprintf("must be at most %d characters", field.MaxLen))
		return
	}
	if field.Format != nil && !field.Format.MatchString(value) {
		errs.add(field.Name, "has invalid format")
		return
	}
	if field.Transform != nil {
		value = field.Transform(value)
	}
	out[field.Name] = value
}

func validateNumber(field Field, raw any, out map[string]any, errs *Errors) {
	value, ok := numericValue(raw)
	if !ok {
		errs.add(field.Name, "must be a number")
		return
	}
	if field.Integer && value != float64(int64(value)) {
		errs.add(field.Name, "must be an integer")
		return
	}
	if field.Min != nil && value < *field.Min {
		errs.add(field.Name, fmt.Sprintf("must be at least %s", formatBound(*field.Min)))
		return
	}
	if field.Max != nil && value > *field.Max {
		errs.add(field.Name, fmt.Sprintf("must be at most %s", formatBound(*field.Max)))
		return
	}
	out[field.Name] = value
}

func validateEnum(field Field, raw any, out map[string]any, errs *Errors) {
	value, ok := raw.(string)
	if !ok {
		errs.add(field.Name, "must be a string")
		return
	}
	for _, allowed := range field.Allowed {
		if value == allowed {
			if field.Transform != nil {
				value = field.Transform(value)
			}
			out[field.Name] = value
			return
		}
	}
	errs.add(field.Name, "must be one of: "+strings.Join(field.Allowed, ", "))
}

// numericValue widens JSON and query-string numbers to float64. Query
// parameters arrive as strings, so numeric strings are accepted too.
func numericValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		parsed, errParse := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if errParse != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func formatBound(bound float64) string {
	return strconv.FormatFloat(bound, 'f', -1, 64)
}

// Ptr returns a pointer to v for inline bound literals.
func Ptr(v float64) *float64 { return &v }
