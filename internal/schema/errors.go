package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is matched by every [*ValidationError].
	ErrValidation = errors.New("validation failed")

	// ErrColumnCount is returned when a row does not have one value per column.
	ErrColumnCount = errors.New("wrong number of columns")
)

// FieldError describes a field whose value was rejected.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s=%q (%s)", e.Field, e.Value, e.Reason)
}

// Reasons used in [FieldError].
const (
	ReasonNotAllowed   = "not an allowed value"
	ReasonUnknownField = "unknown field"
)

// ValidationError lists every missing and invalid field of a rejected candidate.
//
// Missing holds required column names in column order. Invalid holds known
// columns in column order followed by unknown fields sorted by name.
//
// Use errors.Is(err, ErrValidation) to match this error.
type ValidationError struct {
	Missing []string
	Invalid []FieldError
}

func (e *ValidationError) Error() string {
	var b strings.Builder

	b.WriteString(ErrValidation.Error())

	if len(e.Missing) > 0 {
		b.WriteString(": missing required fields: ")
		b.WriteString(strings.Join(e.Missing, ", "))
	}

	if len(e.Invalid) > 0 {
		b.WriteString(": invalid fields: ")

		for i, fe := range e.Invalid {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString(fe.String())
		}
	}

	return b.String()
}

func (*ValidationError) Unwrap() error { return ErrValidation }

// Fields returns every rejected field name, missing first.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Invalid))
	out = append(out, e.Missing...)

	for _, fe := range e.Invalid {
		out = append(out, fe.Field)
	}

	return out
}
