package schema

import (
	"slices"
	"strings"
)

// Validate checks a candidate keyed by column name and returns the record to
// persist.
//
// Every required column must be present and not blank. Values are kept as
// given, surrounding whitespace included, except that CRLF and lone CR line
// endings in text columns become LF, the only line ending a CSV reload
// yields. Enum columns must hold an exact member of their closed set; a blank
// enum value is the unset-selector placeholder and counts as missing.
// Timestamp is ignored because the store stamps it. Keys that are not columns
// are rejected.
//
// Validation is all-or-nothing: on failure the returned record is the zero
// value and the error is a [*ValidationError] naming every problem field.
func Validate(candidate map[string]string) (Record, error) {
	var verr ValidationError

	values := make([]string, len(columns))

	for i, c := range columns {
		raw, present := candidate[c.Name]

		switch c.Kind {
		case KindTimestamp:
			continue
		case KindText:
			if c.Required && (!present || isBlank(raw)) {
				verr.Missing = append(verr.Missing, c.Name)

				continue
			}

			values[i] = normalizeNewlines(raw)
		case KindEnum:
			if !present || isBlank(raw) {
				if c.Required {
					verr.Missing = append(verr.Missing, c.Name)
				}

				continue
			}

			if !slices.Contains(c.Allowed, raw) {
				verr.Invalid = append(verr.Invalid, FieldError{Field: c.Name, Value: raw, Reason: ReasonNotAllowed})

				continue
			}

			values[i] = raw
		}
	}

	var unknown []FieldError

	for name, v := range candidate {
		if _, ok := columnIndex[name]; !ok {
			unknown = append(unknown, FieldError{Field: name, Value: v, Reason: ReasonUnknownField})
		}
	}

	slices.SortFunc(unknown, func(a, b FieldError) int { return strings.Compare(a.Field, b.Field) })
	verr.Invalid = append(verr.Invalid, unknown...)

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return Record{}, &verr
	}

	rec, err := RecordFromValues(values)
	if err != nil {
		return Record{}, err
	}

	return rec, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

var newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}

	return newlineReplacer.Replace(s)
}

// Validate checks the record's caller-supplied fields. See [Validate].
func (r Record) Validate() (Record, error) {
	return Validate(r.Fields())
}
