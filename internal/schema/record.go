package schema

import "fmt"

// Record is one client row. Field order matches [Header].
type Record struct {
	Timestamp        string
	Name             string
	Email            string
	Phone            string
	CompanyName      string
	IndustryCategory string
	CompanySize      string
	Revenue          string
	LeadSource       string
	SalesRep         string
	LeadStatus       string
	Notes            string
}

// Values returns the record's fields in column order.
func (r Record) Values() []string {
	return []string{
		r.Timestamp,
		r.Name,
		r.Email,
		r.Phone,
		r.CompanyName,
		r.IndustryCategory,
		r.CompanySize,
		r.Revenue,
		r.LeadSource,
		r.SalesRep,
		r.LeadStatus,
		r.Notes,
	}
}

// Fields returns the caller-supplied fields keyed by column name.
// Timestamp is omitted because the store owns it.
func (r Record) Fields() map[string]string {
	values := r.Values()
	out := make(map[string]string, len(values)-1)

	for i, c := range columns {
		if c.Kind == KindTimestamp {
			continue
		}

		out[c.Name] = values[i]
	}

	return out
}

// Get returns the value of the named column, or "" for unknown names.
func (r Record) Get(name string) string {
	i, ok := columnIndex[name]
	if !ok {
		return ""
	}

	return r.Values()[i]
}

// RecordFromValues builds a record from a row in column order.
func RecordFromValues(values []string) (Record, error) {
	if len(values) != len(columns) {
		return Record{}, fmt.Errorf("%w: got %d values, want %d", ErrColumnCount, len(values), len(columns))
	}

	return Record{
		Timestamp:        values[0],
		Name:             values[1],
		Email:            values[2],
		Phone:            values[3],
		CompanyName:      values[4],
		IndustryCategory: values[5],
		CompanySize:      values[6],
		Revenue:          values[7],
		LeadSource:       values[8],
		SalesRep:         values[9],
		LeadStatus:       values[10],
		Notes:            values[11],
	}, nil
}
