package store

import (
	"slices"

	"github.com/calvinalkan/crm/internal/schema"
)

// Criteria maps a column name to the set of accepted values.
//
// A row passes when, for every column in the criteria, its value is one of
// the accepted values (AND across columns, OR within a column). Columns not in
// the criteria impose nothing, and neither does a column with no values, the
// same way an untouched multi-select means "no filter".
type Criteria map[string][]string

// QualifiedStatuses are the lead statuses counted as qualified by [Aggregate].
var QualifiedStatuses = []string{
	schema.StatusQualified,
	schema.StatusProposalSent,
	schema.StatusNegotiation,
	schema.StatusClosedWon,
}

// Filter returns the rows of t that match c, in their original order.
//
// The result is a new table; it shares no row slices with t. A criteria
// column that t does not have matches no rows.
func Filter(t *Table, c Criteria) *Table {
	out := &Table{}
	if t != nil {
		out.Columns = slices.Clone(t.Columns)
	}

	type constraint struct {
		idx      int
		accepted map[string]struct{}
	}

	constraints := make([]constraint, 0, len(c))

	for col, values := range c {
		if len(values) == 0 {
			continue
		}

		accepted := make(map[string]struct{}, len(values))
		for _, v := range values {
			accepted[v] = struct{}{}
		}

		constraints = append(constraints, constraint{idx: t.Index(col), accepted: accepted})
	}

	for _, row := range t.rows() {
		match := true

		for _, con := range constraints {
			if con.idx < 0 || con.idx >= len(row) {
				match = false

				break
			}

			if _, ok := con.accepted[row[con.idx]]; !ok {
				match = false

				break
			}
		}

		if match {
			out.Rows = append(out.Rows, slices.Clone(row))
		}
	}

	return out
}

// Summary holds the counts shown above the client listing.
type Summary struct {
	Total     int // Total is the number of rows.
	Qualified int // Qualified counts rows whose status is in [QualifiedStatuses].
	ClosedWon int // ClosedWon counts rows with status Closed Won.
	Reps      int // Reps counts distinct non-empty Sales Rep values.
}

// Aggregate computes summary counts over t. An empty table yields all zeros.
func Aggregate(t *Table) Summary {
	var s Summary

	statusIdx := t.Index(schema.ColLeadStatus)
	repIdx := t.Index(schema.ColSalesRep)
	reps := make(map[string]struct{})

	for _, row := range t.rows() {
		s.Total++

		status := cell(row, statusIdx)
		if slices.Contains(QualifiedStatuses, status) {
			s.Qualified++
		}

		if status == schema.StatusClosedWon {
			s.ClosedWon++
		}

		if rep := cell(row, repIdx); rep != "" {
			reps[rep] = struct{}{}
		}
	}

	s.Reps = len(reps)

	return s
}

// Distinct returns the distinct values of col in first-seen order.
// These are the options a listing offers for filtering by col.
func Distinct(t *Table, col string) []string {
	idx := t.Index(col)
	if idx < 0 {
		return nil
	}

	seen := make(map[string]struct{})

	var out []string

	for _, row := range t.rows() {
		v := cell(row, idx)
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return row[idx]
}
