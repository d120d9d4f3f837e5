package cli

import (
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/crm/internal/schema"
	"github.com/calvinalkan/crm/internal/store"
)

var (
	errInvalidWhere  = errors.New("invalid --where, want column=value")
	errUnknownColumn = errors.New("unknown column")
	errInvalidStatus = errors.New("invalid status")
)

// filterFlags are the listing filters shared by ls, stats and export.
type filterFlags struct {
	status []string
	rep    []string
	where  []string
}

func addFilterFlags(fs *flag.FlagSet) *filterFlags {
	f := &filterFlags{}

	fs.StringArrayVar(&f.status, "status", nil, "Only clients with this lead status (repeatable)")
	fs.StringArrayVar(&f.rep, "rep", nil, "Only clients of this sales rep (repeatable)")
	fs.StringArrayVar(&f.where, "where", nil, "Only rows where `column=value` (repeatable)")

	return f
}

// criteria converts the flags to store criteria. Values for the same column
// are ORed; different columns are ANDed.
func (f *filterFlags) criteria() (store.Criteria, error) {
	c := store.Criteria{}

	for _, s := range f.status {
		if !schema.IsAllowed(schema.ColLeadStatus, s) {
			return nil, fmt.Errorf("%w: %q", errInvalidStatus, s)
		}

		c[schema.ColLeadStatus] = append(c[schema.ColLeadStatus], s)
	}

	c[schema.ColSalesRep] = append(c[schema.ColSalesRep], f.rep...)

	for _, w := range f.where {
		col, value, ok := strings.Cut(w, "=")
		col = strings.TrimSpace(col)

		if !ok || col == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidWhere, w)
		}

		if _, known := schema.Lookup(col); !known {
			return nil, fmt.Errorf("%w: %q (run 'crm fields' to list columns)", errUnknownColumn, col)
		}

		c[col] = append(c[col], value)
	}

	return c, nil
}
