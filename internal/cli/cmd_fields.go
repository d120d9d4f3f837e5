package cli

import (
	"context"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/crm/internal/schema"
	"github.com/calvinalkan/crm/internal/store"
)

// filterColumns are the columns ls and stats offer dedicated filter flags for.
var filterColumns = []string{schema.ColLeadStatus, schema.ColSalesRep}

// FieldsCmd returns the fields command.
func FieldsCmd(st *store.Store) *Command {
	flags := flag.NewFlagSet("fields", flag.ContinueOnError)
	values := flags.Bool("values", false, "List the status and rep values present in the data file")

	return &Command{
		Flags: flags,
		Usage: "fields [--values]",
		Short: "Show the record schema",
		Long: `Show every column in file order with its kind and allowed values.

With --values, list the distinct Lead Status and Sales Rep values stored in
the data file instead, in first-seen order. These are the values --status and
--rep can match.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			if *values {
				return execFieldValues(ctx, o, st)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(o.Out())
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"Column", "Kind", "Required", "Allowed"})

			for _, c := range schema.Columns() {
				required := "no"
				if c.Required {
					required = "yes"
				}

				if c.Kind == schema.KindTimestamp {
					required = "auto"
				}

				tw.AppendRow(table.Row{c.Name, c.Kind.String(), required, strings.Join(c.Allowed, ", ")})
			}

			tw.Render()

			return nil
		},
	}
}

func execFieldValues(ctx context.Context, o *IO, st *store.Store) error {
	loaded, err := st.Load(ctx)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(o.Out())
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Column", "Values"})

	for _, col := range filterColumns {
		distinct := store.Distinct(loaded, col)

		shown := "(none)"
		if len(distinct) > 0 {
			shown = strings.Join(distinct, ", ")
		}

		tw.AppendRow(table.Row{col, shown})
	}

	tw.Render()

	return nil
}
