package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/crm/internal/schema"
	"github.com/calvinalkan/crm/internal/store"
)

const (
	formatTable = "table"
	formatCSV   = "csv"
)

var errInvalidFormat = errors.New("invalid format (want table|csv)")

// LsCmd returns the ls command.
func LsCmd(st *store.Store) *Command {
	flags := flag.NewFlagSet("ls", flag.ContinueOnError)
	filters := addFilterFlags(flags)
	format := flags.String("format", formatTable, "Output format: table|csv")

	return &Command{
		Flags:    flags,
		Usage:    "ls [flags]",
		Short:    "List clients",
		UsesData: true,
		Long: `List stored clients in insertion order.

Filters on the same column match any of the given values; filters on
different columns must all match.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			if *format != formatTable && *format != formatCSV {
				return fmt.Errorf("%w: %q", errInvalidFormat, *format)
			}

			criteria, err := filters.criteria()
			if err != nil {
				return err
			}

			all, err := st.Load(ctx)
			if err != nil {
				return err
			}

			listed := store.Filter(all, criteria)

			if *format == formatCSV {
				data, err := store.Export(listed)
				if err != nil {
					return err
				}

				_, err = o.Out().Write(data)

				return err
			}

			if all.Len() == 0 {
				o.Println("No clients yet. Add one with 'crm add'.")

				return nil
			}

			renderClients(o.Out(), listed)

			return nil
		},
	}
}

// listColumns are the columns shown by the table view, in order.
var listColumns = []string{
	schema.ColTimestamp,
	schema.ColName,
	schema.ColEmail,
	schema.ColCompanyName,
	schema.ColIndustryCategory,
	schema.ColSalesRep,
	schema.ColLeadStatus,
}

func renderClients(w io.Writer, t *store.Table) {
	if t.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")

		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, len(listColumns))
	for i, col := range listColumns {
		header[i] = col
	}

	tw.AppendHeader(header)

	for i := range t.Rows {
		row := make(table.Row, len(listColumns))
		for j, col := range listColumns {
			row[j] = t.Value(i, col)
		}

		tw.AppendRow(row)
	}

	tw.Render()

	_, _ = fmt.Fprintf(w, "(%d rows)\n", t.Len())
}
