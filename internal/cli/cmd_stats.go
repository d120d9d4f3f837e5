package cli

import (
	"context"

	"github.com/jedib0t/go-pretty/v6/table"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/crm/internal/store"
)

// StatsCmd returns the stats command.
func StatsCmd(st *store.Store) *Command {
	flags := flag.NewFlagSet("stats", flag.ContinueOnError)
	filters := addFilterFlags(flags)

	return &Command{
		Flags:    flags,
		Usage:    "stats [flags]",
		Short:    "Summary counts",
		UsesData: true,
		Long: `Show total clients, qualified leads, closed won deals and active sales reps.
Accepts the same filters as ls.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			criteria, err := filters.criteria()
			if err != nil {
				return err
			}

			all, err := st.Load(ctx)
			if err != nil {
				return err
			}

			sum := store.Aggregate(store.Filter(all, criteria))

			tw := table.NewWriter()
			tw.SetOutputMirror(o.Out())
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"Metric", "Count"})
			tw.AppendRows([]table.Row{
				{"Total Clients", sum.Total},
				{"Qualified Leads", sum.Qualified},
				{"Closed Won", sum.ClosedWon},
				{"Active Sales Reps", sum.Reps},
			})
			tw.Render()

			return nil
		},
	}
}
