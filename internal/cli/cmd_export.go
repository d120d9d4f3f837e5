package cli

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/crm/internal/config"
	"github.com/calvinalkan/crm/internal/store"
	"github.com/calvinalkan/crm/pkg/fs"
)

var errAllWithFilters = errors.New("--all cannot be combined with filters")

// ExportCmd returns the export command.
func ExportCmd(st *store.Store, cfg config.Config) *Command {
	flags := flag.NewFlagSet("export", flag.ContinueOnError)
	filters := addFilterFlags(flags)
	all := flags.Bool("all", false, "Export every client, ignoring filters")
	output := flags.StringP("output", "o", "", "Write to `file` (\"-\" for stdout) [default: generated name]")

	return &Command{
		Flags:    flags,
		Usage:    "export [flags]",
		Short:    "Write clients as CSV",
		UsesData: true,
		Long: `Write the filtered clients (or all of them with --all) as CSV.

Without -o the file is named crm_clients_YYYYmmdd_HHMMSS.csv, or
crm_all_clients_YYYYmmdd.csv with --all, in the working directory.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			if *all && (len(filters.status)+len(filters.rep)+len(filters.where)) > 0 {
				return errAllWithFilters
			}

			criteria, err := filters.criteria()
			if err != nil {
				return err
			}

			loaded, err := st.Load(ctx)
			if err != nil {
				return err
			}

			kind := store.ExportAll
			if !*all {
				kind = store.ExportFiltered
				loaded = store.Filter(loaded, criteria)
			}

			data, err := store.Export(loaded)
			if err != nil {
				return err
			}

			if *output == "-" {
				_, err = o.Out().Write(data)

				return err
			}

			path := *output
			if path == "" {
				path = store.ExportFilename(kind, time.Now())
			}

			if !filepath.IsAbs(path) {
				path = filepath.Join(cfg.EffectiveCwd, path)
			}

			err = fs.NewReal().WriteFileAtomic(path, data, 0o644)
			if err != nil {
				return err
			}

			o.Printf("exported %d rows to %s (%s)\n", loaded.Len(), path, store.ContentType)

			if loaded.Len() == 0 {
				o.Warn("export contains no clients", "check the filters with 'crm ls' or use --all")
			}

			return nil
		},
	}
}
