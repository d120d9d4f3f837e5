package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/crm/internal/store"
)

// InitCmd returns the init command.
func InitCmd(st *store.Store) *Command {
	return &Command{
		Flags: flag.NewFlagSet("init", flag.ContinueOnError),
		Usage: "init",
		Short: "Create the data file if missing",
		Long: `Create the data file with only the header row. An existing file is left
untouched, so init is safe to run any number of times.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			err := st.Initialize(ctx)
			if err != nil {
				return err
			}

			o.Println("data file:", st.Path())

			return nil
		},
	}
}
