// Package cli implements the crm command line: flag parsing, configuration,
// and the commands that drive the record store.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/crm/internal/config"
	"github.com/calvinalkan/crm/internal/store"
)

// Run is the main entry point. Returns exit code.
//
// args includes the program name. sigCh may be nil; when it delivers, the
// running command's context is canceled.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := flag.NewFlagSet("crm", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(&strings.Builder{})

	workDir := globals.StringP("cwd", "C", "", "Run as if started in `dir`")
	configPath := globals.StringP("config", "c", "", "Use specified config `file`")
	dataFile := globals.String("data-file", "", "Override backing CSV `path`")
	verbose := globals.BoolP("verbose", "v", false, "Debug logging to stderr")
	help := globals.BoolP("help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}

	err := globals.Parse(args)
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, globals, nil)

		return 1
	}

	rest := globals.Args()

	if *help || len(rest) == 0 {
		printUsage(out, globals, commandList(nil, config.Config{}))

		return 0
	}

	if globals.Changed("data-file") && strings.TrimSpace(*dataFile) == "" {
		fprintln(errOut, "error:", config.ErrDataFileEmpty)
		printUsage(errOut, globals, nil)

		return 1
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride:  *workDir,
		ConfigPath:       *configPath,
		DataFileOverride: *dataFile,
		Verbose:          *verbose,
		Env:              env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, globals, nil)

		return 1
	}

	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: cfg.Level}))

	st, err := store.New(store.Config{
		Path:        cfg.DataFileAbs,
		Logger:      logger,
		LockTimeout: cfg.LockTimeoutDur,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	commands := commandList(st, cfg)

	var cmd *Command

	for _, c := range commands {
		if c.Name() == rest[0] {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error: unknown command:", rest[0])
		printUsage(errOut, globals, commands)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				logger.Debug("interrupted")
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	logger.Debug("running command", "command", cmd.Name(), "data_file", cfg.DataFileAbs)

	if cmd.UsesData {
		err = st.Initialize(ctx)
		if err != nil {
			fprintln(errOut, "error:", err)

			return 1
		}
	}

	return cmd.Run(ctx, NewIO(stdin, out, errOut), rest[1:])
}

// commandList returns every command in help order. st may be nil when only
// the help lines are needed.
func commandList(st *store.Store, cfg config.Config) []*Command {
	return []*Command{
		InitCmd(st),
		AddCmd(st),
		LsCmd(st),
		StatsCmd(st),
		ExportCmd(st, cfg),
		FieldsCmd(st),
		PrintConfigCmd(&cfg),
	}
}

func printUsage(w io.Writer, globals *flag.FlagSet, commands []*Command) {
	fprintln(w, `crm - client intake records in a CSV file

Usage: crm [global flags] <command> [args]

Global flags:`)
	fprintln(w, strings.TrimRight(globals.FlagUsages(), "\n"))

	if len(commands) == 0 {
		return
	}

	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range commands {
		fprintln(w, c.HelpLine())
	}

	fprintln(w)
	fprintln(w, `Run "crm <command> --help" for command flags.`)
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}
