package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/crm/internal/schema"
	"github.com/calvinalkan/crm/internal/store"
)

var errFormAborted = errors.New("form aborted")

// addFlags maps each add flag to the column it fills, in form order.
var addFlags = []struct {
	name   string
	column string
}{
	{"name", schema.ColName},
	{"email", schema.ColEmail},
	{"phone", schema.ColPhone},
	{"company", schema.ColCompanyName},
	{"industry", schema.ColIndustryCategory},
	{"size", schema.ColCompanySize},
	{"revenue", schema.ColRevenue},
	{"source", schema.ColLeadSource},
	{"rep", schema.ColSalesRep},
	{"status", schema.ColLeadStatus},
	{"notes", schema.ColNotes},
}

// AddCmd returns the add command.
func AddCmd(st *store.Store) *Command {
	flags := flag.NewFlagSet("add", flag.ContinueOnError)
	values := make(map[string]*string, len(addFlags))

	for _, f := range addFlags {
		col, _ := schema.Lookup(f.column)

		usage := col.Label
		if col.Kind == schema.KindEnum {
			usage += " (" + strings.Join(col.Allowed, "|") + ")"
		}

		values[f.name] = flags.String(f.name, "", usage)
	}

	interactive := flags.BoolP("interactive", "i", false, "Prompt for every field not given as a flag")

	return &Command{
		Flags: flags,
		Usage: "add [flags]",
		Short: "Validate and append a client",
		Long: `Validate a client record and append it to the data file.

Every field except notes is required. Enum fields only accept the values
listed below (see also 'crm fields'). Nothing is written unless the whole
record is valid. With -i, missing fields are asked for one by one; enum
prompts complete with TAB and accept the option number.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			candidate := make(map[string]string, len(addFlags))

			for _, f := range addFlags {
				if flags.Changed(f.name) {
					candidate[f.column] = *values[f.name]
				}
			}

			if *interactive {
				err := fillInteractive(o, candidate)
				if err != nil {
					return err
				}
			}

			return execAdd(ctx, o, st, candidate)
		},
	}
}

func execAdd(ctx context.Context, o *IO, st *store.Store, candidate map[string]string) error {
	rec, err := schema.Validate(candidate)
	if err != nil {
		return err
	}

	saved, err := st.Append(ctx, rec)
	if err != nil {
		return err
	}

	o.Printf("added %s <%s> at %s\n", saved.Name, saved.Email, saved.Timestamp)

	return nil
}

// fillInteractive prompts for every column missing from candidate.
func fillInteractive(o *IO, candidate map[string]string) error {
	p := newPrompter(o)
	defer func() { _ = p.Close() }()

	for _, f := range addFlags {
		if _, given := candidate[f.column]; given {
			continue
		}

		col, _ := schema.Lookup(f.column)

		label := col.Label
		if !col.Required {
			label += " (optional)"
		}

		if col.Kind == schema.KindEnum {
			p.Notice(enumOptions(col.Allowed))
			p.SetCompleter(enumCompleter(col.Allowed))
		} else {
			p.SetCompleter(nil)
		}

		line, err := p.Prompt(label + ": ")
		if err != nil {
			return fmt.Errorf("%w: %s: %w", errFormAborted, col.Name, err)
		}

		if col.Kind == schema.KindEnum {
			line = resolveOption(col.Allowed, line)
		}

		candidate[f.column] = line
	}

	return nil
}

func enumOptions(allowed []string) string {
	parts := make([]string, len(allowed))
	for i, v := range allowed {
		parts[i] = fmt.Sprintf("%d) %s", i+1, v)
	}

	return "  " + strings.Join(parts, "  ")
}

// resolveOption maps an option number to its value. Anything else is
// returned trimmed and left for validation to judge.
func resolveOption(allowed []string, input string) string {
	input = strings.TrimSpace(input)

	n, err := strconv.Atoi(input)
	if err == nil && n >= 1 && n <= len(allowed) {
		return allowed[n-1]
	}

	return input
}

// enumCompleter completes case-insensitively against the allowed values.
func enumCompleter(allowed []string) func(string) []string {
	return func(line string) []string {
		prefix := strings.ToLower(strings.TrimLeft(line, " "))

		var out []string

		for _, v := range allowed {
			if strings.HasPrefix(strings.ToLower(v), prefix) {
				out = append(out, v)
			}
		}

		return out
	}
}
