package cli_test

import (
	"os"
	"strings"
	"testing"

	"github.com/calvinalkan/crm/internal/cli"
	"github.com/calvinalkan/crm/internal/schema"
)

func Test_Run_Prints_Usage_When_No_Command(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run()

	if got, want := exitCode, 0; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stderr, ""; got != want {
		t.Errorf("stderr=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stdout, "Usage: crm")
	cli.AssertContains(t, stdout, "Global flags:")
	cli.AssertContains(t, stdout, "--data-file")

	for _, cmd := range []string{"init", "add [flags]", "ls [flags]", "stats [flags]", "export [flags]", "fields", "print-config"} {
		cli.AssertContains(t, stdout, cmd)
	}
}

func Test_Run_Prints_Usage_When_Help_Flag(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("--help")

	cli.AssertContains(t, stdout, "Commands:")
}

func Test_Run_Fails_When_Global_Flag_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run("--invalid-flag", "ls")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stderr, "unknown flag")
	cli.AssertContains(t, stderr, "--invalid-flag")
	cli.AssertContains(t, stderr, "Global flags:")
	cli.AssertContains(t, stderr, "--cwd")
	cli.AssertContains(t, stderr, "--config")
}

func Test_Run_Fails_When_Data_File_Flag_Empty(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("--data-file=", "ls")

	cli.AssertContains(t, stderr, "data-file cannot be empty")
	cli.AssertContains(t, stderr, "Global flags:")
}

func Test_Run_Fails_When_Command_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("frobnicate")

	cli.AssertContains(t, stderr, "unknown command: frobnicate")
	cli.AssertContains(t, stderr, "Commands:")
}

func Test_Run_Prints_Command_Help_When_Help_Flag_After_Command(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("ls", "--help")

	cli.AssertContains(t, stdout, "Usage: crm ls [flags]")
	cli.AssertContains(t, stdout, "--status")
	cli.AssertContains(t, stdout, "--format")
}

func Test_Run_Fails_With_Help_On_Stderr_When_Command_Flag_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("ls", "--bogus")

	cli.AssertContains(t, stderr, "unknown flag: --bogus")
	cli.AssertContains(t, stderr, "Usage: crm ls [flags]")
}

func Test_Run_Logs_Debug_To_Stderr_When_Verbose(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	_, stderr, exitCode := c.Run("-v", "init")

	if got, want := exitCode, 0; got != want {
		t.Fatalf("exitCode=%d, want=%d\nstderr: %s", got, want, stderr)
	}

	cli.AssertContains(t, stderr, "level=DEBUG")
	cli.AssertContains(t, stderr, "command=init")
}

func Test_Run_Uses_Data_File_Flag_When_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("--data-file", "data/leads.csv", "init")

	cli.AssertContains(t, stdout, "data/leads.csv")
}

func Test_Run_Creates_Header_Only_File_When_Command_Reads_Data(t *testing.T) {
	t.Parallel()

	header := strings.Join(schema.Header(), ",") + "\n"

	for _, args := range [][]string{{"ls"}, {"stats"}, {"export", "-o", "-"}} {
		t.Run(args[0], func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			_, stderr, _ := c.Run(args...)

			if got := c.ReadDataFile(); got != header {
				t.Errorf("data file=%q, want=%q\nstderr: %s", got, header, stderr)
			}
		})
	}
}

func Test_Run_Leaves_Data_File_Absent_When_Command_Ignores_Data(t *testing.T) {
	t.Parallel()

	for _, cmd := range []string{"fields", "print-config"} {
		t.Run(cmd, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			c.MustRun(cmd)

			if _, err := os.Stat(c.DataFile()); !os.IsNotExist(err) {
				t.Errorf("stat data file: err=%v, want not exist", err)
			}
		})
	}
}
