package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/crm/internal/cli"
)

func Test_Print_Config_Defaults_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "effective_cwd="+c.Dir)
	cli.AssertContains(t, stdout, "data_file="+filepath.Join(c.Dir, "clients.csv"))
	cli.AssertContains(t, stdout, "log_level=WARN")
	cli.AssertContains(t, stdout, "lock_timeout=10s")
	cli.AssertContains(t, stdout, "(defaults only)")
}

func Test_Print_Config_From_Config_File_With_Comments_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".crm.json", `{
		// shared with the sales team
		"data_file": "shared/leads.csv",
		"lock_timeout": "2s",
	}`)

	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "data_file="+filepath.Join(c.Dir, "shared", "leads.csv"))
	cli.AssertContains(t, stdout, "lock_timeout=2s")
	cli.AssertContains(t, stdout, "project_config="+filepath.Join(c.Dir, ".crm.json"))
}

func Test_Print_Config_Explicit_Config_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("custom.json", `{"data_file": "custom.csv"}`)

	stdout := c.MustRun("-c", "custom.json", "print-config")
	cli.AssertContains(t, stdout, "data_file="+filepath.Join(c.Dir, "custom.csv"))

	stdout = c.MustRun("--config=custom.json", "print-config")
	cli.AssertContains(t, stdout, "data_file="+filepath.Join(c.Dir, "custom.csv"))
}

func Test_Print_Config_Data_File_Flag_Overrides_File_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".crm.json", `{"data_file": "from-file.csv"}`)

	stdout := c.MustRun("--data-file=from-cli.csv", "print-config")
	cli.AssertContains(t, stdout, "data_file="+filepath.Join(c.Dir, "from-cli.csv"))
}

func Test_Print_Config_Global_Config_When_XDG_Set(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	xdg := t.TempDir()
	c.Env["XDG_CONFIG_HOME"] = xdg

	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "crm"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, "crm", "config.json"), []byte(`{"log_level": "debug"}`), 0o600))

	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "log_level=DEBUG")
	cli.AssertContains(t, stdout, "global_config="+filepath.Join(xdg, "crm", "config.json"))
}

func Test_Print_Config_Fails_When_Config_Invalid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".crm.json", `{"log_level": "loud"}`)

	stderr := c.MustFail("print-config")

	cli.AssertContains(t, stderr, "unknown log level")
}

func Test_Print_Config_Fails_When_Explicit_Config_Missing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("-c", "missing.json", "print-config")

	cli.AssertContains(t, stderr, "config file not found")
}
