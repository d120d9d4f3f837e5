package cli_test

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/crm/internal/cli"
	"github.com/calvinalkan/crm/internal/schema"
	"github.com/calvinalkan/crm/internal/store"
	"github.com/calvinalkan/crm/internal/testutil"
)

func loadRecords(t *testing.T, c *cli.CLI) []schema.Record {
	t.Helper()

	table, err := store.Decode(strings.NewReader(c.ReadDataFile()))
	require.NoError(t, err)

	records, err := table.Records()
	require.NoError(t, err)

	return records
}

func Test_Add_Appends_Record_When_All_Flags_Valid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	rec := testutil.ValidRecord()

	stdout := c.MustAdd(rec)
	cli.AssertContains(t, stdout, "added Ada Lovelace <ada@example.com> at ")

	records := loadRecords(t, c)
	require.Len(t, records, 1)

	got := records[0]
	assert.NotEmpty(t, got.Timestamp)

	got.Timestamp = ""
	assert.Equal(t, rec, got)
}

func Test_Add_Keeps_Insertion_Order_When_Called_Repeatedly(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	for _, name := range []string{"first", "second", "third"} {
		rec := testutil.ValidRecord()
		rec.Name = name
		c.MustAdd(rec)
	}

	var names []string
	for _, r := range loadRecords(t, c) {
		names = append(names, r.Name)
	}

	assert.Equal(t, []string{"first", "second", "third"}, names)
}

func Test_Add_Fails_Without_Writing_When_Required_Fields_Missing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("add", "--name", "Only Name", "--status", "Qualified")

	cli.AssertContains(t, stderr, "validation failed: missing required fields: Email, Phone, Company Name")

	_, err := os.Stat(c.DataFile())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("data file should not exist, stat err=%v", err)
	}
}

func Test_Add_Fails_When_Enum_Value_Not_Allowed(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("init")

	args := cli.AddArgs(testutil.ValidRecord())
	args = append(args, "--status", "Maybe", "--size", "")

	stderr := c.MustFail(args...)

	cli.AssertContains(t, stderr, "missing required fields: Company Size")
	cli.AssertContains(t, stderr, `Lead Status="Maybe" (not an allowed value)`)
	assert.Empty(t, loadRecords(t, c))
}

func Test_Add_Fails_When_Positional_Argument_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("add", "Ada")

	cli.AssertContains(t, stderr, "unexpected argument: Ada")
}

func Test_Add_Fails_When_Data_File_Corrupt(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("clients.csv", "id,title\n1,x\n")

	stderr := c.MustFail(cli.AddArgs(testutil.ValidRecord())...)

	cli.AssertContains(t, stderr, "storage read")

	if got, want := c.ReadDataFile(), "id,title\n1,x\n"; got != want {
		t.Errorf("data file=%q, want=%q", got, want)
	}
}

func Test_Add_Interactive_Prompts_For_Every_Field_When_No_Flags(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	input := strings.Join([]string{
		"Grace Hopper",
		"grace@example.com",
		"+1 555 0199",
		"Navy",
		"1",       // Technology
		"201-500", // literal value
		"3",       // $500K-$1M
		"ref",     // rejected
		"Jane Smith",
		"Closed Won",
		"",
	}, "\n") + "\n"

	stdout, stderr, exitCode := c.RunWithInput(input, "add", "-i")

	if got, want := exitCode, 1; got != want {
		t.Fatalf("exitCode=%d, want=%d\nstderr: %s", got, want, stderr)
	}

	cli.AssertContains(t, stdout, "Client Name: ")
	cli.AssertContains(t, stdout, "1) Technology")
	cli.AssertContains(t, stdout, "Notes (optional): ")
	cli.AssertContains(t, stderr, `Lead Source="ref" (not an allowed value)`)

	input = strings.Replace(input, "\nref\n", "\n2\n", 1)
	stdout = mustRunWithInput(t, c, input, "add", "-i")

	cli.AssertContains(t, stdout, "added Grace Hopper <grace@example.com>")

	records := loadRecords(t, c)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, "Technology", got.IndustryCategory)
	assert.Equal(t, "201-500", got.CompanySize)
	assert.Equal(t, "$500K-$1M", got.Revenue)
	assert.Equal(t, "Referral", got.LeadSource)
	assert.Equal(t, schema.StatusClosedWon, got.LeadStatus)
	assert.Empty(t, got.Notes)
}

func Test_Add_Interactive_Skips_Fields_Given_As_Flags(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	rec := testutil.ValidRecord()

	args := cli.AddArgs(rec)
	args = append(args[:len(args)-2], "-i") // drop --notes

	stdout := mustRunWithInput(t, c, "called twice\n", args...)

	cli.AssertNotContains(t, stdout, "Client Name: ")
	cli.AssertContains(t, stdout, "Notes (optional): ")

	records := loadRecords(t, c)
	require.Len(t, records, 1)
	assert.Equal(t, "called twice", records[0].Notes)
}

func Test_Add_Interactive_Fails_When_Input_Ends_Early(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	_, stderr, exitCode := c.RunWithInput("Grace Hopper\n", "add", "-i")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stderr, "form aborted: Email")

	_, err := os.Stat(c.DataFile())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("data file should not exist, stat err=%v", err)
	}
}

func mustRunWithInput(t *testing.T, c *cli.CLI, input string, args ...string) string {
	t.Helper()

	stdout, stderr, exitCode := c.RunWithInput(bytes.NewBufferString(input), args...)
	if exitCode != 0 {
		t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, exitCode, stderr)
	}

	return stdout
}
