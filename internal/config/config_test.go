package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/crm/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func load(t *testing.T, input config.LoadInput) config.Config {
	t.Helper()

	if input.Env == nil {
		input.Env = map[string]string{}
	}

	cfg, err := config.Load(input)
	require.NoError(t, err)

	return cfg
}

func Test_Load_Returns_Defaults_When_No_Files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := load(t, config.LoadInput{WorkDirOverride: dir})

	assert.Equal(t, filepath.Join(dir, "clients.csv"), cfg.DataFileAbs)
	assert.Equal(t, slog.LevelWarn, cfg.Level)
	assert.Equal(t, 10*time.Second, cfg.LockTimeoutDur)
	assert.Equal(t, dir, cfg.EffectiveCwd)
	assert.Equal(t, config.Sources{}, cfg.Sources)
}

func Test_Load_Reads_Project_File_With_Comments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.FileName), `{
		// where clients live
		"data_file": "data/leads.csv",
		"log_level": "info",
		"lock_timeout": "250ms",
	}`)

	cfg := load(t, config.LoadInput{WorkDirOverride: dir})

	assert.Equal(t, filepath.Join(dir, "data", "leads.csv"), cfg.DataFileAbs)
	assert.Equal(t, slog.LevelInfo, cfg.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.LockTimeoutDur)
	assert.Equal(t, filepath.Join(dir, config.FileName), cfg.Sources.Project)
}

func Test_Load_Applies_Precedence_When_All_Sources_Set(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xdg := t.TempDir()

	writeFile(t, filepath.Join(xdg, "crm", "config.json"), `{"data_file": "global.csv", "log_level": "error"}`)
	writeFile(t, filepath.Join(dir, config.FileName), `{"data_file": "project.csv"}`)

	env := map[string]string{"XDG_CONFIG_HOME": xdg}

	cfg := load(t, config.LoadInput{WorkDirOverride: dir, Env: env})
	assert.Equal(t, filepath.Join(dir, "project.csv"), cfg.DataFileAbs)
	assert.Equal(t, slog.LevelError, cfg.Level, "global value survives when project omits it")
	assert.Equal(t, filepath.Join(xdg, "crm", "config.json"), cfg.Sources.Global)

	cfg = load(t, config.LoadInput{WorkDirOverride: dir, Env: env, DataFileOverride: "/tmp/flag.csv", Verbose: true})
	assert.Equal(t, "/tmp/flag.csv", cfg.DataFileAbs)
	assert.Equal(t, slog.LevelDebug, cfg.Level)
}

func Test_Load_Uses_Home_Config_When_XDG_Unset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	home := t.TempDir()

	writeFile(t, filepath.Join(home, ".config", "crm", "config.json"), `{"data_file": "home.csv"}`)

	cfg := load(t, config.LoadInput{WorkDirOverride: dir, Env: map[string]string{"HOME": home}})

	assert.Equal(t, filepath.Join(dir, "home.csv"), cfg.DataFileAbs)
}

func Test_Load_Reads_Explicit_File_Instead_Of_Project_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.FileName), `{"data_file": "project.csv"}`)
	writeFile(t, filepath.Join(dir, "custom.json"), `{"data_file": "custom.csv"}`)

	cfg := load(t, config.LoadInput{WorkDirOverride: dir, ConfigPath: "custom.json"})

	assert.Equal(t, filepath.Join(dir, "custom.csv"), cfg.DataFileAbs)
	assert.Equal(t, filepath.Join(dir, "custom.json"), cfg.Sources.Project)
}

func Test_Load_Returns_Error_When_Config_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		input   config.LoadInput
		wantErr error
	}{
		{name: "missing explicit file", input: config.LoadInput{ConfigPath: "nope.json"}, wantErr: config.ErrConfigFileNotFound},
		{name: "malformed jsonc", content: `{"data_file": `, wantErr: config.ErrConfigInvalid},
		{name: "unknown key", content: `{"data_dir": "x"}`, wantErr: config.ErrConfigInvalid},
		{name: "empty data file", content: `{"data_file": ""}`, wantErr: config.ErrDataFileEmpty},
		{name: "unknown log level", content: `{"log_level": "loud"}`, wantErr: config.ErrUnknownLogLevel},
		{name: "bad lock timeout", content: `{"lock_timeout": "soon"}`, wantErr: config.ErrLockTimeout},
		{name: "negative lock timeout", content: `{"lock_timeout": "-1s"}`, wantErr: config.ErrLockTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			if tt.content != "" {
				writeFile(t, filepath.Join(dir, config.FileName), tt.content)
			}

			input := tt.input
			input.WorkDirOverride = dir
			input.Env = map[string]string{}

			_, err := config.Load(input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func Test_GlobalPath_Returns_Empty_When_Env_Missing(t *testing.T) {
	t.Parallel()

	if got := config.GlobalPath(map[string]string{}); got != "" {
		t.Errorf("GlobalPath=%q, want empty", got)
	}
}
