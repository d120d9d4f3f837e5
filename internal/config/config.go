// Package config resolves the CLI configuration from JSONC files and flags.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/hujson"
)

// Defaults.
const (
	DefaultDataFile    = "clients.csv"
	DefaultLogLevel    = "warn"
	DefaultLockTimeout = "10s"
)

// FileName is the project config file looked up in the working directory.
const FileName = ".crm.json"

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	DataFile    string `json:"data_file"`
	LogLevel    string `json:"log_level"`
	LockTimeout string `json:"lock_timeout"`

	// Resolved values (computed, not serialized)
	EffectiveCwd   string        `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	DataFileAbs    string        `json:"-"` // Absolute path to the backing CSV file
	Level          slog.Level    `json:"-"`
	LockTimeoutDur time.Duration `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project or explicit config if loaded, empty otherwise
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		DataFile:    DefaultDataFile,
		LogLevel:    DefaultLogLevel,
		LockTimeout: DefaultLockTimeout,
	}
}

// GlobalPath returns the path of the global config file:
// $XDG_CONFIG_HOME/crm/config.json if set, otherwise ~/.config/crm/config.json.
// Returns "" if neither variable is set.
func GlobalPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "crm", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "crm", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for [Load].
type LoadInput struct {
	WorkDirOverride  string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath       string            // -c/--config flag value
	DataFileOverride string            // --data-file flag value; empty means no override
	Verbose          bool              // -v/--verbose forces debug logging
	Env              map[string]string // environment variables
}

// Load resolves configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config
// 3. Project config file (.crm.json, if it exists)
// 4. Explicit config file via ConfigPath (replaces the project file)
// 5. CLI overrides.
//
// Paths in the returned Config are absolute.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve working directory: %w", err)
	}

	cfg := Default()

	globalPath := GlobalPath(input.Env)
	if globalPath != "" {
		fileCfg, loaded, err := loadFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg.Sources.Global = globalPath
			cfg = merge(cfg, fileCfg)
		}
	}

	projectPath, mustExist := filepath.Join(workDir, FileName), false
	if input.ConfigPath != "" {
		projectPath, mustExist = input.ConfigPath, true
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(workDir, projectPath)
		}
	}

	fileCfg, loaded, err := loadFile(projectPath, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg.Sources.Project = projectPath
		cfg = merge(cfg, fileCfg)
	}

	if input.DataFileOverride != "" {
		cfg.DataFile = input.DataFileOverride
	}

	if input.Verbose {
		cfg.LogLevel = "debug"
	}

	err = resolve(&cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.DataFile) {
		cfg.DataFileAbs = filepath.Clean(cfg.DataFile)
	} else {
		cfg.DataFileAbs = filepath.Join(workDir, cfg.DataFile)
	}

	return cfg, nil
}

// fileConfig mirrors Config with pointer fields so an explicit "" is
// distinguishable from an absent key.
type fileConfig struct {
	DataFile    *string `json:"data_file"`
	LogLevel    *string `json:"log_level"`
	LockTimeout *string `json:"lock_timeout"`
}

// loadFile reads a config file. If mustExist is false, a missing file is not
// an error and loaded is false.
func loadFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if mustExist {
				return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}

			return fileConfig{}, false, nil
		}

		return fileConfig{}, false, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	if cfg.DataFile != nil && *cfg.DataFile == "" {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, ErrDataFileEmpty)
	}

	return cfg, true, nil
}

func parse(data []byte) (fileConfig, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()

	var cfg fileConfig

	err = dec.Decode(&cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func merge(base Config, overlay fileConfig) Config {
	if overlay.DataFile != nil {
		base.DataFile = *overlay.DataFile
	}

	if overlay.LogLevel != nil && *overlay.LogLevel != "" {
		base.LogLevel = *overlay.LogLevel
	}

	if overlay.LockTimeout != nil && *overlay.LockTimeout != "" {
		base.LockTimeout = *overlay.LockTimeout
	}

	return base
}

// resolve validates cfg and fills in its parsed fields.
func resolve(cfg *Config) error {
	if strings.TrimSpace(cfg.DataFile) == "" {
		return ErrDataFileEmpty
	}

	err := cfg.Level.UnmarshalText([]byte(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownLogLevel, cfg.LogLevel)
	}

	d, err := time.ParseDuration(cfg.LockTimeout)
	if err != nil || d <= 0 {
		return fmt.Errorf("%w: %q", ErrLockTimeout, cfg.LockTimeout)
	}

	cfg.LockTimeoutDur = d

	return nil
}
