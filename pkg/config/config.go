package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-hclog"
)

// Config of the kyua-fork driver.
type Config struct {
	// LogLevel is one of trace, debug, info, warn, error, off.
	LogLevel string

	// LogJSON switches the log output to JSON lines.
	LogJSON bool

	// WorkDir holds one directory per program run, with its stdout and
	// stderr files.
	WorkDir string
}

// fileConfig is the TOML key mapping of Config.
type fileConfig struct {
	LogLevel string `toml:"log_level"`
	LogJSON  bool   `toml:"log_json"`
	WorkDir  string `toml:"work_dir"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "warn",
		LogJSON:  false,
		WorkDir:  os.TempDir(),
	}
}

// Load reads the TOML file at path and overlays the keys it defines on
// top of Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_json") {
		cfg.LogJSON = raw.LogJSON
	}
	if meta.IsDefined("work_dir") {
		cfg.WorkDir = strings.TrimSpace(raw.WorkDir)
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values of c.
func (c Config) Validate() error {
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("log_level of %q not recognized", c.LogLevel)
	}
	if c.WorkDir == "" {
		return fmt.Errorf("work_dir must be set")
	}
	return nil
}

// Logger creates the root logger described by c.
func (c Config) Logger(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(c.LogLevel),
		JSONFormat: c.LogJSON,
		Output:     os.Stderr,
	})
}
