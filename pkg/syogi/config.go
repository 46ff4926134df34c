package syogi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Handicap     string `json:"handicap"`
	HandicapSide string `json:"handicap_side"`
	TryRule      bool   `json:"try_rule"`
	LogLevel     string `json:"log_level"`
	Archive      string `json:"archive"`
	Workers      int    `json:"workers"`
}

// DefaultConfig is used when no config.json is found.
func DefaultConfig() Config {
	return Config{
		Handicap:     Hirate.String(),
		HandicapSide: "white",
		LogLevel:     "info",
		Archive:      "games.parquet",
		Workers:      1,
	}
}

// FindConfigPath looks for config.json in the working directory and its
// parents. It returns the file path and the directory holding it.
func FindConfigPath() (string, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", "", err
	}
	dir := cwd
	for {
		path := filepath.Join(dir, "config.json")
		if _, err := os.Stat(path); err == nil {
			return path, filepath.Dir(path), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", "", fmt.Errorf("config.json not found from %s", cwd)
}

// LoadConfig reads path over DefaultConfig, so omitted keys keep defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// GameSetup resolves the handicap fields.
func (c Config) GameSetup() (Handicap, Side, error) {
	h, err := ParseHandicap(c.Handicap)
	if err != nil {
		return Hirate, NoSide, err
	}
	side, err := ParseSide(c.HandicapSide)
	if err != nil {
		return Hirate, NoSide, err
	}
	return h, side, nil
}

// NewLogger builds a production logger at level; "debug" switches to the
// development encoder. Output goes to paths, or stderr when none are given.
func NewLogger(level string, paths ...string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
	}
	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	if len(paths) > 0 {
		cfg.OutputPaths = paths
	}
	return cfg.Build()
}
