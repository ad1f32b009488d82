package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/survey-features/internal/common"
)

// loadConfig layers configuration: dotenv file, environment, YAML file.
// Command flags are applied on top by the caller.
func loadConfig(g *globalFlags) (*common.Config, error) {
	if g.envFile != "" {
		if err := common.LoadDotEnv(g.envFile); err != nil {
			return nil, err
		}
	}
	cfg := common.LoadConfig()
	if g.configPath != "" {
		if err := cfg.ApplyFile(g.configPath); err != nil {
			return nil, err
		}
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	return cfg, nil
}

// newLogger returns a JSON logger writing to w at the named level.
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}
