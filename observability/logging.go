package observability

import (
	"io"
	"log/slog"

	"github.com/odit-bit/openai-cli/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging installs the default slog logger. Logs go to stderr unless a
// log file is configured, in which case they go to a rotated file. The
// returned func closes that file.
func SetupLogging(cfg config.LogConfig, stderr io.Writer) func() error {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = stderr
	closeFn := func() error { return nil }
	if cfg.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		}
		w = fileWriter
		closeFn = fileWriter.Close
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	slog.Debug("logging", "level", level.String(), "file", cfg.File)
	return closeFn
}
