package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
)

// newLogger builds the root logger. The TUI owns the terminal, so unless
// toStderr is set logs go to cfg.LogFile; any failure to open it falls back
// to stderr.
func newLogger(cfg appConfig, toStderr bool) (hclog.Logger, func()) {
	out, closeFn := openLogOutput(cfg.LogFile, toStderr)
	logger := hclog.New(&hclog.LoggerOptions{
		Name:            "tradewatch",
		Level:           hclog.LevelFromString(cfg.LogLevel),
		Output:          out,
		IncludeLocation: false,
	})
	return logger, closeFn
}

func openLogOutput(path string, toStderr bool) (io.Writer, func()) {
	if toStderr || path == "" {
		return os.Stderr, func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return os.Stderr, func() {}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return os.Stderr, func() {}
	}
	return f, func() {
		_ = f.Close()
	}
}
