package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

// logConfig is read from the environment before flags are parsed.
type logConfig struct {
	Level string `env:"LANGSPEAK_LOG_LEVEL" envDefault:"info"`
	File  string `env:"LANGSPEAK_LOG_FILE"`
}

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "langspeak").CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "langspeak.log"), nil
}

// setupLog sends the default logger to the log file. stdout carries
// sequences, so nothing is logged there.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	cfg, err := env.ParseAs[logConfig]()
	if err != nil {
		return nil, fmt.Errorf("error parsing log config: %w", err)
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid LANGSPEAK_LOG_LEVEL: %w", err)
	}

	logFile := cfg.File
	if logFile == "" {
		if logFile, err = getLogFilePath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetLevel(level)
	log.SetReportTimestamp(true)
	return f.Close, nil
}
