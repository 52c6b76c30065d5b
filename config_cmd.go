package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# Language switching
language:
  # Languages eligible for detection. Empty means every language.
  whitelist: []
  # Tried in order when a run's language is unknown or has no voice.
  fallback: [en]
  # Runs shorter than this many characters keep the current language.
  min_run_length: 3
  # Detections scoring lower (0.0 to 1.0) count as unknown.
  min_confidence: 0.0
  # "run" classifies each text run, "group" joins adjacent runs first.
  segmentation: run
  # Switch back to the voice's own language at the end of a sequence.
  revert_at_end: false
  # Don't switch dialects of the voice's own language (e.g. en-GB voice, en text).
  keep_default_dialect: false

# Language classifier
classifier:
  # lingua or whatlang
  backend: lingua
  # Restrict lingua to these languages. Empty loads every model.
  languages: []
  # Faster, smaller lingua models
  low_accuracy: true
  # Remembered classifications (0 disables)
  cache_size: 512

# Voice engine whose languages are used
engine:
  # piper, espeak, static or opaque
  kind: static
  # Active voice: a piper model name, an espeak voice, or a static language
  voice: ""
  piper:
    dir: "~/.local/share/piper"
  espeak:
    binary: "espeak-ng"
  static:
    voices: [en-US]
  opaque:
    # The opaque engine's own language, if known
    language: ""
`

var defaultConfigPath string

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the langspeak config file",
	Long:    paragraph(fmt.Sprintf("\n%s the langspeak config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("langspeak config\nlangspeak config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("langspeak", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

// ensureConfigFile settles which config file the config command edits and
// writes the default one there if it does not exist yet.
func ensureConfigFile() error {
	file := configFile
	for _, candidate := range []string{viper.GetViper().ConfigFileUsed(), defaultConfigPath} {
		if file == "" {
			file = candidate
		}
	}
	if file == "" {
		return errors.New("no configuration directory found")
	}

	created, err := writeDefaultConfig(file)
	if err != nil {
		return err
	}
	if created {
		log.Info("Created default configuration", "path", file)
	}
	configFile = file
	return nil
}

// writeDefaultConfig creates file with the default settings. An existing file
// is left alone and reported as not created.
func writeDefaultConfig(file string) (bool, error) {
	if ext := path.Ext(file); ext != ".yaml" && ext != ".yml" {
		return false, fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return false, fmt.Errorf("unable create directory: %w", err)
	}

	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("unable to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(defaultConfig); err != nil {
		return false, fmt.Errorf("unable to write config file: %w", err)
	}
	return true, nil
}
