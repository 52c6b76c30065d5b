// Package piper reports the languages of installed piper voice models.
//
// Piper ships each voice as a pair of files: model.onnx and model.onnx.json.
// The JSON config carries the language code and dataset name, which is all
// the capability resolver needs.
package piper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"

	"github.com/dgnsrekt/langspeak/internal/lang"
	"github.com/dgnsrekt/langspeak/internal/speech"
	"github.com/dgnsrekt/langspeak/internal/voices"
)

// ConfigSuffix is the file suffix of a model config.
const ConfigSuffix = ".onnx.json"

// modelConfig is the subset of a piper model config that is read.
type modelConfig struct {
	Dataset  string `json:"dataset"`
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
	Audio struct {
		Quality string `json:"quality"`
	} `json:"audio"`
}

// Engine is a piper voice directory. The active voice is a model name such as
// "en_US-lessac-medium".
type Engine struct {
	dir    string
	voice  string
	logger *log.Logger

	mu          sync.Mutex
	defaultLang lang.Code
	loaded      bool
}

// New creates an engine for the models in dir. A leading ~ is expanded.
func New(dir, voice string, logger *log.Logger) (*Engine, error) {
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand piper dir %q: %w", dir, err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		dir:    expanded,
		voice:  strings.TrimSuffix(voice, ConfigSuffix),
		logger: logger.WithPrefix("piper"),
	}, nil
}

// Dir returns the expanded model directory.
func (e *Engine) Dir() string {
	return e.dir
}

// ID implements voices.Engine.
func (e *Engine) ID() string {
	return "piper/" + e.voice
}

// DefaultLanguage implements voices.Engine. It reads the active model's
// config on first use.
func (e *Engine) DefaultLanguage() lang.Code {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded && e.voice != "" {
		e.loaded = true
		v, err := readModel(filepath.Join(e.dir, e.voice+ConfigSuffix))
		if err != nil {
			e.logger.Debug("Active voice config unreadable", "voice", e.voice, "error", err)
		} else {
			e.defaultLang = v.Language
		}
	}
	return e.defaultLang
}

// Voices implements voices.EnumerableVoices. The active voice is listed
// first so its variant wins for its language. A missing directory counts as
// an engine that cannot be queried.
func (e *Engine) Voices(ctx context.Context) ([]voices.Voice, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("piper dir %s: %w", e.dir, speech.ErrCapabilityQueryUnsupported)
		}
		return nil, fmt.Errorf("failed to read piper dir: %w", err)
	}

	var list []voices.Voice
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ConfigSuffix) {
			continue
		}
		v, err := readModel(filepath.Join(e.dir, entry.Name()))
		if err != nil {
			e.logger.Warn("Skipping voice model", "file", entry.Name(), "error", err)
			continue
		}
		if v.ID == e.voice {
			list = append([]voices.Voice{v}, list...)
			continue
		}
		list = append(list, v)
	}

	e.logger.Debug("Scanned voice models", "dir", e.dir, "count", len(list))
	return list, nil
}

func readModel(path string) (voices.Voice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return voices.Voice{}, err
	}
	var cfg modelConfig
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return voices.Voice{}, fmt.Errorf("invalid model config: %w", err)
	}
	code, err := lang.Parse(cfg.Language.Code)
	if err != nil {
		return voices.Voice{}, err
	}

	name := cfg.Dataset
	if cfg.Audio.Quality != "" {
		name += " (" + cfg.Audio.Quality + ")"
	}
	return voices.Voice{
		ID:       strings.TrimSuffix(filepath.Base(path), ConfigSuffix),
		Name:     name,
		Language: code,
	}, nil
}

// Watch calls onChange whenever a model config is added, changed or removed,
// until ctx is done.
func (e *Engine) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(e.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	e.logger.Debug("Watching for voice changes", "dir", e.dir)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(event.Name, ConfigSuffix) || event.Op == fsnotify.Chmod {
					continue
				}
				e.logger.Debug("Voice models changed", "file", filepath.Base(event.Name), "op", event.Op.String())
				e.mu.Lock()
				e.loaded = false
				e.mu.Unlock()
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				e.logger.Error("Watcher error", "error", err)
			}
		}
	}()
	return nil
}
