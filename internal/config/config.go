// Package config loads langspeak settings from a YAML file and the
// environment, and serves them to the pipeline on every sequence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgnsrekt/langspeak/internal/detect"
	"github.com/dgnsrekt/langspeak/internal/inject"
	"github.com/dgnsrekt/langspeak/internal/lang"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Engine kinds.
const (
	EnginePiper  = "piper"
	EngineEspeak = "espeak"
	EngineStatic = "static"
	EngineOpaque = "opaque"
)

// Config contains all langspeak configuration options.
type Config struct {
	Language   LanguageConfig   `yaml:"language"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Engine     EngineConfig     `yaml:"engine"`
}

// LanguageConfig controls directive injection.
type LanguageConfig struct {
	Whitelist          []lang.Code `yaml:"whitelist"`
	Fallback           []lang.Code `yaml:"fallback"`
	MinRunLength       int         `yaml:"min_run_length"`
	MinConfidence      float64     `yaml:"min_confidence"`
	Segmentation       string      `yaml:"segmentation"`
	RevertAtEnd        bool        `yaml:"revert_at_end"`
	KeepDefaultDialect bool        `yaml:"keep_default_dialect"`
}

// ClassifierConfig selects and tunes the language classifier.
type ClassifierConfig struct {
	Backend     string      `yaml:"backend"`
	Languages   []lang.Code `yaml:"languages"`
	LowAccuracy bool        `yaml:"low_accuracy"`
	CacheSize   int         `yaml:"cache_size"`
}

// EngineConfig selects the voice engine whose capabilities are resolved.
type EngineConfig struct {
	Kind   string       `yaml:"kind"`
	Voice  string       `yaml:"voice"`
	Piper  PiperConfig  `yaml:"piper"`
	Espeak EspeakConfig `yaml:"espeak"`
	Static StaticConfig `yaml:"static"`
	Opaque OpaqueConfig `yaml:"opaque"`
}

// PiperConfig locates installed piper voice models.
type PiperConfig struct {
	Dir string `yaml:"dir"`
}

// EspeakConfig locates the espeak-ng binary.
type EspeakConfig struct {
	Binary string `yaml:"binary"`
}

// StaticConfig lists voice languages by hand.
type StaticConfig struct {
	Voices []lang.Code `yaml:"voices"`
}

// OpaqueConfig configures an engine that cannot list its voices.
type OpaqueConfig struct {
	Language lang.Code `yaml:"language"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Language: LanguageConfig{
			Fallback:     []lang.Code{"en"},
			MinRunLength: inject.DefaultMinRunLength,
			Segmentation: string(inject.SegmentRun),
		},
		Classifier: ClassifierConfig{
			Backend:     detect.BackendLingua,
			LowAccuracy: true,
			CacheSize:   512,
		},
		Engine: EngineConfig{
			Kind:   EngineStatic,
			Piper:  PiperConfig{Dir: "~/.local/share/piper"},
			Espeak: EspeakConfig{Binary: "espeak-ng"},
			Static: StaticConfig{Voices: []lang.Code{"en-US"}},
		},
	}
}

// Validate checks if the configuration is valid. Enumerated values are
// lowercased in place.
func (c *Config) Validate() error {
	c.Language.Segmentation = strings.ToLower(c.Language.Segmentation)
	switch inject.Segmentation(c.Language.Segmentation) {
	case inject.SegmentRun, inject.SegmentGroup:
	default:
		return fmt.Errorf("%w: segmentation %q must be one of [run group]", ErrInvalidConfig, c.Language.Segmentation)
	}

	if c.Language.MinRunLength < 0 {
		return fmt.Errorf("%w: min_run_length must not be negative, got %d", ErrInvalidConfig, c.Language.MinRunLength)
	}
	if c.Language.MinConfidence < 0 || c.Language.MinConfidence > 1 {
		return fmt.Errorf("%w: min_confidence must be between 0.0 and 1.0, got %f", ErrInvalidConfig, c.Language.MinConfidence)
	}

	c.Classifier.Backend = strings.ToLower(c.Classifier.Backend)
	switch c.Classifier.Backend {
	case detect.BackendLingua, detect.BackendWhatlang:
	default:
		return fmt.Errorf("%w: classifier backend %q must be one of [%s %s]",
			ErrInvalidConfig, c.Classifier.Backend, detect.BackendLingua, detect.BackendWhatlang)
	}
	if c.Classifier.CacheSize < 0 {
		return fmt.Errorf("%w: cache_size must not be negative, got %d", ErrInvalidConfig, c.Classifier.CacheSize)
	}

	c.Engine.Kind = strings.ToLower(c.Engine.Kind)
	validEngines := []string{EnginePiper, EngineEspeak, EngineStatic, EngineOpaque}
	engineValid := false
	for _, e := range validEngines {
		if c.Engine.Kind == e {
			engineValid = true
			break
		}
	}
	if !engineValid {
		return fmt.Errorf("%w: engine kind %q must be one of %v", ErrInvalidConfig, c.Engine.Kind, validEngines)
	}
	if c.Engine.Kind == EngineEspeak && c.Engine.Espeak.Binary == "" {
		return fmt.Errorf("%w: espeak binary must be set", ErrInvalidConfig)
	}
	if c.Engine.Kind == EnginePiper && c.Engine.Piper.Dir == "" {
		return fmt.Errorf("%w: piper dir must be set", ErrInvalidConfig)
	}

	return nil
}

// DetectPolicy returns the classifier adapter policy.
func (c Config) DetectPolicy() detect.Policy {
	return detect.Policy{
		Whitelist:     c.Language.Whitelist,
		MinConfidence: c.Language.MinConfidence,
	}
}

// InjectOptions returns injector options for a voice whose own language is
// defaultLang.
func (c Config) InjectOptions(defaultLang lang.Code) inject.Options {
	return inject.Options{
		Fallback:           c.Language.Fallback,
		MinRunLength:       c.Language.MinRunLength,
		Segmentation:       inject.Segmentation(c.Language.Segmentation),
		RevertAtEnd:        c.Language.RevertAtEnd,
		DefaultLanguage:    defaultLang,
		KeepDefaultDialect: c.Language.KeepDefaultDialect,
	}
}

// LinguaConfig returns the lingua backend settings.
func (c Config) LinguaConfig() detect.LinguaConfig {
	return detect.LinguaConfig{
		Languages:   c.Classifier.Languages,
		LowAccuracy: c.Classifier.LowAccuracy,
	}
}
