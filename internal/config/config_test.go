package config

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/dgnsrekt/langspeak/internal/inject"
	"github.com/dgnsrekt/langspeak/internal/lang"
)

func readYAML(t *testing.T, doc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(doc)); err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	return v
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got %v", err)
	}
	if cfg.Language.MinRunLength != inject.DefaultMinRunLength {
		t.Errorf("expected min run length %d, got %d", inject.DefaultMinRunLength, cfg.Language.MinRunLength)
	}
	if !reflect.DeepEqual(cfg.Language.Fallback, []lang.Code{"en"}) {
		t.Errorf("expected fallback [en], got %v", cfg.Language.Fallback)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad segmentation", func(c *Config) { c.Language.Segmentation = "sentence" }},
		{"negative min run", func(c *Config) { c.Language.MinRunLength = -1 }},
		{"confidence above one", func(c *Config) { c.Language.MinConfidence = 1.5 }},
		{"unknown backend", func(c *Config) { c.Classifier.Backend = "cld3" }},
		{"negative cache", func(c *Config) { c.Classifier.CacheSize = -2 }},
		{"unknown engine", func(c *Config) { c.Engine.Kind = "sapi" }},
		{"espeak without binary", func(c *Config) { c.Engine.Kind = EngineEspeak; c.Engine.Espeak.Binary = "" }},
		{"piper without dir", func(c *Config) { c.Engine.Kind = EnginePiper; c.Engine.Piper.Dir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestValidateNormalizesCase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Language.Segmentation = "GROUP"
	cfg.Classifier.Backend = "WhatLang"
	cfg.Engine.Kind = "Opaque"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Language.Segmentation != "group" || cfg.Classifier.Backend != "whatlang" || cfg.Engine.Kind != "opaque" {
		t.Errorf("expected lowercased values, got %+v", cfg)
	}
}

func TestLoadFromViper(t *testing.T) {
	v := readYAML(t, `
language:
  whitelist: [en, FR, de_DE]
  fallback: de,en
  min_run_length: 5
  min_confidence: 0.25
  segmentation: group
  revert_at_end: true
classifier:
  backend: whatlang
  cache_size: 0
engine:
  kind: opaque
  opaque:
    language: es_ES
`)
	cfg, err := LoadFromViper(v)
	if err != nil {
		t.Fatalf("LoadFromViper failed: %v", err)
	}

	if !reflect.DeepEqual(cfg.Language.Whitelist, []lang.Code{"en", "fr", "de-DE"}) {
		t.Errorf("unexpected whitelist %v", cfg.Language.Whitelist)
	}
	if !reflect.DeepEqual(cfg.Language.Fallback, []lang.Code{"de", "en"}) {
		t.Errorf("expected comma list to parse, got %v", cfg.Language.Fallback)
	}
	if cfg.Language.MinRunLength != 5 || cfg.Language.MinConfidence != 0.25 {
		t.Errorf("unexpected numeric settings %+v", cfg.Language)
	}
	if cfg.Language.Segmentation != "group" || !cfg.Language.RevertAtEnd {
		t.Errorf("unexpected segmentation settings %+v", cfg.Language)
	}
	if cfg.Classifier.Backend != "whatlang" || cfg.Classifier.CacheSize != 0 {
		t.Errorf("unexpected classifier settings %+v", cfg.Classifier)
	}
	if !cfg.Classifier.LowAccuracy {
		t.Error("expected low_accuracy default to survive")
	}
	if cfg.Engine.Kind != EngineOpaque || cfg.Engine.Opaque.Language != "es-ES" {
		t.Errorf("unexpected engine settings %+v", cfg.Engine)
	}

	opts := cfg.InjectOptions("en-US")
	if opts.Segmentation != inject.SegmentGroup || opts.DefaultLanguage != "en-US" || !opts.RevertAtEnd {
		t.Errorf("unexpected inject options %+v", opts)
	}
	if p := cfg.DetectPolicy(); p.MinConfidence != 0.25 || len(p.Whitelist) != 3 {
		t.Errorf("unexpected policy %+v", p)
	}
}

func TestLoadFromViperDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		t.Fatalf("LoadFromViper failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFromViperBadCode(t *testing.T) {
	v := viper.New()
	v.Set("language.fallback", "en,not a language!")
	if _, err := LoadFromViper(v); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	v = viper.New()
	v.Set("language.whitelist", 42)
	if _, err := LoadFromViper(v); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for a number, got %v", err)
	}
}

func TestViperProviderReload(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	p, err := NewViperProvider(v, nil)
	if err != nil {
		t.Fatalf("NewViperProvider failed: %v", err)
	}

	var notified []Config
	p.OnChange(func(c Config) { notified = append(notified, c) })

	v.Set("language.whitelist", "pt,es")
	if err := p.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if got := p.Current().Language.Whitelist; !reflect.DeepEqual(got, []lang.Code{"pt", "es"}) {
		t.Errorf("expected reloaded whitelist, got %v", got)
	}
	if len(notified) != 1 {
		t.Errorf("expected one notification, got %d", len(notified))
	}

	v.Set("language.segmentation", "paragraph")
	if err := p.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if got := p.Current().Language.Segmentation; got != "run" {
		t.Errorf("expected previous config to stay, got segmentation %q", got)
	}
	if len(notified) != 1 {
		t.Errorf("failed reload must not notify, got %d", len(notified))
	}
}

func TestStaticProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Language.RevertAtEnd = true
	var p Provider = Static(cfg)
	if !p.Current().Language.RevertAtEnd {
		t.Error("expected static config to be returned")
	}
}
