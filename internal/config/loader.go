package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/dgnsrekt/langspeak/internal/lang"
)

// LoadFromViper loads configuration from v. A nil v uses the global viper
// instance.
func LoadFromViper(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	cfg := DefaultConfig()
	var err error

	// Language settings
	if v.IsSet("language.whitelist") {
		if cfg.Language.Whitelist, err = getCodes(v, "language.whitelist"); err != nil {
			return cfg, err
		}
	}
	if v.IsSet("language.fallback") {
		if cfg.Language.Fallback, err = getCodes(v, "language.fallback"); err != nil {
			return cfg, err
		}
	}
	if v.IsSet("language.min_run_length") {
		cfg.Language.MinRunLength = v.GetInt("language.min_run_length")
	}
	if v.IsSet("language.min_confidence") {
		cfg.Language.MinConfidence = v.GetFloat64("language.min_confidence")
	}
	if v.IsSet("language.segmentation") {
		cfg.Language.Segmentation = v.GetString("language.segmentation")
	}
	if v.IsSet("language.revert_at_end") {
		cfg.Language.RevertAtEnd = v.GetBool("language.revert_at_end")
	}
	if v.IsSet("language.keep_default_dialect") {
		cfg.Language.KeepDefaultDialect = v.GetBool("language.keep_default_dialect")
	}

	// Classifier settings
	if v.IsSet("classifier.backend") {
		cfg.Classifier.Backend = v.GetString("classifier.backend")
	}
	if v.IsSet("classifier.languages") {
		if cfg.Classifier.Languages, err = getCodes(v, "classifier.languages"); err != nil {
			return cfg, err
		}
	}
	if v.IsSet("classifier.low_accuracy") {
		cfg.Classifier.LowAccuracy = v.GetBool("classifier.low_accuracy")
	}
	if v.IsSet("classifier.cache_size") {
		cfg.Classifier.CacheSize = v.GetInt("classifier.cache_size")
	}

	// Engine settings
	if cfg.Engine, err = loadEngineConfig(v); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid langspeak configuration: %w", err)
	}
	return cfg, nil
}

func loadEngineConfig(v *viper.Viper) (EngineConfig, error) {
	cfg := DefaultConfig().Engine

	if v.IsSet("engine.kind") {
		cfg.Kind = v.GetString("engine.kind")
	}
	if v.IsSet("engine.voice") {
		cfg.Voice = v.GetString("engine.voice")
	}
	if v.IsSet("engine.piper.dir") {
		cfg.Piper.Dir = v.GetString("engine.piper.dir")
	}
	if v.IsSet("engine.espeak.binary") {
		cfg.Espeak.Binary = v.GetString("engine.espeak.binary")
	}
	if v.IsSet("engine.static.voices") {
		codes, err := getCodes(v, "engine.static.voices")
		if err != nil {
			return cfg, err
		}
		cfg.Static.Voices = codes
	}
	if s := strings.TrimSpace(v.GetString("engine.opaque.language")); s != "" {
		code, err := lang.Parse(s)
		if err != nil {
			return cfg, fmt.Errorf("%w: engine.opaque.language: %v", ErrInvalidConfig, err)
		}
		cfg.Opaque.Language = code
	}

	return cfg, nil
}

// getCodes reads a language list stored either as a YAML list or as a comma
// separated string.
func getCodes(v *viper.Viper, key string) ([]lang.Code, error) {
	var raw []string
	switch val := v.Get(key).(type) {
	case nil:
		return nil, nil
	case string:
		raw = []string{val}
	case []string:
		raw = val
	case []any:
		for _, item := range val {
			raw = append(raw, fmt.Sprint(item))
		}
	default:
		return nil, fmt.Errorf("%w: %s: expected a list of language codes, got %T", ErrInvalidConfig, key, val)
	}

	codes, err := lang.ParseList(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return codes, nil
}

// SetDefaults sets default values in v. A nil v uses the global viper
// instance.
func SetDefaults(v *viper.Viper) {
	if v == nil {
		v = viper.GetViper()
	}
	defaults := DefaultConfig()

	// Language defaults
	v.SetDefault("language.whitelist", codeStrings(defaults.Language.Whitelist))
	v.SetDefault("language.fallback", codeStrings(defaults.Language.Fallback))
	v.SetDefault("language.min_run_length", defaults.Language.MinRunLength)
	v.SetDefault("language.min_confidence", defaults.Language.MinConfidence)
	v.SetDefault("language.segmentation", defaults.Language.Segmentation)
	v.SetDefault("language.revert_at_end", defaults.Language.RevertAtEnd)
	v.SetDefault("language.keep_default_dialect", defaults.Language.KeepDefaultDialect)

	// Classifier defaults
	v.SetDefault("classifier.backend", defaults.Classifier.Backend)
	v.SetDefault("classifier.languages", codeStrings(defaults.Classifier.Languages))
	v.SetDefault("classifier.low_accuracy", defaults.Classifier.LowAccuracy)
	v.SetDefault("classifier.cache_size", defaults.Classifier.CacheSize)

	// Engine defaults
	v.SetDefault("engine.kind", defaults.Engine.Kind)
	v.SetDefault("engine.voice", defaults.Engine.Voice)
	v.SetDefault("engine.piper.dir", defaults.Engine.Piper.Dir)
	v.SetDefault("engine.espeak.binary", defaults.Engine.Espeak.Binary)
	v.SetDefault("engine.static.voices", codeStrings(defaults.Engine.Static.Voices))
	v.SetDefault("engine.opaque.language", string(defaults.Engine.Opaque.Language))
}

func codeStrings(codes []lang.Code) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, string(c))
	}
	return out
}
