package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/dgnsrekt/langspeak/internal/config"
	"github.com/dgnsrekt/langspeak/internal/detect"
	"github.com/dgnsrekt/langspeak/internal/lang"
	"github.com/dgnsrekt/langspeak/internal/mock"
	"github.com/dgnsrekt/langspeak/internal/pipeline"
	"github.com/dgnsrekt/langspeak/internal/speech"
	"github.com/dgnsrekt/langspeak/internal/voices"
	"github.com/dgnsrekt/langspeak/internal/voices/piper"
	"github.com/dgnsrekt/langspeak/internal/voices/static"
)

func TestBuildEngine(t *testing.T) {
	tests := []struct {
		kind     string
		expected string
	}{
		{config.EngineStatic, "static/en-US"},
		{config.EngineOpaque, "opaque/default"},
		{config.EngineEspeak, "espeak/"},
		{config.EnginePiper, "piper/"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			cfg := config.DefaultConfig().Engine
			cfg.Kind = tt.kind
			e, err := buildEngine(cfg)
			if err != nil {
				t.Fatalf("buildEngine failed: %v", err)
			}
			if e.ID() != tt.expected {
				t.Errorf("expected ID %q, got %q", tt.expected, e.ID())
			}
		})
	}

	cfg := config.DefaultConfig().Engine
	cfg.Kind = "sapi"
	if _, err := buildEngine(cfg); err == nil {
		t.Error("expected error for unknown engine kind")
	}
}

func TestFilterLines(t *testing.T) {
	classifier := mock.NewClassifier().Set("Bonjour", "fr")
	factory := func(config.Config) (detect.Classifier, error) { return classifier, nil }
	services := pipeline.NewServices(config.Static(config.DefaultConfig()),
		static.New("", []lang.Code{"en-US", "fr-FR"}), factory, nil)

	var out bytes.Buffer
	in := pipeline.NewInterceptor(services, speech.NewEncoderSink(&out), nil)
	input := strings.Join([]string{
		`[{"type":"text","text":"Bonjour"}]`,
		`not json`,
		`[{"type":"pitch","value":5}]`,
	}, "\n")

	if err := filterLines(context.Background(), in, services, strings.NewReader(input), &out); err != nil {
		t.Fatalf("filterLines failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out.String())
	}
	first, err := speech.Unmarshal([]byte(lines[0]))
	if err != nil {
		t.Fatalf("unable to decode output: %v", err)
	}
	if len(first) != 2 || first[0] != (speech.LanguageChange{Code: "fr-FR"}) {
		t.Errorf("expected injected fr-FR, got %s", first)
	}
	if lines[1] != "not json" {
		t.Errorf("expected unreadable line passed through, got %q", lines[1])
	}
	if lines[2] != `[{"type":"pitch","value":5}]` {
		t.Errorf("expected directive-only line unchanged, got %q", lines[2])
	}

	if stats := services.Classifier().Cache().Stats(); stats.Misses != 1 || stats.ItemCount != 1 {
		t.Errorf("expected one cached detection, got %+v", stats)
	}
	if services.Resolver().Queries() != 1 {
		t.Errorf("expected one voice enumeration, got %d", services.Resolver().Queries())
	}
	logStats(services)
}

func TestPrintTable(t *testing.T) {
	table := voices.NewTable("static/en-US", "en-US", []voices.Voice{
		{ID: "v1", Language: "en-US"},
		{ID: "v2", Language: "fr-FR"},
	})
	var out bytes.Buffer
	if err := printTable(&out, table); err != nil {
		t.Fatalf("printTable failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "(2 languages)") || !strings.Contains(got, "* en") || !strings.Contains(got, "v2") {
		t.Errorf("unexpected table output:\n%s", got)
	}

	out.Reset()
	if err := printTable(&out, voices.PassthroughTable("opaque/x", lang.Default)); err != nil {
		t.Fatalf("printTable failed: %v", err)
	}
	if !strings.Contains(out.String(), "passed through") {
		t.Errorf("expected passthrough notice, got %q", out.String())
	}
}

func TestPrintDetection(t *testing.T) {
	var out bytes.Buffer
	candidates := []detect.Candidate{{Code: "de", Confidence: 0.8}, {Code: "nl", Confidence: 0.1}}
	policy := detect.Policy{Whitelist: []lang.Code{"de"}}
	if err := printDetection(&out, "de", candidates, policy, false); err != nil {
		t.Fatalf("printDetection failed: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "Language: de (German)") {
		t.Errorf("unexpected heading in %q", got)
	}
	if !strings.Contains(got, "not whitelisted") {
		t.Errorf("expected nl to be marked, got %q", got)
	}
}

func writePiperModel(t *testing.T, dir, name, code string) {
	t.Helper()
	doc := `{"dataset":"` + name + `","audio":{"quality":"medium"},"language":{"code":"` + code + `"}}`
	if err := os.WriteFile(filepath.Join(dir, name+piper.ConfigSuffix), []byte(doc), 0o644); err != nil {
		t.Fatalf("failed to write model config: %v", err)
	}
}

func TestWatchVoices(t *testing.T) {
	dir := t.TempDir()
	writePiperModel(t, dir, "de_DE-thorsten-medium", "de_DE")
	e, err := piper.New(dir, "", nil)
	if err != nil {
		t.Fatalf("piper.New failed: %v", err)
	}
	services := pipeline.NewServices(config.Static(config.DefaultConfig()), e, nil, nil)
	ctx := context.Background()

	stop := watchVoices(ctx, e, services)
	defer stop()

	table, err := services.Capabilities(ctx)
	if err != nil || table.Len() != 1 {
		t.Fatalf("expected 1 language, got %d (%v)", table.Len(), err)
	}

	writePiperModel(t, dir, "fr_FR-siwis-medium", "fr_FR")
	deadline := time.Now().Add(5 * time.Second)
	for table.Len() != 2 {
		if time.Now().After(deadline) {
			t.Fatal("expected the new voice to be picked up")
		}
		time.Sleep(50 * time.Millisecond)
		if table, err = services.Capabilities(ctx); err != nil {
			t.Fatalf("Capabilities failed: %v", err)
		}
	}

	// Engines without a voice directory get a no-op watcher.
	watchVoices(ctx, static.New("", []lang.Code{"en-US"}), services)()
}

func TestConfigSearchDirs(t *testing.T) {
	t.Setenv("LANGSPEAK_CONFIG_HOME", "/opt/langspeak")
	t.Setenv("XDG_CONFIG_HOME", "/home/someone/.config")

	dirs, err := configSearchDirs()
	if err != nil {
		t.Fatalf("configSearchDirs failed: %v", err)
	}
	if len(dirs) < 2 || dirs[0] != "/opt/langspeak" || dirs[1] != filepath.Join("/home/someone/.config", "langspeak") {
		t.Errorf("expected overrides first, got %v", dirs)
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LANGSPEAK_CONFIG_HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	got, err := loadDefaultConfig(viper.New())
	if err != nil {
		t.Fatalf("loadDefaultConfig failed: %v", err)
	}
	if expected := filepath.Join(dir, "langspeak.yml"); got != expected {
		t.Errorf("expected new config path %q, got %q", expected, got)
	}

	if err := os.WriteFile(got, []byte("language:\n  fallback: [fr]\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	v := viper.New()
	used, err := loadDefaultConfig(v)
	if err != nil {
		t.Fatalf("loadDefaultConfig failed: %v", err)
	}
	if used != got {
		t.Errorf("expected %q to be read, got %q", got, used)
	}
	cfg, err := config.LoadFromViper(v)
	if err != nil {
		t.Fatalf("LoadFromViper failed: %v", err)
	}
	if len(cfg.Language.Fallback) != 1 || cfg.Language.Fallback[0] != "fr" {
		t.Errorf("expected fallback [fr], got %v", cfg.Language.Fallback)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "langspeak.yml")

	created, err := writeDefaultConfig(file)
	if err != nil || !created {
		t.Fatalf("expected the file to be created, got (%v, %v)", created, err)
	}
	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("default config does not parse: %v", err)
	}
	if _, err := config.LoadFromViper(v); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}

	if created, err := writeDefaultConfig(file); err != nil || created {
		t.Errorf("expected an existing file to be left alone, got (%v, %v)", created, err)
	}
	if _, err := writeDefaultConfig(filepath.Join(t.TempDir(), "langspeak.toml")); err == nil {
		t.Error("expected error for a non-yaml config file")
	}
}
