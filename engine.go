package main

import (
	"context"
	"fmt"
	"reflect"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/langspeak/internal/config"
	"github.com/dgnsrekt/langspeak/internal/pipeline"
	"github.com/dgnsrekt/langspeak/internal/voices"
	"github.com/dgnsrekt/langspeak/internal/voices/espeak"
	"github.com/dgnsrekt/langspeak/internal/voices/piper"
	"github.com/dgnsrekt/langspeak/internal/voices/static"
)

// buildEngine creates the configured voice engine.
func buildEngine(cfg config.EngineConfig) (voices.Engine, error) {
	switch cfg.Kind {
	case config.EnginePiper:
		return piper.New(cfg.Piper.Dir, cfg.Voice, log.Default())
	case config.EngineEspeak:
		return espeak.New(cfg.Espeak.Binary, cfg.Voice, log.Default()), nil
	case config.EngineStatic:
		return static.New(cfg.Voice, cfg.Static.Voices), nil
	case config.EngineOpaque:
		name := cfg.Voice
		if name == "" {
			name = "default"
		}
		return static.NewOpaque(name, cfg.Opaque.Language), nil
	default:
		return nil, fmt.Errorf("unknown engine kind %q", cfg.Kind)
	}
}

// setupServices loads configuration and builds the service handle. With
// watch set, config file edits and piper voice installs apply to the next
// sequence.
func setupServices(ctx context.Context, watch bool) (*pipeline.Services, error) {
	provider, err := config.NewViperProvider(nil, log.Default())
	if err != nil {
		return nil, err
	}
	cfg := provider.Current()

	engine, err := buildEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	services := pipeline.NewServices(provider, engine, nil, log.Default())

	if !watch {
		return services, nil
	}

	stopWatch := watchVoices(ctx, engine, services)
	provider.OnChange(func(next config.Config) {
		if reflect.DeepEqual(next.Engine, cfg.Engine) {
			return
		}
		e, err := buildEngine(next.Engine)
		if err != nil {
			log.Warn("Keeping previous voice engine", "error", err)
			return
		}
		cfg = next
		stopWatch()
		services.SetEngine(e)
		stopWatch = watchVoices(ctx, e, services)
		log.Info("Voice engine changed", "identity", e.ID())
	})
	provider.Watch()
	return services, nil
}

// watchVoices invalidates the capability table when a piper engine's voice
// directory changes. The returned func stops the watcher.
func watchVoices(ctx context.Context, engine voices.Engine, services *pipeline.Services) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	p, ok := engine.(*piper.Engine)
	if !ok {
		return cancel
	}
	if err := p.Watch(ctx, services.Resolver().Invalidate); err != nil {
		log.Warn("Not watching piper voices", "error", err)
	}
	return cancel
}
