// Package pipeline sits between a speech producer and the synthesizer. It
// rewrites every submitted sequence so each run is spoken in its language.
package pipeline

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/langspeak/internal/config"
	"github.com/dgnsrekt/langspeak/internal/detect"
	"github.com/dgnsrekt/langspeak/internal/voices"
)

// ClassifierFactory builds the classifier model. It is called at most once.
type ClassifierFactory func(cfg config.Config) (detect.Classifier, error)

// DefaultClassifierFactory builds the configured backend.
func DefaultClassifierFactory(cfg config.Config) (detect.Classifier, error) {
	return detect.New(cfg.Classifier.Backend, cfg.LinguaConfig())
}

// Services holds what the interceptor needs: configuration, the active
// engine, its capability table and the classifier. Construct it once and share
// it.
type Services struct {
	provider config.Provider
	resolver *voices.Resolver
	factory  ClassifierFactory
	logger   *log.Logger

	engineMu sync.RWMutex
	engine   voices.Engine

	classifierOnce sync.Once
	adapter        *detect.Adapter
}

// NewServices creates the service handle. A nil factory uses
// DefaultClassifierFactory.
func NewServices(provider config.Provider, engine voices.Engine, factory ClassifierFactory, logger *log.Logger) *Services {
	if logger == nil {
		logger = log.Default()
	}
	if factory == nil {
		factory = DefaultClassifierFactory
	}
	return &Services{
		provider: provider,
		engine:   engine,
		factory:  factory,
		resolver: voices.NewResolver(logger),
		logger:   logger,
	}
}

// Config returns the configuration in effect.
func (s *Services) Config() config.Config {
	return s.provider.Current()
}

// Engine returns the active engine.
func (s *Services) Engine() voices.Engine {
	s.engineMu.RLock()
	defer s.engineMu.RUnlock()
	return s.engine
}

// SetEngine swaps the active engine. The capability table is rebuilt on the
// next sequence.
func (s *Services) SetEngine(e voices.Engine) {
	s.engineMu.Lock()
	s.engine = e
	s.engineMu.Unlock()
	s.resolver.Invalidate()
}

// Resolver returns the capability resolver.
func (s *Services) Resolver() *voices.Resolver {
	return s.resolver
}

// Capabilities returns the capability table of the active engine.
func (s *Services) Capabilities(ctx context.Context) (voices.Table, error) {
	return s.resolver.Resolve(ctx, s.Engine())
}

// Classifier returns the classifier adapter, loading the model on first use.
// A model that fails to load is reported once; the adapter then classifies
// everything as unknown.
func (s *Services) Classifier() *detect.Adapter {
	s.classifierOnce.Do(func() {
		cfg := s.Config()
		c, err := s.factory(cfg)
		if err != nil {
			s.logger.Error("Language classifier unavailable, detection disabled", "backend", cfg.Classifier.Backend, "error", err)
			s.adapter = detect.Unavailable(err, s.logger)
			return
		}
		s.logger.Debug("Language classifier loaded", "backend", cfg.Classifier.Backend)
		s.adapter = detect.NewAdapter(c, detect.NewCache(cfg.Classifier.CacheSize), s.logger)
	})
	return s.adapter
}
