package pipeline

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/langspeak/internal/inject"
	"github.com/dgnsrekt/langspeak/internal/lang"
	"github.com/dgnsrekt/langspeak/internal/speech"
	"github.com/dgnsrekt/langspeak/internal/voices"
)

// Interceptor rewrites sequences before they reach the sink. Rewriting never
// blocks speech: on any failure the original sequence is forwarded.
type Interceptor struct {
	services *Services
	sink     speech.Sink
	// dispatch caches tables for Dispatch, which may target a voice other
	// than the active one.
	dispatch *voices.Resolver
	logger   *log.Logger
}

// NewInterceptor creates an interceptor that forwards to sink.
func NewInterceptor(services *Services, sink speech.Sink, logger *log.Logger) *Interceptor {
	if logger == nil {
		logger = log.Default()
	}
	return &Interceptor{
		services: services,
		sink:     sink,
		dispatch: voices.NewResolver(logger),
		logger:   logger.WithPrefix("pipeline"),
	}
}

// Submit rewrites seq and forwards it. Only sink errors are returned.
func (i *Interceptor) Submit(ctx context.Context, seq speech.Sequence) error {
	return i.sink.Speak(ctx, i.Rewrite(ctx, seq))
}

// Rewrite returns seq with language changes inserted, or seq itself when
// rewriting fails.
func (i *Interceptor) Rewrite(ctx context.Context, seq speech.Sequence) (out speech.Sequence) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Recovered from panic while rewriting, forwarding original", "panic", r)
			out = seq
		}
	}()

	if !seq.HasText() {
		return seq
	}

	table, err := i.services.Capabilities(ctx)
	if err != nil {
		i.logger.Warn("Capability lookup failed, forwarding original", "error", err)
		return seq
	}

	cfg := i.services.Config()
	policy := cfg.DetectPolicy()
	adapter := i.services.Classifier()
	classify := func(text string) lang.Code {
		return adapter.Classify(text, policy)
	}

	rewritten, err := inject.New(cfg.InjectOptions(table.Default()), i.logger).Inject(seq, table, classify)
	if err != nil {
		i.logger.Warn("Injection failed, forwarding original", "error", err)
		return seq
	}
	return rewritten
}

// Dispatch is the last-chance correction before a sequence reaches a
// specific voice. Language changes the voice cannot render are replaced by the
// first renderable fallback, or removed. Only sink errors are returned.
func (i *Interceptor) Dispatch(ctx context.Context, voice voices.Engine, seq speech.Sequence) error {
	return i.sink.Speak(ctx, i.correct(ctx, voice, seq))
}

func (i *Interceptor) correct(ctx context.Context, voice voices.Engine, seq speech.Sequence) (out speech.Sequence) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Recovered from panic during dispatch, forwarding original", "panic", r)
			out = seq
		}
	}()

	if len(seq.LanguageChanges()) == 0 {
		return seq
	}
	table, err := i.dispatch.Resolve(ctx, voice)
	if err != nil {
		i.logger.Warn("Capability lookup failed during dispatch, forwarding original", "error", err)
		return seq
	}
	return Correct(seq, table, i.services.Config().Language.Fallback, i.logger)
}

// Correct replaces language changes caps cannot render with the first
// renderable fallback variant, removing them when there is none. Reverts are
// kept. Adjacent duplicate changes are collapsed. seq is not modified.
func Correct(seq speech.Sequence, caps inject.Capabilities, fallback []lang.Code, logger *log.Logger) speech.Sequence {
	if logger == nil {
		logger = log.Default()
	}
	out := make(speech.Sequence, 0, len(seq))
	for idx, it := range seq {
		lc, ok := it.(speech.LanguageChange)
		if !ok {
			out = append(out, it)
			continue
		}
		if !lc.IsRevert() {
			if _, ok := caps.Lookup(lc.Code); !ok {
				sub, found := firstRenderable(caps, fallback)
				if !found {
					logger.Debug("Removing unrenderable language change", "index", idx, "language", lc.Code,
						"error", fmt.Errorf("%w: %s", speech.ErrNoCompatibleVoice, lc.Code))
					continue
				}
				logger.Debug("Substituting fallback language", "index", idx, "from", lc.Code, "to", sub)
				lc = speech.LanguageChange{Code: sub}
			}
		}
		if n := len(out); n > 0 {
			if prev, ok := out[n-1].(speech.LanguageChange); ok && prev.Code == lc.Code {
				continue
			}
		}
		out = append(out, lc)
	}
	return out
}

func firstRenderable(caps inject.Capabilities, fallback []lang.Code) (lang.Code, bool) {
	for _, fb := range fallback {
		if variant, ok := caps.Lookup(fb); ok {
			return variant, true
		}
	}
	return lang.Default, false
}
