package voices

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/dgnsrekt/langspeak/internal/speech"
)

// ErrNoEngine is returned when no engine is active.
var ErrNoEngine = errors.New("no active voice engine")

// Resolver builds capability tables and caches the one for the active engine
// identity. Resolving a different identity discards the cached table.
type Resolver struct {
	mu      sync.Mutex
	cached  *Table
	queries int
	// generation is bumped by Invalidate. A build started under an older
	// generation does not populate the cache.
	generation uint64

	group  singleflight.Group
	logger *log.Logger
}

// NewResolver creates a resolver. A nil logger uses the default logger.
func NewResolver(logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{logger: logger.WithPrefix("voices")}
}

// Resolve returns the capability table for e, enumerating voices only when
// the engine identity has no cached table.
func (r *Resolver) Resolve(ctx context.Context, e Engine) (Table, error) {
	if e == nil {
		return Table{}, ErrNoEngine
	}
	id := e.ID()

	r.mu.Lock()
	if r.cached != nil {
		if r.cached.identity == id {
			t := *r.cached
			r.mu.Unlock()
			return t, nil
		}
		r.logger.Debug("Active voice changed, dropping capability table", "from", r.cached.identity, "to", id)
		r.cached = nil
	}
	gen := r.generation
	r.mu.Unlock()

	v, err, _ := r.group.Do(r.key(id, gen), func() (any, error) {
		t, err := r.build(ctx, e)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		if r.generation == gen {
			r.cached = &t
		} else {
			r.logger.Debug("Discarding capability table built before invalidation", "identity", id)
		}
		r.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return Table{}, err
	}
	return v.(Table), nil
}

// Invalidate drops the cached table so the next Resolve enumerates again.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached != nil {
		r.logger.Debug("Capability table invalidated", "identity", r.cached.identity)
	}
	r.cached = nil
	r.generation++
}

func (r *Resolver) key(id string, gen uint64) string {
	return fmt.Sprintf("%s#%d", id, gen)
}

// Queries returns how many times an engine has been asked for its voices.
func (r *Resolver) Queries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries
}

func (r *Resolver) build(ctx context.Context, e Engine) (Table, error) {
	id := e.ID()
	switch eng := e.(type) {
	case OpaqueVoices:
		r.logger.Info("Engine cannot enumerate voices, assuming every language", "identity", id)
		return PassthroughTable(id, e.DefaultLanguage()), nil
	case EnumerableVoices:
		r.mu.Lock()
		r.queries++
		r.mu.Unlock()

		list, err := eng.Voices(ctx)
		if errors.Is(err, speech.ErrCapabilityQueryUnsupported) {
			r.logger.Info("Voice enumeration unsupported, assuming every language", "identity", id)
			return PassthroughTable(id, e.DefaultLanguage()), nil
		}
		if err != nil {
			return Table{}, speech.NewError(fmt.Errorf("enumerate voices: %w", err), "voices", "resolve").
				WithContext("identity", id)
		}
		t := NewTable(id, e.DefaultLanguage(), list)
		for _, entry := range t.Entries() {
			r.logger.Debug("Found voice", "language", entry.Base, "variant", entry.Variant, "voice", entry.Voice)
		}
		r.logger.Info("Capability table built", "identity", id, "languages", t.Len())
		return t, nil
	default:
		r.logger.Warn("Engine reports no voice capability, assuming every language", "identity", id)
		return PassthroughTable(id, e.DefaultLanguage()), nil
	}
}
