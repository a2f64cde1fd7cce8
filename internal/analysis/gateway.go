package analysis

import (
	"context"

	"github.com/f3rmion/subkana/internal/logging"
	"github.com/f3rmion/subkana/internal/subkana"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Analyzer resolves a sentence to its breakdown.
type Analyzer interface {
	Analyze(ctx context.Context, sentence string) (*subkana.AnalysisResult, error)
}

// Gateway fronts an Analyzer with a session cache keyed by the exact
// sentence text. Entries never expire and are never invalidated, so a
// repeated sentence always gets the first successful answer. Concurrent
// misses for the same sentence are not merged; each goes to the backend.
type Gateway struct {
	backend Analyzer
	cache   *cache.Cache
	log     *zap.Logger
}

// NewGateway creates a gateway over backend.
func NewGateway(backend Analyzer, logger *zap.Logger) *Gateway {
	return &Gateway{
		backend: backend,
		cache:   cache.New(cache.NoExpiration, 0),
		log:     logging.OrNop(logger).Named("gateway"),
	}
}

// Cached returns the stored result for sentence without touching the network.
func (g *Gateway) Cached(sentence string) (*subkana.AnalysisResult, bool) {
	if x, found := g.cache.Get(sentence); found {
		return x.(*subkana.AnalysisResult), true
	}
	return nil, false
}

// Analyze returns the cached result for sentence or asks the backend and
// caches a successful answer. Failures are not cached.
func (g *Gateway) Analyze(ctx context.Context, sentence string) (*subkana.AnalysisResult, error) {
	if r, ok := g.Cached(sentence); ok {
		g.log.Debug("cache hit", zap.String("sentence", sentence))
		return r, nil
	}

	r, err := g.backend.Analyze(ctx, sentence)
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		// Bad spans are skipped at highlight time.
		g.log.Warn("analysis result has invalid spans", zap.String("sentence", sentence), zap.Error(err))
	}

	g.cache.Set(sentence, r, cache.NoExpiration)
	return r, nil
}

// Len returns the number of cached sentences.
func (g *Gateway) Len() int {
	return g.cache.ItemCount()
}
