package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/f3rmion/subkana/internal/subkana"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAnalyzer struct {
	calls []string
	err   error
}

func (a *countingAnalyzer) Analyze(_ context.Context, sentence string) (*subkana.AnalysisResult, error) {
	a.calls = append(a.calls, sentence)
	if a.err != nil {
		return nil, a.err
	}
	return &subkana.AnalysisResult{Sentence: sentence, Tokens: []subkana.Token{{Surface: sentence}}}, nil
}

func TestGatewayCachesBySentence(t *testing.T) {
	backend := &countingAnalyzer{}
	g := NewGateway(backend, nil)

	first, err := g.Analyze(context.Background(), "こんにちは")
	require.NoError(t, err)
	second, err := g.Analyze(context.Background(), "こんにちは")
	require.NoError(t, err)

	assert.Len(t, backend.calls, 1, "second call must be served from cache")
	assert.Same(t, first, second)

	cached, ok := g.Cached("こんにちは")
	require.True(t, ok)
	assert.Same(t, first, cached)
}

func TestGatewayKeysAreExact(t *testing.T) {
	backend := &countingAnalyzer{}
	g := NewGateway(backend, nil)

	for _, s := range []string{"こんにちは", " こんにちは", "こんにちは。"} {
		_, err := g.Analyze(context.Background(), s)
		require.NoError(t, err)
	}
	assert.Len(t, backend.calls, 3)
	assert.Equal(t, 3, g.Len())
}

func TestGatewayDoesNotCacheFailures(t *testing.T) {
	backend := &countingAnalyzer{err: &NetworkError{StatusCode: 500}}
	g := NewGateway(backend, nil)

	_, err := g.Analyze(context.Background(), "テスト")
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))

	backend.err = nil
	r, err := g.Analyze(context.Background(), "テスト")
	require.NoError(t, err)
	assert.Equal(t, "テスト", r.Sentence)
	assert.Len(t, backend.calls, 2)
}

func TestGatewayFirstAnswerWins(t *testing.T) {
	backend := &countingAnalyzer{}
	g := NewGateway(backend, nil)

	first, err := g.Analyze(context.Background(), "学生")
	require.NoError(t, err)

	// A different backend answer later is never seen.
	g.backend = &countingAnalyzer{}
	again, err := g.Analyze(context.Background(), "学生")
	require.NoError(t, err)
	assert.Same(t, first, again)
}

func TestGatewayKeepsResultWithBadSpans(t *testing.T) {
	g := NewGateway(analyzerFunc(func(_ context.Context, s string) (*subkana.AnalysisResult, error) {
		return &subkana.AnalysisResult{
			Sentence:        s,
			GrammarPatterns: []subkana.GrammarPattern{{ID: "x", Span: subkana.Span{Start: 5, End: 9}}},
		}, nil
	}), nil)

	r, err := g.Analyze(context.Background(), "短い")
	require.NoError(t, err)
	assert.Len(t, r.GrammarPatterns, 1)
}

type analyzerFunc func(ctx context.Context, sentence string) (*subkana.AnalysisResult, error)

func (f analyzerFunc) Analyze(ctx context.Context, sentence string) (*subkana.AnalysisResult, error) {
	return f(ctx, sentence)
}
