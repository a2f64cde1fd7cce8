package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/f3rmion/subkana/internal/config"
	"github.com/f3rmion/subkana/internal/subkana"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloBody = `{
	"sentence": "こんにちは",
	"tokens": [{"surface": "こんにちは", "lemma": "こんにちは", "pos": "感動詞", "conj": "*", "jlpt_level": "N5"}],
	"grammar_patterns": []
}`

func storeFor(url string) *config.Store {
	s := config.Defaults()
	s.APIBaseURL = url
	s.Timeout = 2 * time.Second
	return config.NewStore(s)
}

func TestClientAnalyzeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/analyze", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "こんにちは", req.Sentence)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(helloBody))
	}))
	defer srv.Close()

	c := NewClient(storeFor(srv.URL+"/api/v1/"), nil)
	r, err := c.Analyze(context.Background(), "こんにちは")
	require.NoError(t, err)
	assert.Equal(t, "こんにちは", r.Sentence)
	require.Len(t, r.Tokens, 1)
	assert.Equal(t, subkana.LevelN5, r.Tokens[0].Level)
	assert.Empty(t, r.GrammarPatterns)
}

func TestClientAnalyzeStatusError(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantDetail string
	}{
		{"string detail", `{"detail": "tokenizer unavailable"}`, "tokenizer unavailable"},
		{"list detail", `{"detail": [{"msg": "field required"}]}`, `[{"msg": "field required"}]`},
		{"no payload", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(storeFor(srv.URL), nil).Analyze(context.Background(), "テスト")
			var netErr *NetworkError
			require.ErrorAs(t, err, &netErr)
			assert.Equal(t, http.StatusServiceUnavailable, netErr.StatusCode)
			assert.Equal(t, tt.wantDetail, netErr.Detail)
			if tt.wantDetail != "" {
				assert.Contains(t, err.Error(), tt.wantDetail)
			}
		})
	}
}

func TestClientAnalyzeTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(storeFor(url), nil).Analyze(context.Background(), "テスト")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Zero(t, netErr.StatusCode)
	assert.Error(t, netErr.Err)
}

func TestClientAnalyzeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	s := config.Defaults()
	s.APIBaseURL = srv.URL
	s.Timeout = 50 * time.Millisecond

	_, err := NewClient(config.NewStore(s), nil).Analyze(context.Background(), "テスト")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClientAnalyzeProtocolError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"missing sentence", `{"tokens": [], "grammar_patterns": []}`},
		{"missing tokens", `{"sentence": "a", "grammar_patterns": []}`},
		{"missing patterns", `{"sentence": "a", "tokens": []}`},
		{"wrong type", `{"sentence": 1, "tokens": [], "grammar_patterns": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(storeFor(srv.URL), nil).Analyze(context.Background(), "テスト")
			var protoErr *ProtocolError
			require.ErrorAs(t, err, &protoErr)
		})
	}
}

func TestClientReadsBaseURLPerCall(t *testing.T) {
	var hits []string
	handler := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			hits = append(hits, name)
			w.Write([]byte(helloBody))
		}
	}
	a := httptest.NewServer(handler("a"))
	defer a.Close()
	b := httptest.NewServer(handler("b"))
	defer b.Close()

	st := storeFor(a.URL)
	c := NewClient(st, nil)
	_, err := c.Analyze(context.Background(), "こんにちは")
	require.NoError(t, err)

	next := st.Settings()
	next.APIBaseURL = b.URL
	st.Update(next)
	_, err = c.Analyze(context.Background(), "こんにちは")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, hits)
}

func TestClientHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status": "degraded", "components": {"tokenizer": true, "grammar_engine": false, "vocabulary_mapper": true}, "analysis_service": false}`))
	}))
	defer srv.Close()

	h, err := NewClient(storeFor(srv.URL), nil).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "degraded", h.Status)
	assert.True(t, h.Components.Tokenizer)
	assert.False(t, h.Components.GrammarEngine)
	assert.False(t, h.AnalysisService)
}
