// Package analysis talks to the sentence analysis service and caches its
// answers for the session.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/f3rmion/subkana/internal/config"
	"github.com/f3rmion/subkana/internal/logging"
	"github.com/f3rmion/subkana/internal/subkana"
	"go.uber.org/zap"
)

// maxBodySize bounds how much of a response is read.
const maxBodySize = 4 << 20

// Settings supplies the current configuration snapshot.
type Settings interface {
	Settings() config.Settings
}

// Client is an HTTP client for the analysis service. The base URL and
// timeout are re-read from the settings on every call.
type Client struct {
	settings   Settings
	httpClient *http.Client
	log        *zap.Logger
}

// request is the analyze request body.
type request struct {
	Sentence string `json:"sentence"`
}

// response mirrors the analyze response; pointers detect missing fields.
type response struct {
	Sentence        *string                   `json:"sentence"`
	Tokens          *[]subkana.Token          `json:"tokens"`
	GrammarPatterns *[]subkana.GrammarPattern `json:"grammar_patterns"`
}

// errorResponse is the service's error payload. Detail is usually a
// string but validation failures carry a list.
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// Health is the service health report.
type Health struct {
	Status     string `json:"status"` // "ok" or "degraded"
	Components struct {
		Tokenizer        bool `json:"tokenizer"`
		GrammarEngine    bool `json:"grammar_engine"`
		VocabularyMapper bool `json:"vocabulary_mapper"`
	} `json:"components"`
	AnalysisService bool `json:"analysis_service"`
}

// NewClient creates a client reading its endpoint from settings.
func NewClient(settings Settings, logger *zap.Logger) *Client {
	return &Client{
		settings:   settings,
		httpClient: &http.Client{},
		log:        logging.OrNop(logger).Named("analysis"),
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) endpoint(path string) (string, config.Settings) {
	s := c.settings.Settings()
	return strings.TrimRight(s.APIBaseURL, "/") + path, s
}

// Analyze sends a sentence to the service and decodes the breakdown.
func (c *Client) Analyze(ctx context.Context, sentence string) (*subkana.AnalysisResult, error) {
	url, s := c.endpoint("/analyze")

	body, err := json.Marshal(request{Sentence: sentence})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.log.Debug("analyze request", zap.String("url", url), zap.String("sentence", sentence))

	respBody, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var r response
	if err := json.Unmarshal(respBody, &r); err != nil {
		return nil, &ProtocolError{URL: url, Err: err}
	}
	switch {
	case r.Sentence == nil:
		return nil, &ProtocolError{URL: url, Err: errors.New("missing sentence")}
	case r.Tokens == nil:
		return nil, &ProtocolError{URL: url, Err: errors.New("missing tokens")}
	case r.GrammarPatterns == nil:
		return nil, &ProtocolError{URL: url, Err: errors.New("missing grammar_patterns")}
	}

	result := &subkana.AnalysisResult{
		Sentence:        *r.Sentence,
		Tokens:          *r.Tokens,
		GrammarPatterns: *r.GrammarPatterns,
	}
	c.log.Debug("analyze response",
		zap.String("sentence", result.Sentence),
		zap.Int("tokens", len(result.Tokens)),
		zap.Int("patterns", len(result.GrammarPatterns)),
	)
	return result, nil
}

// Health queries the service health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	url, s := c.endpoint("/health")
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}

	respBody, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var h Health
	if err := json.Unmarshal(respBody, &h); err != nil {
		return nil, &ProtocolError{URL: url, Err: err}
	}
	return &h, nil
}

// do executes the request and returns the body of a 2xx response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	url := req.URL.String()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("url", url), zap.Error(err))
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &NetworkError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("unexpected status", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil, &NetworkError{URL: url, StatusCode: resp.StatusCode, Detail: detail(respBody)}
	}
	return respBody, nil
}

// detail extracts a readable message from an error payload.
func detail(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err != nil || len(e.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}
	return string(e.Detail)
}
