package tagger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HTTPTagger calls a morphological disambiguation service. The service
// receives {"text": "..."} and answers with one analysis per token:
//
//	{"tokens": [{"word": "...", "diac": "...", "pos": "...", "lex": "..."}]}
//
// The diacritized form is used as the token surface when present. An empty
// token list is a valid answer and yields no analyses.
type HTTPTagger struct {
	url        string
	httpClient *http.Client
	stats      *LatencyStats
	observe    func(time.Duration, error)
	log        *slog.Logger
}

// HTTPOption configures an HTTPTagger.
type HTTPOption func(*HTTPTagger)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(t *HTTPTagger) { t.httpClient.Timeout = d }
}

// WithStats records every request latency.
func WithStats(s *LatencyStats) HTTPOption {
	return func(t *HTTPTagger) { t.stats = s }
}

// WithObserver is called after every request attempt.
func WithObserver(fn func(time.Duration, error)) HTTPOption {
	return func(t *HTTPTagger) { t.observe = fn }
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(log *slog.Logger) HTTPOption {
	return func(t *HTTPTagger) { t.log = log }
}

func NewHTTPTagger(url string, opts ...HTTPOption) *HTTPTagger {
	t := &HTTPTagger{
		url:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        slog.Default(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

type disambigRequest struct {
	Text string `json:"text"`
}

type disambigResponse struct {
	Tokens []struct {
		Word string `json:"word"`
		Diac string `json:"diac"`
		POS  string `json:"pos"`
		Lex  string `json:"lex"`
	} `json:"tokens"`
	Error string `json:"error,omitempty"`
}

// Tag calls the service, retrying transient failures with backoff.
func (t *HTTPTagger) Tag(ctx context.Context, text string) ([]Analysis, error) {
	var (
		out     []Analysis
		lastErr error
	)
	for attempt := range MaxRetries {
		out, lastErr = t.tagOnce(ctx, text)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		t.log.Warn("retryable tagger error", "attempt", attempt, "error", lastErr)
		if attempt == MaxRetries-1 {
			break
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, lastErr
}

func (t *HTTPTagger) tagOnce(ctx context.Context, text string) (_ []Analysis, err error) {
	start := time.Now()
	defer func() {
		d := time.Since(start)
		if t.stats != nil {
			if err != nil {
				t.stats.RecordFailure(d.Milliseconds())
			} else {
				t.stats.Record(d.Milliseconds())
			}
		}
		if t.observe != nil {
			t.observe(d, err)
		}
	}()

	body, err := json.Marshal(disambigRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tagger service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tagger service status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var dr disambigResponse
	if err := json.Unmarshal(respBody, &dr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if dr.Error != "" {
		return nil, fmt.Errorf("tagger service error: %s", dr.Error)
	}
	out := make([]Analysis, 0, len(dr.Tokens))
	for _, tok := range dr.Tokens {
		form := tok.Diac
		if form == "" {
			form = tok.Word
		}
		out = append(out, Analysis{Form: form, POS: tok.POS, Lemma: tok.Lex})
	}
	return out, nil
}

// Close releases idle connections.
func (t *HTTPTagger) Close() {
	t.httpClient.CloseIdleConnections()
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
