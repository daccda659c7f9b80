package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goodtune/kdict/internal/config"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public dictionary API
const DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// Fetcher is anything that can resolve a word to a dictionary result
type Fetcher interface {
	FetchEntry(ctx context.Context, word string) (*Result, error)
}

// Provider fetches entries from the dictionary HTTP API
type Provider struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
	logger     zerolog.Logger
}

// NewProvider creates a Provider from configuration
func NewProvider(cfg config.DictionaryConfig, logger zerolog.Logger) *Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.ParseDuration(cfg.Timeout, 10*time.Second)},
		retryDelay: 500 * time.Millisecond,
		logger:     logger.With().Str("component", "dictionary").Logger(),
	}
}

// FetchEntry fetches the dictionary entry for word.
// Returns ErrNotFound on HTTP 404 or an empty result array, and a
// *TransportError for everything else that is not a decodable 200.
func (p *Provider) FetchEntry(ctx context.Context, word string) (*Result, error) {
	reqURL := p.baseURL + "/" + url.PathEscape(word)

	p.logger.Debug().Str("word", word).Msg("Dictionary request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.doWithRetry(ctx, req, word)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	var entries []apiEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode json: %w", err)}
	}

	if len(entries) == 0 {
		return nil, ErrNotFound
	}

	result := mapAPIResponse(entries)

	p.logger.Debug().
		Str("word", word).
		Int("meanings", len(result.Meanings)).
		Msg("Dictionary response")

	return result, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors
func (p *Provider) doWithRetry(ctx context.Context, req *http.Request, word string) (*http.Response, error) {
	resp, err := p.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	p.logger.Warn().Str("word", word).Str("reason", reason).Msg("Retrying dictionary request")

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(p.retryDelay):
	}

	return p.httpClient.Do(req)
}
