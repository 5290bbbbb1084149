package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"fontd/internal/backoff"
	"fontd/internal/common/httpclient"
)

// maxCatalogBytes bounds the catalog response body.
const maxCatalogBytes = 64 << 20

// Source fetches the full remote catalog.
type Source interface {
	Fetch(ctx context.Context) ([]Entry, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Entry, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]Entry, error) { return f(ctx) }

// HTTPSource reads the catalog JSON endpoint. Transport failures are retried with
// the backoff policy; 401/403 are returned on the first attempt.
type HTTPSource struct {
	URL    string
	APIKey string
	Client *http.Client
	Retry  backoff.Policy
	Logger zerolog.Logger
}

// NewHTTPSource returns a source with the shared HTTP client and default retry policy.
func NewHTTPSource(endpoint, apiKey string, logger zerolog.Logger) *HTTPSource {
	return &HTTPSource{
		URL:    endpoint,
		APIKey: apiKey,
		Client: httpclient.New(),
		Retry:  backoff.Policy{Base: backoff.DefaultBase, Jitter: backoff.DefaultJitter, MaxAttempts: backoff.DefaultMaxAttempts},
		Logger: logger,
	}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) ([]Entry, error) {
	var out []Entry
	err := backoff.Retry(ctx, s.Retry, func(ctx context.Context, attempt int) error {
		entries, err := s.fetchOnce(ctx)
		if err != nil {
			if httpclient.IsAuth(err) {
				return backoff.Permanent(err)
			}
			s.Logger.Debug().Int("attempt", attempt).Err(err).Msg("catalog fetch attempt failed")
			return err
		}
		out = entries
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return out, nil
}

func (s *HTTPSource) requestURL() (string, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", fmt.Errorf("parse catalog url: %w", err)
	}
	if s.APIKey != "" {
		q := u.Query()
		q.Set("key", s.APIKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (s *HTTPSource) fetchOnce(ctx context.Context) ([]Entry, error) {
	target, err := s.requestURL()
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := httpclient.CheckStatus(resp); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, err
	}
	var body response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCatalogBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return body.Items, nil
}
