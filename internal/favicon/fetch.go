package favicon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrFetchFailed is returned once every attempt for a URL has failed.
var ErrFetchFailed = errors.New("fetch failed")

// FetcherConfig controls outbound requests.
type FetcherConfig struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRedirects int
	Attempts     int
	MaxBodyBytes int64
	// Transport overrides http.DefaultTransport when set.
	Transport http.RoundTripper
}

// Fetcher retrieves remote documents. The first attempt identifies as
// UserAgent, later attempts reuse the agent of the inbound request since some
// servers turn away unknown bots but accept browsers.
type Fetcher struct {
	client    *http.Client
	userAgent string
	attempts  int
	maxBody   int64
	logger    *slog.Logger
}

func NewFetcher(cfg FetcherConfig, logger *slog.Logger) *Fetcher {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	return &Fetcher{
		client:    newHttpClient(cfg.Timeout, cfg.MaxRedirects, cfg.Transport),
		userAgent: cfg.UserAgent,
		attempts:  attempts,
		maxBody:   cfg.MaxBodyBytes,
		logger:    logger,
	}
}

// Fetch returns the body of url. callerUA is used for every attempt after the
// first; when empty the default agent is kept.
func (f *Fetcher) Fetch(ctx context.Context, url, callerUA string) ([]byte, error) {
	var lastErr error
	ua := f.userAgent
	for attempt := 1; attempt <= f.attempts; attempt++ {
		body, err := f.get(ctx, url, ua)
		if err == nil {
			return body, nil
		}
		lastErr = err
		f.logger.Debug("fetch attempt failed",
			"url", url,
			"attempt", attempt,
			"user_agent", ua,
			"error", err,
		)
		if ctx.Err() != nil {
			break
		}
		if callerUA != "" {
			ua = callerUA
		}
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, url, lastErr)
}

func (f *Fetcher) get(ctx context.Context, url, ua string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// non 200s
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("invalid http status: %s (%d)", resp.Status, resp.StatusCode)
	}

	var r io.Reader = resp.Body
	if f.maxBody > 0 {
		r = io.LimitReader(resp.Body, f.maxBody+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading body: %w", err)
	}
	if f.maxBody > 0 && int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("body exceeds %d bytes", f.maxBody)
	}
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}

	return body, nil
}
