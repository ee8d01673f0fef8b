package offline

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/swatchbookapp/swatchbook-server/internal/ratelimit"
)

const (
	fetchTimeout = 30 * time.Second

	// Outbound pacing per upstream host. Static asset fetches are
	// bursty at install time and rare afterwards.
	fetchRPS   = 20.0
	fetchBurst = 40
)

// Fetcher is the live network primitive the worker falls back to on a
// cache miss. Connectivity errors come back unwrapped so the worker can
// tell "upstream said no" from "no network at all".
type Fetcher interface {
	Fetch(r *http.Request) (*http.Response, error)
}

// OriginFetcher fetches over HTTP, resolving path-only request URLs
// against a configured upstream base. Outbound requests are rate
// limited per host.
type OriginFetcher struct {
	base    *url.URL
	client  *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// NewOriginFetcher creates a fetcher rooted at baseURL. The base must
// be absolute; it supplies the scheme and host for path-only requests.
func NewOriginFetcher(baseURL string, logger *slog.Logger) (*OriginFetcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("upstream base URL %q must be absolute", baseURL)
	}

	return &OriginFetcher{
		base: base,
		client: &http.Client{
			Timeout: fetchTimeout,
		},
		limiter: ratelimit.New(fetchRPS, fetchBurst),
		logger:  logger,
	}, nil
}

// Fetch executes r against the live network. The inbound request is not
// modified; a fresh outbound request is built from it.
func (f *OriginFetcher) Fetch(r *http.Request) (*http.Response, error) {
	target := f.resolve(r.URL)

	if err := f.limiter.Wait(r.Context(), target.Host); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = r.Header.Clone()

	if f.logger != nil {
		f.logger.Debug("fetching upstream", "method", r.Method, "url", target.String())
	}

	return f.client.Do(req)
}

// resolve fills in scheme and host from the base when the request URL
// carries only a path. Absolute URLs pass through untouched.
func (f *OriginFetcher) resolve(u *url.URL) *url.URL {
	if u.Host != "" {
		return u
	}

	resolved := *u
	resolved.Scheme = f.base.Scheme
	resolved.Host = f.base.Host
	return &resolved
}
