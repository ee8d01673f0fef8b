// Package offline implements the cache-first asset gateway. A Worker
// precaches a manifest of static assets into a versioned cache bucket,
// evicts older generations on activation, and then serves GET requests
// from the bucket before touching the network. When the network is
// unreachable it falls back to the cached root document so the
// application shell still loads.
package offline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// State tracks the worker's position in its install/activate lifecycle.
type State int32

const (
	StateNew State = iota
	StateInstalling
	StateInstalled
	StateActivating
	StateActive
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateInstalling:
		return "installing"
	case StateInstalled:
		return "installed"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// maxCachedBody bounds what a single cache entry may hold. Larger
// responses are served live and never cached.
const maxCachedBody = 8 << 20

// cachedHeaders are the response headers worth replaying for a static
// asset. Everything else is dropped at store time.
var cachedHeaders = []string{"Content-Type", "Cache-Control", "ETag", "Last-Modified"}

const unavailableHTML = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Swatchbook is offline</title></head>
<body><h1>Offline</h1><p>Swatchbook could not reach the network and this page has not been cached yet.</p></body>
</html>
`

// Worker is the offline gateway. Request handling is independent per
// request; the only shared mutable state is the atomically-read state
// word, so ServeHTTP is safe for concurrent use.
type Worker struct {
	cache    *CacheStore
	fetcher  Fetcher
	manifest *Manifest
	logger   *slog.Logger
	state    atomic.Int32
}

// NewWorker creates a worker in the new state. Install and Activate
// must run before the worker serves from cache.
func NewWorker(cache *CacheStore, fetcher Fetcher, manifest *Manifest, logger *slog.Logger) *Worker {
	return &Worker{
		cache:    cache,
		fetcher:  fetcher,
		manifest: manifest,
		logger:   logger,
	}
}

// State returns the worker's current lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Bucket returns the cache bucket name for the current generation.
func (w *Worker) Bucket() string {
	return w.manifest.BucketName()
}

// Install precaches every manifest path into the current generation's
// bucket. Any failed precache fetch fails the install and returns the
// worker to the new state so a later attempt can retry.
func (w *Worker) Install(ctx context.Context) error {
	if !w.state.CompareAndSwap(int32(StateNew), int32(StateInstalling)) {
		return fmt.Errorf("install from state %s", w.State())
	}

	if err := w.install(ctx); err != nil {
		w.state.Store(int32(StateNew))
		return err
	}

	w.state.Store(int32(StateInstalled))

	if w.logger != nil {
		w.logger.Info("Offline worker installed",
			"bucket", w.Bucket(),
			"assets", len(w.manifest.Paths()),
		)
	}
	return nil
}

func (w *Worker) install(ctx context.Context) error {
	if err := w.cache.EnsureBucket(w.Bucket()); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}

	for _, path := range w.manifest.Paths() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return fmt.Errorf("precache %s: %w", path, err)
		}

		resp, err := w.fetcher.Fetch(req)
		if err != nil {
			return fmt.Errorf("precache %s: %w", path, err)
		}

		body, fits, err := bufferBody(resp)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("precache %s: %w", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("precache %s: unexpected status %d", path, resp.StatusCode)
		}
		if !fits {
			return fmt.Errorf("precache %s: response exceeds cache entry limit", path)
		}

		if err := w.cache.Put(w.Bucket(), path, newCachedResponse(resp, body)); err != nil {
			return fmt.Errorf("precache %s: %w", path, err)
		}
	}

	return nil
}

// Activate deletes every cache bucket except the current generation's.
// Once active the worker serves from cache; no reload is required
// because mounting the handler is what gives it control.
func (w *Worker) Activate(ctx context.Context) error {
	if !w.state.CompareAndSwap(int32(StateInstalled), int32(StateActivating)) {
		return fmt.Errorf("activate from state %s", w.State())
	}

	names, err := w.cache.Buckets()
	if err != nil {
		w.state.Store(int32(StateInstalled))
		return err
	}

	for _, name := range names {
		if name == w.Bucket() {
			continue
		}
		if err := ctx.Err(); err != nil {
			w.state.Store(int32(StateInstalled))
			return err
		}

		removed, err := w.cache.DeleteBucket(name)
		if err != nil {
			w.state.Store(int32(StateInstalled))
			return fmt.Errorf("evict bucket %s: %w", name, err)
		}

		if w.logger != nil {
			w.logger.Info("Evicted stale cache bucket", "bucket", name, "entries", removed)
		}
	}

	w.state.Store(int32(StateActive))

	if w.logger != nil {
		w.logger.Info("Offline worker active", "bucket", w.Bucket())
	}
	return nil
}

// ServeHTTP intercepts asset requests. GETs are answered cache-first
// with a live fetch on miss; anything else proxies straight through and
// is never cached.
func (w *Worker) ServeHTTP(wr http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || w.State() != StateActive {
		w.passthrough(wr, r)
		return
	}

	if res, ok, err := w.cache.Match(w.Bucket(), r.URL.String()); err == nil && ok {
		w.writeCached(wr, res)
		return
	} else if err != nil && w.logger != nil {
		w.logger.Warn("Cache lookup failed", "path", r.URL.Path, "error", err)
	}

	resp, err := w.fetcher.Fetch(r)
	if err != nil {
		w.serveFallback(wr, r, err)
		return
	}
	defer resp.Body.Close()

	body, fits, err := bufferBody(resp)
	if err != nil {
		// The connection died mid-body; nothing has been written to
		// the client yet so the offline fallback still applies.
		w.serveFallback(wr, r, err)
		return
	}

	// Only plain 200s from our own origin go into the bucket.
	if fits && resp.StatusCode == http.StatusOK && sameOrigin(r) {
		if err := w.cache.Put(w.Bucket(), r.URL.String(), newCachedResponse(resp, body)); err != nil && w.logger != nil {
			w.logger.Warn("Failed to cache response", "path", r.URL.Path, "error", err)
		}
	}

	copyHeader(wr.Header(), resp.Header)
	wr.WriteHeader(resp.StatusCode)
	wr.Write(body)
	if !fits {
		// Stream the remainder past the buffered prefix.
		io.Copy(wr, resp.Body)
	}
}

// passthrough proxies a request without consulting or filling the cache.
func (w *Worker) passthrough(wr http.ResponseWriter, r *http.Request) {
	resp, err := w.fetcher.Fetch(r)
	if err != nil {
		if w.logger != nil {
			w.logger.Warn("Upstream unreachable", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		http.Error(wr, "upstream unreachable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	copyHeader(wr.Header(), resp.Header)
	wr.WriteHeader(resp.StatusCode)
	io.Copy(wr, resp.Body)
}

// serveFallback answers a GET whose live fetch failed. The cached root
// document stands in when present so the application shell loads
// offline; otherwise a minimal unavailable page is synthesized.
func (w *Worker) serveFallback(wr http.ResponseWriter, r *http.Request, cause error) {
	if w.logger != nil {
		w.logger.Debug("Serving offline fallback", "path", r.URL.Path, "cause", cause)
	}

	if res, ok, err := w.cache.Match(w.Bucket(), w.manifest.Root); err == nil && ok {
		w.writeCached(wr, res)
		return
	}

	wr.Header().Set("Content-Type", "text/html; charset=utf-8")
	wr.Header().Set("Retry-After", "30")
	wr.WriteHeader(http.StatusServiceUnavailable)
	io.WriteString(wr, unavailableHTML)
}

func (w *Worker) writeCached(wr http.ResponseWriter, res *CachedResponse) {
	for name, value := range res.Header {
		wr.Header().Set(name, value)
	}
	wr.WriteHeader(res.Status)
	wr.Write(res.Body)
}

// bufferBody reads a response body up to the cache entry limit. When
// fits is false the body was larger; the buffered prefix is returned
// and the remainder is still unread on resp.Body.
func bufferBody(resp *http.Response) (body []byte, fits bool, err error) {
	body, err = io.ReadAll(io.LimitReader(resp.Body, maxCachedBody+1))
	if err != nil {
		return nil, false, fmt.Errorf("read response body: %w", err)
	}
	if len(body) > maxCachedBody {
		return body, false, nil
	}
	return body, true, nil
}

func newCachedResponse(resp *http.Response, body []byte) *CachedResponse {
	header := make(map[string]string)
	for _, name := range cachedHeaders {
		if v := resp.Header.Get(name); v != "" {
			header[name] = v
		}
	}

	return &CachedResponse{
		Status:   resp.StatusCode,
		Header:   header,
		Body:     body,
		StoredAt: time.Now(),
	}
}

// sameOrigin reports whether the request targets the application's own
// origin. Requests arrive in origin-form (path only) unless a client
// addresses another host outright.
func sameOrigin(r *http.Request) bool {
	return r.URL.Host == "" || strings.EqualFold(r.URL.Host, r.Host)
}

// copyHeader copies live response headers through to the client.
func copyHeader(dst, src http.Header) {
	for name, values := range src {
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}
