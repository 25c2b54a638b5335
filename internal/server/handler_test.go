package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aizatto/favicons/internal/favicon"
)

const homeURL = "https://example.org/favicons/"

var defaultBlob = []byte{0, 0, 1, 0, 1, 0}

type stubResolver struct {
	mu     sync.Mutex
	result favicon.Result
	seen   []favicon.Request
}

func (s *stubResolver) Resolve(_ context.Context, req favicon.Request) favicon.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, req)
	return s.result
}

func (s *stubResolver) last() favicon.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[len(s.seen)-1]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultResult() favicon.Result {
	return favicon.Result{
		Blob:   defaultBlob,
		Rel:    favicon.DefaultRel,
		Type:   favicon.DefaultType,
		Source: favicon.SourceDefault,
	}
}

func htmlResult() favicon.Result {
	href := "https://example.com/x.png"
	return favicon.Result{
		Blob:   []byte("png"),
		Href:   &href,
		Rel:    "icon",
		Type:   "image/png",
		Source: favicon.SourceHTML,
	}
}

func newTestRouter(r Resolver, debug bool) (http.Handler, *Metrics) {
	m := NewMetrics()
	h := NewIconHandler(r, HandlerConfig{
		HomeURL:        homeURL,
		CacheMaxAge:    2678400,
		Debug:          debug,
		ResolveTimeout: time.Second,
	}, m, discardLogger())
	return NewRouter(h, NewRequestLog(discardLogger(), m)), m
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("User-Agent", "Browser/1.0")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHomeRedirects(t *testing.T) {
	router, _ := newTestRouter(&stubResolver{result: defaultResult()}, false)

	rec := get(t, router, "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, homeURL, rec.Header().Get("Location"))

	rec = get(t, router, "/?output=json")
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestQueryFrontDoor(t *testing.T) {
	r := &stubResolver{result: defaultResult()}
	router, _ := newTestRouter(r, false)

	rec := get(t, router, "/?example.com&json")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"href":null,"rel":"icon","type":"image/x-icon"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, favicon.Request{Domain: "example.com", UserAgent: "Browser/1.0"}, r.last())
}

func TestPathFrontDoor(t *testing.T) {
	r := &stubResolver{result: htmlResult()}
	router, _ := newTestRouter(r, false)

	rec := get(t, router, "/example.com?ssl=1&cache=0")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=0", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("ETag"))
	assert.Equal(t, favicon.Request{Domain: "example.com", Secure: true, UserAgent: "Browser/1.0"}, r.last())
}

func TestPathDomainForms(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   favicon.Request
	}{
		{"plain", "/example.com?json", favicon.Request{Domain: "example.com"}},
		{"https prefix", "/https://example.com?json", favicon.Request{Domain: "example.com"}},
		{"escaped http prefix", "/http:%2F%2Fexample.com?json", favicon.Request{Domain: "example.com"}},
		{"ftps prefix", "/ftps://example.com", favicon.Request{Domain: "example.com"}},
		{"trailing slash", "/example.com/?json", favicon.Request{Domain: "example.com"}},
		{"prefix and trailing slash", "/https://example.com/?ssl=1", favicon.Request{Domain: "example.com", Secure: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &stubResolver{result: defaultResult()}
			router, _ := newTestRouter(r, false)

			rec := get(t, router, tt.target)

			assert.Equal(t, http.StatusOK, rec.Code)
			require.Len(t, r.seen, 1)
			tt.want.UserAgent = "Browser/1.0"
			assert.Equal(t, tt.want, r.last())
		})
	}
}

func TestProtocolPrefixedPathJSON(t *testing.T) {
	router, _ := newTestRouter(&stubResolver{result: defaultResult()}, false)

	rec := get(t, router, "/https://example.com?json")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"href":null,"rel":"icon","type":"image/x-icon"}`, rec.Body.String())
}

func TestFormats(t *testing.T) {
	tests := []struct {
		name        string
		result      favicon.Result
		target      string
		wantBody    string
		contentType string
	}{
		{"raw", htmlResult(), "/example.com?raw", "png", "text/plain"},
		{"base64", htmlResult(), "/example.com?base64", "data:image/png;base64,cG5n", "text/plain"},
		{"html", htmlResult(), "/example.com?html", `<link href="https://example.com/x.png" rel="icon" type="image/png">`, "text/html"},
		{"xhtml", htmlResult(), "/example.com?output=xhtml", `<link href="https://example.com/x.png" rel="icon" type="image/png" />`, "text/html"},
		{"html failure", defaultResult(), "/example.com?html", "<!-- error loading favicon from `http://example.com` -->", "text/html"},
		{"html failure secure", defaultResult(), "/example.com?html&ssl=1", "<!-- error loading favicon from `https://example.com` -->", "text/html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(&stubResolver{result: tt.result}, false)
			rec := get(t, router, tt.target)

			assert.Equal(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, "public, max-age=2678400, immutable", rec.Header().Get("Cache-Control"))
		})
	}
}

func TestDebugHeaders(t *testing.T) {
	router, _ := newTestRouter(&stubResolver{result: htmlResult()}, true)

	rec := get(t, router, "/example.com")

	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Empty(t, rec.Header().Get("ETag"))
}

func TestRequestIDAndMetrics(t *testing.T) {
	router, m := newTestRouter(&stubResolver{result: defaultResult()}, false)

	rec := get(t, router, "/example.com")
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/example.com", nil)
	req.Header.Set(requestIDHeader, "abc")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(requestIDHeader))

	get(t, router, "/")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.resolutions.WithLabelValues("default")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues("200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("302")))

	metrics := httptest.NewRecorder()
	m.Handler().ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `favicon_resolutions_total{source="default"} 2`)
}

func TestEndToEndDefault(t *testing.T) {
	// a site with no favicon and no icon links
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			_, _ = w.Write([]byte("<html><body>plain</body></html>"))
			return
		}
		http.NotFound(w, r)
	}))
	defer site.Close()
	domain := strings.TrimPrefix(site.URL, "http://")

	fetcher := favicon.NewFetcher(favicon.FetcherConfig{
		UserAgent:    "favicons-test/1.0",
		Timeout:      5 * time.Second,
		MaxRedirects: 2,
		Attempts:     2,
	}, discardLogger())
	icon, err := favicon.LoadDefaultIcon("")
	require.NoError(t, err)
	pipeline, err := favicon.NewPipeline(fetcher, favicon.RegexExtractor{}, icon, discardLogger())
	require.NoError(t, err)

	router, _ := newTestRouter(pipeline, false)

	rec := get(t, router, "/?"+domain+"&json")
	assert.Equal(t, `{"href":null,"rel":"icon","type":"image/x-icon"}`, rec.Body.String())

	rec = get(t, router, "/"+domain)
	assert.Equal(t, icon, rec.Body.Bytes())
	assert.Equal(t, "image/x-icon", rec.Header().Get("Content-Type"))
}
