package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/aizatto/favicons/internal/favicon"
	"github.com/aizatto/favicons/internal/present"
)

// Resolver turns a request into an icon. *favicon.Pipeline implements it.
type Resolver interface {
	Resolve(ctx context.Context, req favicon.Request) favicon.Result
}

// HandlerConfig holds the presentation settings shared by every request.
type HandlerConfig struct {
	HomeURL        string
	CacheMaxAge    int
	Debug          bool
	ResolveTimeout time.Duration
}

// IconHandler serves resolved icons.
type IconHandler struct {
	resolver Resolver
	cfg      HandlerConfig
	metrics  *Metrics
	logger   *slog.Logger
}

func NewIconHandler(resolver Resolver, cfg HandlerConfig, metrics *Metrics, logger *slog.Logger) *IconHandler {
	return &IconHandler{
		resolver: resolver,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
	}
}

// Home serves /?example.com&json, or redirects when no domain is given.
func (h *IconHandler) Home(w http.ResponseWriter, r *http.Request) {
	domain, q := splitQuery(r.URL.RawQuery)
	if domain == "" {
		http.Redirect(w, r, h.cfg.HomeURL, http.StatusFound)
		return
	}
	h.serve(w, r, domain, q)
}

// Icon serves /*domain. The whole path is the domain, so /https://example.com
// and /example.com/ both work; an empty path falls through to Home.
func (h *IconHandler) Icon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	domain := strings.TrimPrefix(ps.ByName("domain"), "/")
	if domain == "" {
		h.Home(w, r)
		return
	}
	h.serve(w, r, domain, r.URL.Query())
}

func (h *IconHandler) serve(w http.ResponseWriter, r *http.Request, domain string, q url.Values) {
	opts := parseOptions(q, h.cfg.CacheMaxAge)
	req := favicon.Request{
		Domain:    strings.TrimRight(favicon.StripProtocol(domain), "/"),
		Secure:    opts.Secure,
		UserAgent: r.UserAgent(),
	}

	ctx := r.Context()
	if h.cfg.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.ResolveTimeout)
		defer cancel()
	}

	res := h.resolver.Resolve(ctx, req)
	h.metrics.observeResolution(res.Source)

	attrs := []any{"domain", req.Domain, "source", res.Source, "rel", res.Rel, "type", res.Type}
	if res.Href != nil {
		attrs = append(attrs, "href", *res.Href)
	}
	h.logger.Debug("favicon resolved", attrs...)

	err := present.Render(w, res, present.Options{
		Format: opts.Format,
		MaxAge: opts.MaxAge,
		Debug:  h.cfg.Debug,
		Origin: req.Scheme() + "://" + req.Domain,
	})
	if err != nil {
		h.logger.Error("failed to write favicon response", "domain", req.Domain, "error", err)
	}
}
