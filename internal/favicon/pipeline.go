package favicon

import (
	"context"
	"errors"
	"log/slog"
)

// secureMarker is appended to the probe URL when the secure scheme is used.
const secureMarker = "?ssl=1"

// Getter fetches the body of a URL. *Fetcher implements it.
type Getter interface {
	Fetch(ctx context.Context, url, callerUA string) ([]byte, error)
}

// Pipeline resolves a domain to an icon: the conventional /favicon.ico path
// first, then icon links in the home page, then the default icon. It holds no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	getter    Getter
	extractor LinkExtractor
	fallback  []byte
	logger    *slog.Logger
}

func NewPipeline(getter Getter, extractor LinkExtractor, defaultIcon []byte, logger *slog.Logger) (*Pipeline, error) {
	if len(defaultIcon) == 0 {
		return nil, errors.New("pipeline: default icon is empty")
	}
	if extractor == nil {
		extractor = RegexExtractor{}
	}
	return &Pipeline{
		getter:    getter,
		extractor: extractor,
		fallback:  defaultIcon,
		logger:    logger,
	}, nil
}

// ProbeURL is the address of the conventional icon for domain.
func ProbeURL(req Request) string {
	u := req.Scheme() + "://" + StripProtocol(req.Domain) + "/favicon.ico"
	if req.Secure {
		u += secureMarker
	}
	return u
}

// Resolve always returns a Result with a populated Blob.
func (p *Pipeline) Resolve(ctx context.Context, req Request) Result {
	req.Domain = StripProtocol(req.Domain)

	if res, ok := p.probe(ctx, req); ok {
		return res
	}
	if res, ok := p.scan(ctx, req); ok {
		return res
	}

	p.logger.Debug("using default icon", "domain", req.Domain)
	return p.Default()
}

// Default is the result used when nothing else resolves.
func (p *Pipeline) Default() Result {
	return Result{
		Blob:   p.fallback,
		Rel:    DefaultRel,
		Type:   DefaultType,
		Source: SourceDefault,
	}
}

func (p *Pipeline) probe(ctx context.Context, req Request) (Result, bool) {
	href := ProbeURL(req)
	blob, err := p.getter.Fetch(ctx, href, req.UserAgent)
	if err != nil {
		p.logger.Debug("favicon probe failed", "domain", req.Domain, "error", err)
		return Result{}, false
	}
	return Result{
		Blob:   blob,
		Href:   &href,
		Rel:    DefaultRel,
		Type:   DefaultType,
		Source: SourceProbe,
	}, true
}

func (p *Pipeline) scan(ctx context.Context, req Request) (Result, bool) {
	scheme := req.Scheme()
	page, err := p.getter.Fetch(ctx, scheme+"://"+req.Domain, req.UserAgent)
	if err != nil {
		p.logger.Debug("home page fetch failed", "domain", req.Domain, "error", err)
		return Result{}, false
	}

	for _, link := range p.extractor.Extract(page) {
		href := ResolveHref(link.Href, scheme, req.Domain)
		blob, err := p.getter.Fetch(ctx, href, req.UserAgent)
		if err != nil {
			p.logger.Debug("icon link fetch failed",
				"domain", req.Domain,
				"tag", link.Tag,
				"href", href,
				"error", err,
			)
			if ctx.Err() != nil {
				return Result{}, false
			}
			continue
		}
		return Result{
			Blob:   blob,
			Href:   &href,
			Rel:    link.Rel,
			Type:   InferType(link.Type, href),
			Source: SourceHTML,
		}, true
	}
	return Result{}, false
}
