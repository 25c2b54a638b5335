// Package present renders a resolved icon in the representation a client
// asked for and sets the matching response headers.
package present

import (
	"bytes"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"html"
	"net/http"
	"strconv"
	"time"

	"github.com/aizatto/favicons/internal/favicon"
)

// Format selects the representation of a Result.
type Format string

const (
	FormatImage  Format = ""
	FormatBase64 Format = "base64"
	FormatHTML   Format = "html"
	FormatJSON   Format = "json"
	FormatRaw    Format = "raw"
	FormatXHTML  Format = "xhtml"
)

// Aliases are the formats that may be requested by a bare query key, in
// lookup order.
var Aliases = []Format{FormatBase64, FormatHTML, FormatJSON, FormatRaw, FormatXHTML}

// DefaultMaxAge is one month in seconds.
const DefaultMaxAge = 2678400

const etagPrefix = "fav"

// ParseFormat maps a selector to a Format. Unknown selectors yield the image
// format and false.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(s); f {
	case FormatBase64, FormatHTML, FormatJSON, FormatRaw, FormatXHTML:
		return f, true
	}
	return FormatImage, false
}

// Options carry the per-request presentation settings.
type Options struct {
	Format Format
	// MaxAge is the advised cache lifetime in seconds.
	MaxAge int
	Debug  bool
	// Origin is the scheme://domain that was resolved, quoted when no icon
	// href could be established.
	Origin string
	Now    func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// ContentType is the media type of the rendered body.
func ContentType(f Format, res favicon.Result) string {
	switch f {
	case FormatRaw, FormatBase64:
		return "text/plain"
	case FormatJSON:
		return "application/json"
	case FormatHTML, FormatXHTML:
		return "text/html"
	}
	return res.Type
}

// ETag changes on every call, even for identical bytes.
func ETag(blob []byte, now time.Time) string {
	sum := md5.Sum(append(append([]byte(nil), blob...), "."+strconv.FormatInt(now.Unix(), 10)...))
	return `"` + etagPrefix + hex.EncodeToString(sum[:])[:12] + `"`
}

// SetHeaders writes cache, type and ETag headers for res.
func SetHeaders(h http.Header, res favicon.Result, opts Options) {
	if opts.Debug {
		h.Set("Content-Type", "text/plain")
		h.Set("Cache-Control", "no-cache")
		return
	}

	if opts.MaxAge > 0 {
		h.Set("Cache-Control", "public, max-age="+strconv.Itoa(opts.MaxAge)+", immutable")
	} else {
		h.Set("Cache-Control", "public, max-age=0")
	}
	h.Set("Content-Type", ContentType(opts.Format, res))
	h.Set("ETag", ETag(res.Blob, opts.now()))
}

type metadata struct {
	Href *string `json:"href"`
	Rel  string  `json:"rel"`
	Type string  `json:"type"`
}

// Body renders res in opts.Format.
func Body(res favicon.Result, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatBase64:
		return []byte("data:" + res.Type + ";base64," + base64.StdEncoding.EncodeToString(res.Blob)), nil
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(metadata{Href: res.Href, Rel: res.Rel, Type: res.Type}); err != nil {
			return nil, err
		}
		return bytes.TrimRight(buf.Bytes(), "\n"), nil
	case FormatHTML:
		return linkTag(res, opts.Origin, ""), nil
	case FormatXHTML:
		return linkTag(res, opts.Origin, " /"), nil
	}
	return res.Blob, nil
}

func linkTag(res favicon.Result, origin, closing string) []byte {
	if res.Href == nil {
		return []byte("<!-- error loading favicon from `" + origin + "` -->")
	}
	// attributes in key order
	return []byte(`<link href="` + html.EscapeString(*res.Href) +
		`" rel="` + html.EscapeString(res.Rel) +
		`" type="` + html.EscapeString(res.Type) + `"` + closing + ">")
}

// Render writes headers and body for res.
func Render(w http.ResponseWriter, res favicon.Result, opts Options) error {
	body, err := Body(res, opts)
	if err != nil {
		return err
	}
	SetHeaders(w.Header(), res, opts)
	_, err = w.Write(body)
	return err
}
