package server

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/aizatto/favicons/internal/present"
)

// options are the presentation and probing choices read from a query.
type options struct {
	Format present.Format
	MaxAge int
	Secure bool
}

// parseOptions reads the output selector, cache lifetime and secure flag.
// A bare alias key (?json) takes precedence over output=.
func parseOptions(q url.Values, defaultMaxAge int) options {
	opts := options{MaxAge: defaultMaxAge}

	opts.Format, _ = present.ParseFormat(q.Get("output"))
	for _, alias := range present.Aliases {
		if q.Has(string(alias)) {
			opts.Format = alias
			break
		}
	}

	if q.Has("cache") {
		if n, err := strconv.Atoi(q.Get("cache")); err == nil && n >= 0 {
			opts.MaxAge = n
		}
	}

	if v := q.Get("ssl"); v != "" && v != "0" {
		opts.Secure = true
	}
	return opts
}

// splitQuery handles the query front door, /?example.com&json, where the
// first segment is the domain. It returns an empty domain when the first
// segment is a regular key=value pair.
func splitQuery(raw string) (string, url.Values) {
	head, rest, _ := strings.Cut(raw, "&")
	if strings.Contains(head, "=") {
		values, _ := url.ParseQuery(raw)
		return "", values
	}

	values, _ := url.ParseQuery(rest)

	domain, err := url.QueryUnescape(head)
	if err != nil {
		domain = head
	}
	return strings.TrimSpace(domain), values
}
