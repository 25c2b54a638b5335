package favicon

import (
	"regexp"
	"strings"
)

var protocolPrefix = regexp.MustCompile(`(?i)^(?:f|ht)tps?://`)

// StripProtocol removes a leading http, https, ftp or ftps scheme from domain.
func StripProtocol(domain string) string {
	if !strings.Contains(domain, "://") {
		return domain
	}
	return protocolPrefix.ReplaceAllString(domain, "")
}

// ResolveHref makes href absolute against scheme://domain.
func ResolveHref(href, scheme, domain string) string {
	switch {
	// protocol relative
	case strings.HasPrefix(href, "//"):
		return scheme + ":" + href
	// root relative
	case strings.HasPrefix(href, "/"):
		return scheme + "://" + domain + href
	// relative without leading slash
	case !strings.Contains(href, "://"):
		return scheme + "://" + domain + "/" + href
	}
	return href
}
