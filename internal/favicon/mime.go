package favicon

import (
	"net/url"
	"path"
	"strings"
)

// InferType returns explicit when set, otherwise guesses the image type from
// the extension of href's path.
func InferType(explicit, href string) string {
	if explicit != "" {
		return explicit
	}

	p := href
	if u, err := url.Parse(href); err == nil {
		p = u.Path
	}
	ext := strings.TrimPrefix(path.Ext(p), ".")

	switch strings.ToLower(ext) {
	case "", "ico":
		return DefaultType
	case "jpg":
		// https://stackoverflow.com/a/37266399
		return "image/jpeg"
	}
	return "image/" + ext
}
