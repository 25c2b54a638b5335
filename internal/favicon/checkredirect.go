package favicon

import (
	"fmt"
	"net/http"
	"time"
)

// https://pkg.go.dev/net/http#Client
func newHttpClient(timeout time.Duration, maxRedirects int, transport http.RoundTripper) *http.Client {
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}
