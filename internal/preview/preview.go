// Package preview turns stored preview URLs into their embeddable form.
// Known sandbox providers publish distinct embed paths; everything else
// (GitHub Pages, Vercel previews, the backend's own artifact host) passes
// through unchanged.
package preview

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// EmbedURL rewrites a raw preview URL into the provider's embed form:
//
//	codesandbox.io/s/abc -> codesandbox.io/embed/s/abc (+ viewer params)
//	stackblitz.com/edit/xyz -> stackblitz.com/embed/edit/xyz
//	codepen.io/user/pen/id -> codepen.io/embed/id
//
// Unknown hosts are returned as-is. Invalid URLs are returned unchanged
// with an error.
func EmbedURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return raw, fmt.Errorf("parsing preview URL: %w", err)
	}

	host := u.Hostname()
	switch {
	case strings.Contains(host, "codesandbox.io"):
		if !strings.HasPrefix(u.Path, "/embed/") {
			u.Path = "/embed" + u.Path
		}
		q := u.Query()
		q.Set("fontsize", "14")
		q.Set("hidenavigation", "1")
		q.Set("theme", "dark")
		u.RawQuery = q.Encode()
		return u.String(), nil

	case strings.Contains(host, "stackblitz.com"):
		if !strings.HasPrefix(u.Path, "/embed/") {
			u.Path = "/embed" + u.Path
		}
		return u.String(), nil

	case strings.Contains(host, "codepen.io") && !strings.Contains(u.Path, "/embed/"):
		// /<user>/pen/<id> -> /embed/<id>
		parts := strings.Split(u.Path, "/")
		penID := parts[len(parts)-1]
		u.Path = "/embed/" + penID
		return u.String(), nil
	}

	return raw, nil
}

// probeClient does not follow the preview redirect chain to completion;
// five seconds is plenty for a reachability signal.
var probeClient = &http.Client{Timeout: 5 * time.Second}

// Probe issues a best-effort HEAD request against a preview URL. It only
// drives a loading/error indicator: providers that reject HEAD or sit
// behind opaque CORS-ish setups still serve fine in a browser, so a probe
// failure is advisory, never authoritative.
func Probe(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating probe request: %w", err)
	}

	resp, err := probeClient.Do(req)
	if err != nil {
		return fmt.Errorf("preview unreachable: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("preview host returned %s", resp.Status)
	}
	return nil
}
