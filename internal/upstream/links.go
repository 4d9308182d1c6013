package upstream

import (
	"net/url"
	"strings"
)

// NextCursor scans link relations for the one tagged "next" and extracts its
// after cursor parameter. Returns ("", false) when no next link exists, which
// callers treat as the listing being exhausted.
func NextCursor(links []Link) (string, bool) {
	for _, link := range links {
		if !strings.EqualFold(link.Rel, "next") {
			continue
		}
		parsed, err := url.Parse(link.Href)
		if err != nil {
			continue
		}
		if after := parsed.Query().Get("after"); after != "" {
			return after, true
		}
	}
	return "", false
}
