package telemetry

import (
	"strings"
	"time"
)

// siteAliases are the accepted spellings of the site-identifier column,
// after header normalization. All are canonicalized to ColSite.
var siteAliases = map[string]bool{
	"enodeb_gnodeb": true,
	"gnodeb":        true,
}

// dateLayouts are tried in order when parsing report dates. Unparsable
// dates become missing, never an error.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// NormalizeHeader canonicalizes a raw column name: trimmed, lower-cased,
// "/" and spaces replaced by "_", site aliases renamed to ColSite.
// Idempotent: normalizing an already-normalized header is a no-op.
func NormalizeHeader(name string) string {
	h := strings.ToLower(strings.TrimSpace(name))
	h = strings.ReplaceAll(h, "/", "_")
	h = strings.ReplaceAll(h, " ", "_")
	if siteAliases[h] {
		return ColSite
	}
	return h
}

// NormalizeHeaders canonicalizes a full header row into a new slice.
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = NormalizeHeader(h)
	}
	return out
}

// ParseDate parses a report date permissively. The second result is
// false when the value is empty or matches no known layout.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
