package ledger

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	nonWordChars = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// NormalizeURL lowers and trims the URL; for known video hosts it collapses
// the URL to a host:identifier key so mirrors and tracking parameters compare
// equal.
func NormalizeURL(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	parsed, err := url.Parse(cleaned)
	if err != nil {
		return cleaned
	}

	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := parsed.Query().Get("v"); id != "" {
			return "youtube:" + id
		}
		if rest, ok := strings.CutPrefix(parsed.Path, "/shorts/"); ok {
			return "youtube:" + strings.Trim(rest, "/")
		}
	case "youtu.be":
		if id := strings.Trim(parsed.Path, "/"); id != "" {
			return "youtube:" + id
		}
	}

	return cleaned
}

// NormalizeTitle lowers the title, strips everything that is not a letter,
// digit or space, and collapses internal whitespace.
func NormalizeTitle(title string) string {
	t := strings.ToLower(title)
	t = nonWordChars.ReplaceAllString(t, "")
	t = whitespace.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}
