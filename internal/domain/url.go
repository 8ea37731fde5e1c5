package domain

import (
	"regexp"
	"strings"
)

var articleURLPattern = regexp.MustCompile(`^https?://(en\.)?wikipedia\.org/wiki/.+`)

// NormalizeArticleURL trims surrounding whitespace. Nothing else is rewritten.
func NormalizeArticleURL(raw string) string {
	return strings.TrimSpace(raw)
}

// ValidateArticleURL returns an INVALID_URL error unless url is a Wikipedia article address.
func ValidateArticleURL(url string) error {
	if !articleURLPattern.MatchString(url) {
		return NewInvalidURLError(url)
	}
	return nil
}
