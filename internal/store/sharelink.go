package store

import (
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
)

// Share links carry a word list as a single percent-encoded, comma-joined
// query value, e.g. ?words=Apple%2Cbanana%2Ccherry. An import is one-way: a
// decoded non-empty list overrides the persisted list for that load and is
// never merged.

// EncodeWords serializes a word list into a share parameter value.
func EncodeWords(words []string) string {
	return url.QueryEscape(strings.Join(words, ","))
}

// ShareLink renders a full shareable URL for a word list.
func ShareLink(baseURL string, words []string) string {
	if len(words) == 0 {
		return baseURL
	}
	return baseURL + "?words=" + EncodeWords(words)
}

// DecodeWords parses a share parameter value back into a word list: decode,
// split on commas, trim whitespace, drop empties. Malformed input is logged
// and yields nil so the persisted list wins.
func DecodeWords(param string) []string {
	if param == "" {
		return nil
	}
	decoded, err := url.QueryUnescape(param)
	if err != nil {
		log.Warn("malformed share parameter ignored", "error", err)
		return nil
	}
	var words []string
	for _, w := range strings.Split(decoded, ",") {
		w = strings.TrimSpace(w)
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// DecodeShareLink extracts and decodes the words parameter from a full URL
// or a bare query string. Accepts a raw comma-separated list as a
// convenience when the input has no words= parameter.
func DecodeShareLink(link string) []string {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil
	}
	if u, err := url.Parse(link); err == nil {
		if param := u.Query().Get("words"); param != "" {
			// Query() already unescaped once.
			var words []string
			for _, w := range strings.Split(param, ",") {
				w = strings.TrimSpace(w)
				if w != "" {
					words = append(words, w)
				}
			}
			return words
		}
	}
	// Bare query string without a leading "?".
	if rest, ok := strings.CutPrefix(link, "words="); ok {
		return DecodeWords(rest)
	}
	if !strings.Contains(link, "=") {
		return DecodeWords(link)
	}
	return nil
}
