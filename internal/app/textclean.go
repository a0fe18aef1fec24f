package app

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var stripPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// mojibake decoders, tried in order: UTF-8 bytes that were read as cp1252 or latin1.
var mojibakeCodecs = []encoding.Encoding{charmap.Windows1252, charmap.ISO8859_1}

// RepairEncoding undoes a UTF-8 -> single-byte -> UTF-8 double encoding,
// e.g. "â€“" back to "–". Text that does not round-trip is returned as is.
func RepairEncoding(s string) string {
	s = strings.TrimSpace(s)
	for _, enc := range mojibakeCodecs {
		// double-encoded twice over needs two passes
		for i := 0; i < 3 && looksMojibake(s); i++ {
			b, err := enc.NewEncoder().Bytes([]byte(s))
			if err != nil || !utf8.Valid(b) {
				break
			}
			s = string(b)
		}
	}
	return s
}

// looksMojibake reports the usual lead characters of a misread UTF-8 sequence.
func looksMojibake(s string) bool {
	return strings.ContainsAny(s, "ÃÂâ€")
}

// StripHTML turns rendered post HTML into one line of plain text.
func StripHTML(raw string) string {
	if raw == "" {
		return ""
	}
	text := html.UnescapeString(stripPolicy.Sanitize(html.UnescapeString(raw)))
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeSlug keeps a readable slug; empty or numeric slugs become listing-<wp_id>.
func NormalizeSlug(slug string, wpID int64) string {
	slug = strings.TrimSpace(slug)
	if slug == "" || isAllDigits(slug) {
		return fmt.Sprintf("listing-%d", wpID)
	}
	return slug
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
