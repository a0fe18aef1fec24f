package intent

import (
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
)

const (
	LangEnglish = "en"
	LangSinhala = "si"
	LangTamil   = "ta"
)

// NormalizeLang maps a client-supplied code ("si", "ta-LK", "EN") to a
// supported language.
func NormalizeLang(code string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(c, "-_"); i > 0 {
		c = c[:i]
	}
	switch c {
	case LangEnglish, LangSinhala, LangTamil:
		return c, true
	}
	return "", false
}

// DetectLang returns si, ta or en. Script decides first since chat messages
// are often too short for a confident language guess.
func DetectLang(text string) string {
	if strings.TrimSpace(text) == "" {
		return LangEnglish
	}
	switch whatlanggo.DetectScript(text) {
	case unicode.Sinhala:
		return LangSinhala
	case unicode.Tamil:
		return LangTamil
	}
	switch whatlanggo.DetectLang(text) {
	case whatlanggo.Sin:
		return LangSinhala
	case whatlanggo.Tam:
		return LangTamil
	}
	return LangEnglish
}

// ToEnglish and FromEnglish are the translation seam; messages pass through unchanged.
func ToEnglish(text, _ string) string { return text }

func FromEnglish(text, _ string) string { return text }
