// Package intent extracts property search slots from free chat text.
package intent

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"satn_chatbot/internal/domain"
)

// Slots is what a single message asks for. Nil/empty fields were not mentioned.
type Slots struct {
	Q        string   `json:"q,omitempty"`
	Location string   `json:"location,omitempty"`
	Type     string   `json:"type,omitempty"`
	Beds     *int     `json:"beds,omitempty"`
	Baths    *int     `json:"baths,omitempty"`
	Parking  *int     `json:"parking,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`

	verb bool
}

const amount = `\$?\s*(\d[\d,]*(?:\.\d+)?)\s*(k|m|million|mil)?\b`

var (
	bedsRe    = regexp.MustCompile(`(?i)\b(\d+)\s*(?:beds?|br|bedrooms?)\b`)
	bathsRe   = regexp.MustCompile(`(?i)\b(\d+)\s*(?:baths?|ba|bathrooms?)\b`)
	parkingRe = regexp.MustCompile(`(?i)\b(\d+)\s*(?:car\s*spaces?|parking|parks?)\b`)

	betweenRe = regexp.MustCompile(`(?i)\b(?:between|from)\s+` + amount + `\s*(?:and|to|-)\s*` + amount)
	underRe   = regexp.MustCompile(`(?i)(?:\bunder|\bbelow|\bmax(?:imum)?|\bless\s+than|\bup\s+to|<=?)\s*` + amount)
	overRe    = regexp.MustCompile(`(?i)(?:\bover|\babove|\bmin(?:imum)?|\bmore\s+than|\bat\s+least|>=?)\s*` + amount)
	budgetRe  = regexp.MustCompile(`(?i)\b(?:budget(?:\s+(?:of|is))?|around|approx(?:imately)?)\s*` + amount)

	// a number followed by a room word is a count, not a price
	roomWordRe = regexp.MustCompile(`(?i)^\s*(?:beds?|br|bedrooms?|baths?|ba|bathrooms?|car|parking|parks?)\b`)

	locationLeadRe = regexp.MustCompile(`(?i)\b(?:in|at|around|near)\s+`)

	verbRe = regexp.MustCompile(`(?i)\b(?:find|show|search|looking\s+for|look\s+for|buy|rent|listings?|propert(?:y|ies)|available)\b`)
)

// typeSynonyms maps words to a canonical type; the earliest matching word in the text wins.
var typeSynonyms = []struct {
	canonical string
	words     []string
}{
	{"townhouse", []string{"townhouse", "town-home", "townhome", "town home"}},
	{"apartment", []string{"apartment", "apt", "flat", "condo", "studio", "unit"}},
	{"house", []string{"house", "home"}},
	{"villa", []string{"villa"}},
	{"land", []string{"land", "plot"}},
	{"office", []string{"office", "commercial"}},
}

// KnownPlaces is scanned when no "in <place>" phrase is present. Longer names first.
var KnownPlaces = []string{
	"Colombo 07", "Colombo 03", "Sri Lanka", "Parramatta", "Queensland",
	"Melbourne", "Adelaide", "Colombo", "Sydney", "Dubai", "Perth", "NSW",
}

var knownPlaceRes = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(KnownPlaces))
	for i, p := range KnownPlaces {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p) + `\b`)
	}
	return out
}()

// stopWords end (or reject) a location phrase.
var stopWords = map[string]bool{
	"under": true, "below": true, "over": true, "above": true, "with": true, "for": true,
	"between": true, "from": true, "max": true, "min": true, "budget": true, "around": true,
	"approx": true, "less": true, "more": true, "and": true, "or": true, "near": true,
	"within": true, "that": true, "which": true, "having": true, "priced": true, "price": true,
	"at": true, "in": true, "to": true, "up": true, "least": true, "please": true, "only": true,
	"a": true, "an": true, "my": true, "our": true, "your": true, "this": true, "it": true,
	"there": true, "here": true, "buying": true, "buy": true, "investing": true, "invest": true,
	"renting": true, "rent": true, "interested": true, "touch": true, "mind": true, "general": true,
	"property": true, "properties": true, "listing": true, "listings": true, "area": true,
	"bed": true, "beds": true, "bedroom": true, "bedrooms": true, "bath": true, "baths": true,
	"is": true, "are": true, "was": true, "me": true, "you": true, "us": true, "i": true,
}

func isTypeWord(w string) bool {
	w = strings.ToLower(w)
	for _, t := range typeSynonyms {
		for _, s := range t.words {
			if w == s || w == s+"s" {
				return true
			}
		}
	}
	return false
}

// Parse extracts slots from text. It never fails; unknown text yields empty slots.
func Parse(text string) Slots {
	t := strings.TrimSpace(text)
	s := Slots{Q: t}
	if t == "" {
		return s
	}

	s.Beds = firstInt(bedsRe, t)
	s.Baths = firstInt(bathsRe, t)
	s.Parking = firstInt(parkingRe, t)
	s.MinPrice, s.MaxPrice = parsePrice(t)
	s.Type = parseType(t)
	s.Location = parseLocation(t)
	s.verb = verbRe.MatchString(t)
	return s
}

func firstInt(re *regexp.Regexp, t string) *int {
	m := re.FindStringSubmatch(t)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// ParseAmount reads "800", "800,000", "800k", "1.2m", "2 million".
func ParseAmount(num, suffix string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(suffix) {
	case "k":
		v *= 1_000
	case "m", "mil", "million":
		v *= 1_000_000
	}
	return v, true
}

// priceMatch returns the amount of the first match of re whose number is not
// a room count.
func priceMatch(re *regexp.Regexp, t string) *float64 {
	for _, idx := range re.FindAllStringSubmatchIndex(t, -1) {
		if roomWordRe.MatchString(t[idx[1]:]) {
			continue
		}
		num, suf := t[idx[2]:idx[3]], ""
		if idx[4] >= 0 {
			suf = t[idx[4]:idx[5]]
		}
		if v, ok := ParseAmount(num, suf); ok {
			return &v
		}
	}
	return nil
}

func parsePrice(t string) (lo, hi *float64) {
	if m := betweenRe.FindStringSubmatch(t); m != nil {
		a, okA := ParseAmount(m[1], m[2])
		b, okB := ParseAmount(m[3], m[4])
		if okA && okB {
			// "500k to 1.2m" style: a bare low end borrows the high end's suffix
			if m[2] == "" && m[4] != "" && a < 1000 {
				a, _ = ParseAmount(m[1], m[4])
			}
			if a > b {
				a, b = b, a
			}
			return &a, &b
		}
	}
	hi = priceMatch(underRe, t)
	lo = priceMatch(overRe, t)
	if hi == nil && lo == nil {
		hi = priceMatch(budgetRe, t)
	}
	return lo, hi
}

func words(t string) []string {
	return strings.FieldsFunc(strings.ToLower(t), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

func parseType(t string) string {
	lower := strings.ToLower(t)
	if strings.Contains(lower, "town home") {
		return "townhouse"
	}
	for _, w := range words(t) {
		for _, ts := range typeSynonyms {
			for _, syn := range ts.words {
				if w == syn || w == syn+"s" {
					return ts.canonical
				}
			}
		}
	}
	return ""
}

func parseLocation(t string) string {
	for _, idx := range locationLeadRe.FindAllStringIndex(t, -1) {
		if loc := takePlace(t[idx[1]:]); loc != "" {
			return loc
		}
	}
	for i, re := range knownPlaceRes {
		if re.MatchString(t) {
			return KnownPlaces[i]
		}
	}
	return ""
}

// takePlace reads up to four words of a place name from the start of rest.
func takePlace(rest string) string {
	fields := strings.Fields(rest)
	var out []string
	for i := 0; i < len(fields) && len(out) < 4; i++ {
		raw := fields[i]
		w := strings.TrimFunc(raw, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		lw := strings.ToLower(w)
		if w == "" {
			break
		}
		if len(out) == 0 && lw == "the" {
			continue
		}
		if stopWords[lw] || isTypeWord(lw) {
			break
		}
		if hasDigit(w) {
			// district numbers like "Colombo 07"; counts like "Sydney 3 bed" end the phrase
			next := ""
			if i+1 < len(fields) {
				next = fields[i+1]
			}
			if len(out) == 0 || len(w) > 2 || !isAllDigits(w) || roomWordRe.MatchString(next) {
				break
			}
		}
		out = append(out, w)
		if strings.ContainsAny(raw[len(raw)-1:], ",.;!?") {
			break
		}
	}
	return strings.Join(out, " ")
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// Structured reports whether any slot besides the raw text was found.
func (s Slots) Structured() bool {
	return s.Location != "" || s.Type != "" || s.Beds != nil || s.Baths != nil ||
		s.Parking != nil || s.MinPrice != nil || s.MaxPrice != nil
}

// HasSearchIntent is true when the message reads as a property search.
func (s Slots) HasSearchIntent() bool { return s.Structured() || s.verb }

// Filter turns slots into a repository filter. The raw text is only used as
// a keyword when nothing structured was extracted.
func (s Slots) Filter(limit int) domain.PropertyFilter {
	f := domain.PropertyFilter{
		Location: s.Location,
		Type:     s.Type,
		MinBeds:  s.Beds,
		MinBaths: s.Baths,
		MinPrice: s.MinPrice,
		MaxPrice: s.MaxPrice,
		Limit:    limit,
	}
	if !s.Structured() {
		f.Q = Keywords(s.Q)
	}
	return f
}

var fillerWords = map[string]bool{
	"show": true, "find": true, "search": true, "looking": true, "look": true, "all": true,
	"some": true, "any": true, "available": true, "what": true, "do": true, "have": true,
	"can": true, "get": true, "want": true, "need": true, "would": true, "like": true,
	"see": true, "the": true, "of": true, "options": true, "hi": true, "hello": true,
}

// Keywords drops filler and search verbs, leaving the words worth matching
// against titles and locations.
func Keywords(text string) string {
	var out []string
	for _, w := range words(text) {
		if stopWords[w] || fillerWords[w] {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}
