package intent

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders a price with thousands separators and no decimals.
// Amounts beyond int64 keep their magnitude.
func FormatAmount(v float64) string { return printer.Sprintf("%.0f", math.Trunc(v)) }

// Describe renders slots as a short English summary, e.g.
// `apartment, 2+ bed, ≤ 800,000, in "Sydney"`.
func (s Slots) Describe() string {
	var parts []string
	if s.Type != "" {
		parts = append(parts, s.Type)
	}
	if s.Beds != nil && *s.Beds > 0 {
		parts = append(parts, fmt.Sprintf("%d+ bed", *s.Beds))
	}
	if s.Baths != nil && *s.Baths > 0 {
		parts = append(parts, fmt.Sprintf("%d+ bath", *s.Baths))
	}
	if s.Parking != nil && *s.Parking > 0 {
		parts = append(parts, fmt.Sprintf("%d+ parking", *s.Parking))
	}
	switch {
	case s.MinPrice != nil && s.MaxPrice != nil:
		parts = append(parts, FormatAmount(*s.MinPrice)+"–"+FormatAmount(*s.MaxPrice))
	case s.MaxPrice != nil:
		parts = append(parts, "≤ "+FormatAmount(*s.MaxPrice))
	case s.MinPrice != nil:
		parts = append(parts, "≥ "+FormatAmount(*s.MinPrice))
	}
	if s.Location != "" {
		parts = append(parts, fmt.Sprintf("in %q", s.Location))
	}
	if len(parts) == 0 {
		return "your criteria"
	}
	return strings.Join(parts, ", ")
}
