// Package pdf renders chat transcripts.
package pdf

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/go-pdf/fpdf"
)

const Filename = "satn-chat-summary.pdf"

type Message struct {
	Role string `json:"role" validate:"required"`
	Text string `json:"text" validate:"max=8000"`
	TS   string `json:"ts,omitempty"`
}

type PropertyLine struct {
	Title    string `json:"title"`
	Price    Price  `json:"price"`
	Location string `json:"location"`
}

// Price is a display price; clients send it either as text or as a number.
type Price string

func (p *Price) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	if string(b) == "null" {
		*p = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = Price(n.String())
	return nil
}

type Summary struct {
	Name       string         `json:"name" validate:"required,max=255"`
	Email      string         `json:"email" validate:"required,email"`
	Messages   []Message      `json:"messages" validate:"required,min=1,dive"`
	Properties []PropertyLine `json:"properties,omitempty"`
}

// Render lays out s on A4 pages and returns the PDF bytes.
// Core fonts are cp1252; text is translated and characters outside it become '?'.
func Render(s Summary) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(18, 18, 18)
	doc.SetAutoPageBreak(true, 18)
	doc.SetTitle("SA Thomson Nerys Chat Summary", true)
	doc.SetAuthor("S A Thomson Nerys & Co.", true)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, tr("SA Thomson Nerys — Chat Summary"), "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 7, tr("Name: "+s.Name+"    Email: "+s.Email), "", 1, "L", false, 0, "")
	y := doc.GetY() + 2
	left, _, right, _ := doc.GetMargins()
	pageW, _ := doc.GetPageSize()
	doc.Line(left, y, pageW-right, y)
	doc.Ln(5)

	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 8, "Conversation:", "", 1, "L", false, 0, "")
	for _, m := range s.Messages {
		speaker := "Assistant: "
		if strings.EqualFold(m.Role, "user") {
			speaker = "You: "
		}
		doc.SetFont("Helvetica", "B", 10)
		doc.Write(5, speaker)
		doc.SetFont("Helvetica", "", 10)
		doc.Write(5, tr(strings.TrimSpace(m.Text)))
		doc.Ln(7)
	}

	if len(s.Properties) > 0 {
		doc.Ln(3)
		doc.SetFont("Helvetica", "B", 12)
		doc.CellFormat(0, 8, "Properties:", "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		for _, p := range s.Properties {
			doc.MultiCell(0, 5, tr("• "+propertyLine(p)), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func propertyLine(p PropertyLine) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Title, string(p.Price), p.Location} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " — ")
}
