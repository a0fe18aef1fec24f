package wordpress

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"satn_chatbot/internal/domain"
)

const wpTime = "2006-01-02 15:04:05"

type wxrDoc struct {
	Items []wxrItem `xml:"channel>item"`
}

type wxrItem struct {
	Title         string        `xml:"title"`
	Link          string        `xml:"link"`
	Content       string        `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	PostID        int64         `xml:"post_id"`
	PostName      string        `xml:"post_name"`
	Status        string        `xml:"status"`
	PostType      string        `xml:"post_type"`
	PostDate      string        `xml:"post_date"`
	PostModified  string        `xml:"post_modified"`
	AttachmentURL string        `xml:"attachment_url"`
	Meta          []wxrMeta     `xml:"postmeta"`
	Categories    []wxrCategory `xml:"category"`
}

type wxrMeta struct {
	Key   string `xml:"meta_key"`
	Value string `xml:"meta_value"`
}

type wxrCategory struct {
	Domain string `xml:"domain,attr"`
	Name   string `xml:",chardata"`
}

func parseWPTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0000") {
		return nil
	}
	t, err := time.ParseInLocation(wpTime, s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

// ParseWXR decodes every item in an export, attachments included.
func ParseWXR(r io.Reader) ([]domain.ExportItem, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	var doc wxrDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse WXR: %w", err)
	}
	out := make([]domain.ExportItem, 0, len(doc.Items))
	for _, it := range doc.Items {
		item := domain.ExportItem{
			WPID:          it.PostID,
			Title:         strings.TrimSpace(it.Title),
			Slug:          strings.TrimSpace(it.PostName),
			Status:        strings.TrimSpace(it.Status),
			PostType:      strings.TrimSpace(it.PostType),
			Link:          strings.TrimSpace(it.Link),
			ContentHTML:   it.Content,
			AttachmentURL: strings.TrimSpace(it.AttachmentURL),
			Created:       parseWPTime(it.PostDate),
			Modified:      parseWPTime(it.PostModified),
			Meta:          make(map[string]string, len(it.Meta)),
			Terms:         map[string][]string{},
		}
		for _, m := range it.Meta {
			item.Meta[strings.TrimSpace(m.Key)] = strings.TrimSpace(m.Value)
		}
		for _, c := range it.Categories {
			if name := strings.TrimSpace(c.Name); name != "" {
				item.Terms[c.Domain] = append(item.Terms[c.Domain], name)
			}
		}
		out = append(out, item)
	}
	return out, nil
}
