package app

import (
	"strconv"
	"strings"
	"time"

	"satn_chatbot/internal/domain"
)

const (
	taxRegion   = "hp_listing_region"
	taxCategory = "hp_listing_category"
	wpRESTTime  = "2006-01-02T15:04:05"
)

// listingPostTypes are the WXR post types imported as listings.
var listingPostTypes = map[string]bool{"hp_listing": true, "listing": true, "property": true}

// metaAliases lists the postmeta keys read for each listing field, first hit wins.
var metaAliases = map[string][]string{
	"price":    {"price", "_price"},
	"beds":     {"bedrooms", "_bedrooms"},
	"baths":    {"bathrooms", "_bathrooms"},
	"location": {"location", "_location"},
	"image":    {"image_url", "_thumbnail_url", "_thumbnail_id"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if s, ok := lookupAny(m, path).(string); ok {
		return s
	}
	return ""
}

// lookupList returns the JSON array at path as a list of objects.
func lookupList(m map[string]any, path string) []map[string]any {
	raw, _ := lookupAny(m, path).([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if obj, ok := it.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseFlexFloat reads "850000", "850,000" or "$850,000.00".
func parseFlexFloat(s string) *float64 {
	s = strings.TrimSpace(strings.NewReplacer(",", "", "$", "").Replace(s))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseFlexInt(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

// getFloatFlexible: number from several paths (float64/int/string).
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return &v
		case string:
			if f := parseFlexFloat(v); f != nil {
				return f
			}
		}
	}
	return nil
}

func getIntFlexible(m map[string]any, paths ...string) *int {
	if f := getFloatFlexible(m, paths...); f != nil {
		n := int(*f)
		return &n
	}
	return nil
}

// firstInt64Flexible: int64 from several paths (float64/string).
func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

func parseRESTTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(wpRESTTime, s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

func cleanAll(in []string) []string {
	var out []string
	for _, s := range in {
		if c := RepairEncoding(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}

/********** REST post mapper **********/

// mapPost transforms one /wp/v2 listing post (with _embed) into a Listing
// plus its media. ok is false when the post carries no id.
func mapPost(p map[string]any) (domain.Listing, bool) {
	id := firstInt64Flexible(p, "id")
	if id == nil {
		return domain.Listing{}, false
	}
	contentHTML := RepairEncoding(lookupStr(p, "content.rendered"))

	l := domain.Listing{
		WPID:            *id,
		Slug:            NormalizeSlug(lookupStr(p, "slug"), *id),
		Status:          ptrStr(RepairEncoding(lookupStr(p, "status"))),
		Title:           RepairEncoding(StripHTML(lookupStr(p, "title.rendered"))),
		DescriptionHTML: ptrStr(contentHTML),
		DescriptionText: ptrStr(StripHTML(contentHTML)),
		Permalink:       ptrStr(lookupStr(p, "link")),
		WPCreated:       parseRESTTime(lookupStr(p, "date")),
		WPModified:      parseRESTTime(lookupStr(p, "modified")),
		PriceFrom:       getFloatFlexible(p, "meta.price", "meta._price", "price"),
		Beds:            getIntFlexible(p, "meta.bedrooms", "meta._bedrooms", "bedrooms"),
		Baths:           getIntFlexible(p, "meta.bathrooms", "meta._bathrooms", "bathrooms"),
		CarSpaces:       getIntFlexible(p, "meta.car_spaces", "car_spaces"),
		Location:        ptrStr(RepairEncoding(lookupStr(p, "meta.location"))),
	}

	var regions, categories []string
	if groups, ok := lookupAny(p, "_embedded.wp:term").([]any); ok {
		for _, g := range groups {
			terms, _ := g.([]any)
			for _, t := range terms {
				term, _ := t.(map[string]any)
				switch lookupStr(term, "taxonomy") {
				case taxRegion:
					regions = append(regions, lookupStr(term, "name"))
				case taxCategory:
					categories = append(categories, lookupStr(term, "name"))
				}
			}
		}
	}
	if regions = cleanAll(regions); len(regions) > 0 {
		l.Region = &regions[0]
	}
	l.Categories = cleanAll(categories)
	if len(l.Categories) > 0 {
		l.ListingType = &l.Categories[0]
	}

	pos := 0
	if featured := lookupList(p, "_embedded.wp:featuredmedia"); len(featured) > 0 {
		if u := lookupStr(featured[0], "source_url"); u != "" {
			l.FeaturedImageURL = &u
			l.ImageURL = &u
			l.Images = append(l.Images, domain.ListingImage{
				RemoteURL:  u,
				AltText:    ptrStr(lookupStr(featured[0], "alt_text")),
				Width:      getIntFlexible(featured[0], "media_details.width"),
				Height:     getIntFlexible(featured[0], "media_details.height"),
				Position:   pos,
				IsFeatured: true,
			})
			pos++
		}
	}
	for _, a := range lookupList(p, "_embedded.wp:attachment") {
		u := lookupStr(a, "source_url")
		if u == "" {
			continue
		}
		mime := lookupStr(a, "mime_type")
		if mime == "application/pdf" {
			l.Documents = append(l.Documents, domain.ListingDocument{
				DocType:   documentType(u),
				RemoteURL: u,
				Filename:  ptrStr(u[strings.LastIndex(u, "/")+1:]),
				MimeType:  &mime,
			})
			continue
		}
		l.GalleryImageURLs = append(l.GalleryImageURLs, u)
		if l.FeaturedImageURL != nil && *l.FeaturedImageURL == u {
			continue
		}
		l.Images = append(l.Images, domain.ListingImage{
			RemoteURL: u,
			AltText:   ptrStr(lookupStr(a, "alt_text")),
			Width:     getIntFlexible(a, "media_details.width"),
			Height:    getIntFlexible(a, "media_details.height"),
			Position:  pos,
		})
		pos++
	}
	return l, true
}

// documentType guesses the document kind from its file name.
func documentType(u string) string {
	lu := strings.ToLower(u)
	switch {
	case strings.Contains(lu, "brochure"):
		return "brochure"
	case strings.Contains(lu, "floor"):
		return "floor_plan"
	case strings.Contains(lu, "price"):
		return "price_list"
	}
	return "document"
}

/********** WXR item mapper **********/

func firstMeta(meta map[string]string, field string) string {
	for _, k := range metaAliases[field] {
		if v := strings.TrimSpace(meta[k]); v != "" {
			return v
		}
	}
	return ""
}

// mapExportItem transforms a WXR listing item. Thumbnail ids are resolved
// through attachments (post id -> attachment url).
func mapExportItem(it domain.ExportItem, attachments map[int64]string) domain.Listing {
	contentHTML := RepairEncoding(it.ContentHTML)
	l := domain.Listing{
		WPID:            it.WPID,
		Slug:            NormalizeSlug(it.Slug, it.WPID),
		Status:          ptrStr(it.Status),
		Title:           RepairEncoding(StripHTML(it.Title)),
		DescriptionHTML: ptrStr(contentHTML),
		DescriptionText: ptrStr(StripHTML(contentHTML)),
		Permalink:       ptrStr(it.Link),
		WPCreated:       it.Created,
		WPModified:      it.Modified,
		PriceFrom:       parseFlexFloat(firstMeta(it.Meta, "price")),
		Beds:            parseFlexInt(firstMeta(it.Meta, "beds")),
		Baths:           parseFlexInt(firstMeta(it.Meta, "baths")),
		Location:        ptrStr(RepairEncoding(firstMeta(it.Meta, "location"))),
	}
	if regions := cleanAll(it.Terms[taxRegion]); len(regions) > 0 {
		l.Region = &regions[0]
	}
	l.Categories = cleanAll(it.Terms[taxCategory])
	if len(l.Categories) > 0 {
		l.ListingType = &l.Categories[0]
	}

	if img := firstMeta(it.Meta, "image"); img != "" {
		if id, err := strconv.ParseInt(img, 10, 64); err == nil {
			img = attachments[id]
		}
		if img != "" {
			l.ImageURL = &img
			l.FeaturedImageURL = &img
			l.Images = []domain.ListingImage{{RemoteURL: img, IsFeatured: true}}
		}
	}

	attrs := map[string]any{}
	for k, v := range it.Meta {
		if !strings.HasPrefix(k, "_") && v != "" {
			attrs[k] = v
		}
	}
	if len(attrs) > 0 {
		l.Attributes = attrs
	}
	return l
}
