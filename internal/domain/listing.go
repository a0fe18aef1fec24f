package domain

import "time"

// Listing is a WordPress listing as imported by the ETL.
type Listing struct {
	ID               int64
	WPID             int64
	Slug             string
	Status           *string
	Title            string
	DescriptionHTML  *string
	DescriptionText  *string
	Permalink        *string
	Region           *string
	Categories       []string
	FeaturedImageURL *string
	GalleryImageURLs []string
	WPCreated        *time.Time
	WPModified       *time.Time
	ListingType      *string
	Location         *string
	PriceFrom        *float64
	Beds             *int
	Baths            *int
	CarSpaces        *int
	CompletedPercent *int
	EstCompletion    *string
	Address          *string
	VideoURL         *string
	VirtualTourURL   *string
	LastModifiedNote *string
	Attributes       map[string]any
	ImageURL         *string
	Images           []ListingImage
	Documents        []ListingDocument
}

type ListingImage struct {
	RemoteURL  string
	AltText    *string
	Width      *int
	Height     *int
	Position   int
	IsFeatured bool
}

type ListingDocument struct {
	DocType   string
	RemoteURL string
	Filename  *string
	MimeType  *string
}

// ExportItem is one <item> of a WordPress eXtended RSS (WXR) export.
type ExportItem struct {
	WPID          int64
	Title         string
	Slug          string
	Status        string
	PostType      string
	Link          string
	ContentHTML   string
	AttachmentURL string
	Created       *time.Time
	Modified      *time.Time
	Meta          map[string]string
	// Terms maps a taxonomy (category domain) to its term names.
	Terms map[string][]string
}
