package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go out as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	DefaultPropertyLimit = 100
	MaxPropertyLimit     = 200
)

// Features is the free-form attribute bag stored next to a property
// (beds, baths, parking, size_sqm, image_url, type ...).
type Features map[string]any

// Int reads a numeric feature, accepting JSON numbers and numeric strings.
func (f Features) Int(key string) *int {
	switch v := f[key].(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		return &v
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return &n
		}
	}
	return nil
}

func (f Features) String(key string) string {
	if s, ok := f[key].(string); ok {
		return s
	}
	return ""
}

type Property struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Description    *string             `json:"description"`
	Price          decimal.NullDecimal `json:"price"`
	PriceFrom      decimal.NullDecimal `json:"price_from"`
	Location       *string             `json:"location"`
	Features       Features            `json:"features"`
	AgentID        *int64              `json:"agent_id"`
	Beds           *int                `json:"beds"`
	Baths          *int                `json:"baths"`
	CarSpaces      *int                `json:"car_spaces"`
	EstCompletion  *string             `json:"est_completion"`
	VideoURL       *string             `json:"video_url"`
	VirtualTourURL *string             `json:"virtual_tour_url"`
	BrochureURL    *string             `json:"brochure_url"`
	FloorPlanURL   *string             `json:"floor_plan_url"`
	PriceListURL   *string             `json:"price_list_url"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// EffectivePrice is price_from when set, else price.
func (p Property) EffectivePrice() decimal.NullDecimal {
	if p.PriceFrom.Valid {
		return p.PriceFrom
	}
	return p.Price
}

// BedCount prefers the column and falls back to the features bag.
func (p Property) BedCount() *int {
	if p.Beds != nil {
		return p.Beds
	}
	return p.Features.Int("beds")
}

type PropertyPatch struct {
	Title          *string          `json:"title" validate:"omitempty,min=1,max=255"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	PriceFrom      *decimal.Decimal `json:"price_from"`
	Location       *string          `json:"location" validate:"omitempty,max=255"`
	Features       Features         `json:"features"`
	AgentID        *int64           `json:"agent_id" validate:"omitempty,gt=0"`
	Beds           *int             `json:"beds" validate:"omitempty,gte=0"`
	Baths          *int             `json:"baths" validate:"omitempty,gte=0"`
	CarSpaces      *int             `json:"car_spaces" validate:"omitempty,gte=0"`
	EstCompletion  *string          `json:"est_completion"`
	VideoURL       *string          `json:"video_url" validate:"omitempty,url"`
	VirtualTourURL *string          `json:"virtual_tour_url" validate:"omitempty,url"`
	BrochureURL    *string          `json:"brochure_url" validate:"omitempty,url"`
	FloorPlanURL   *string          `json:"floor_plan_url" validate:"omitempty,url"`
	PriceListURL   *string          `json:"price_list_url" validate:"omitempty,url"`
}

func (p PropertyPatch) Apply(dst *Property) {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	setStr := func(dst **string, v *string) {
		if v != nil {
			*dst = v
		}
	}
	setInt := func(dst **int, v *int) {
		if v != nil {
			*dst = v
		}
	}
	setStr(&dst.Description, p.Description)
	setStr(&dst.Location, p.Location)
	setStr(&dst.EstCompletion, p.EstCompletion)
	setStr(&dst.VideoURL, p.VideoURL)
	setStr(&dst.VirtualTourURL, p.VirtualTourURL)
	setStr(&dst.BrochureURL, p.BrochureURL)
	setStr(&dst.FloorPlanURL, p.FloorPlanURL)
	setStr(&dst.PriceListURL, p.PriceListURL)
	setInt(&dst.Beds, p.Beds)
	setInt(&dst.Baths, p.Baths)
	setInt(&dst.CarSpaces, p.CarSpaces)
	if p.Price != nil {
		dst.Price = decimal.NewNullDecimal(*p.Price)
	}
	if p.PriceFrom != nil {
		dst.PriceFrom = decimal.NewNullDecimal(*p.PriceFrom)
	}
	if p.Features != nil {
		dst.Features = p.Features
	}
	if p.AgentID != nil {
		dst.AgentID = p.AgentID
	}
}

// PropertyFilter is a property search. Zero values mean "no constraint".
type PropertyFilter struct {
	Q        string   `json:"q,omitempty"`
	Location string   `json:"location,omitempty"`
	Type     string   `json:"type,omitempty"`
	MinBeds  *int     `json:"min_beds,omitempty"`
	MinBaths *int     `json:"min_baths,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	Limit    int      `json:"limit"`
}

// Normalize trims text filters and clamps the limit into 1..MaxPropertyLimit.
func (f PropertyFilter) Normalize() PropertyFilter {
	f.Q = strings.TrimSpace(f.Q)
	f.Location = strings.TrimSpace(f.Location)
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultPropertyLimit
	case f.Limit > MaxPropertyLimit:
		f.Limit = MaxPropertyLimit
	}
	return f
}
