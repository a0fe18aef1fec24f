package domain

import "time"

type CompanyInfo struct {
	ID          int64     `json:"id"`
	LegalName   string    `json:"legal_name"`
	ShortName   *string   `json:"short_name"`
	Description *string   `json:"description"`
	WebsiteURL  *string   `json:"website_url"`
	Email       *string   `json:"email"`
	Phone       *string   `json:"phone"`
	Address     *string   `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CompanyPatch struct {
	LegalName   *string `json:"legal_name" validate:"omitempty,min=1,max=255"`
	ShortName   *string `json:"short_name" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	WebsiteURL  *string `json:"website_url" validate:"omitempty,url"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	Address     *string `json:"address"`
}

func (p CompanyPatch) Apply(c *CompanyInfo) {
	if p.LegalName != nil {
		c.LegalName = *p.LegalName
	}
	if p.ShortName != nil {
		c.ShortName = p.ShortName
	}
	if p.Description != nil {
		c.Description = p.Description
	}
	if p.WebsiteURL != nil {
		c.WebsiteURL = p.WebsiteURL
	}
	if p.Email != nil {
		c.Email = p.Email
	}
	if p.Phone != nil {
		c.Phone = p.Phone
	}
	if p.Address != nil {
		c.Address = p.Address
	}
}
