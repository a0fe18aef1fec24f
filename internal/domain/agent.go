package domain

import "time"

type Agent struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Region    *string   `json:"region"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AgentPatch carries the fields of a PUT body; nil means "leave as is".
type AgentPatch struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=50"`
	Region   *string `json:"region" validate:"omitempty,max=100"`
}

func (p AgentPatch) Apply(a *Agent) {
	if p.FullName != nil {
		a.FullName = *p.FullName
	}
	if p.Email != nil {
		a.Email = p.Email
	}
	if p.Phone != nil {
		a.Phone = p.Phone
	}
	if p.Region != nil {
		a.Region = p.Region
	}
}
