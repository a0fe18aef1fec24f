package domain

import "time"

const DefaultLeadSource = "chatbot"

type Lead struct {
	ID        string    `json:"id"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName joins first and last name, or returns "" when neither is set.
func (l Lead) DisplayName() string {
	var first, last string
	if l.FirstName != nil {
		first = *l.FirstName
	}
	if l.LastName != nil {
		last = *l.LastName
	}
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}

// Contact is who a sales alert is about: a fresh lead or a first-time chat user.
type Contact struct {
	Name   string
	Email  string
	Phone  string
	Source string
}
