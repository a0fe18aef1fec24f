package domain

import "time"

type User struct {
	ID             int64     `json:"id"`
	Username       *string   `json:"username"`
	FullName       *string   `json:"full_name"`
	Email          *string   `json:"email"`
	Phone          *string   `json:"phone"`
	HashedPassword *string   `json:"-"`
	IsActive       bool      `json:"is_active"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
}
