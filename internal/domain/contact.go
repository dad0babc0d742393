package domain

import (
	"fmt"
	"time"
)

type Contact struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"index"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contact) TableName() string { return "contacts" }

// Card renders the contact the way the contact handler reports it.
func (c Contact) Card() string {
	return fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s", orNA(c.Name), orNA(c.Email), orNA(c.Phone))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
