package domain

import (
	"fmt"
	"time"
)

type CalendarEvent struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at" gorm:"index"`
	EndsAt      time.Time `json:"ends_at"`
	Attendees   []string  `json:"attendees" gorm:"serializer:json;type:jsonb"`
	CreatedAt   time.Time `json:"created_at"`
}

func (CalendarEvent) TableName() string { return "calendar_events" }

func (e CalendarEvent) Line() string {
	return fmt.Sprintf("- %s at %s", e.Title, e.StartsAt.Format("2006-01-02 15:04"))
}
