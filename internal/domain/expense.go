package domain

import (
	"fmt"
	"time"
)

type Expense struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category" gorm:"index"`
	Date        time.Time `json:"date" gorm:"index"`
	Source      string    `json:"source"` // credit_card, cash, transfer
	Embedding   []float64 `json:"-" gorm:"serializer:json;type:jsonb"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Expense) TableName() string { return "expenses" }

// Line renders one expense as a bullet.
func (e Expense) Line() string {
	return fmt.Sprintf("- %s: $%.2f on %s (Category: %s)", e.Description, e.Amount, e.Date.Format("2006-01-02"), e.Category)
}

// SpendingFilter narrows a spending sum. Zero values mean "all".
type SpendingFilter struct {
	Category string
	From     time.Time
	To       time.Time
}
