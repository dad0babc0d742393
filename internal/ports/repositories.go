package ports

import (
	"context"
	"time"

	"github.com/seu-repo/jarvis/internal/domain"
)

type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

type ContactRepository interface {
	Save(ctx context.Context, contact *domain.Contact) error
	// FindByName matches the full name case-insensitively.
	FindByName(ctx context.Context, name string) (*domain.Contact, error)
	Search(ctx context.Context, query string) ([]domain.Contact, error)
}

type ExpenseRepository interface {
	Save(ctx context.Context, expense *domain.Expense) error
	Recent(ctx context.Context, source string, limit int) ([]domain.Expense, error)
	WithEmbeddings(ctx context.Context) ([]domain.Expense, error)
	SumSpending(ctx context.Context, filter domain.SpendingFilter) (float64, error)
}

type CalendarRepository interface {
	Save(ctx context.Context, event *domain.CalendarEvent) error
	Between(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error)
	FindByTitle(ctx context.Context, title string) (*domain.CalendarEvent, error)
	Delete(ctx context.Context, id string) error
}

// Cache is the key/value store shared by auth, memory and webhook dedup.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	Append(ctx context.Context, key string, value string) error
	Range(ctx context.Context, key string) ([]string, error)
	Ping() error
	Close() error
}
