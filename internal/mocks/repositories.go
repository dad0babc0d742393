package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/seu-repo/jarvis/internal/domain"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	SaveFunc        func(ctx context.Context, user *domain.User) error
	FindByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *MockUserRepository) Save(ctx context.Context, user *domain.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, domain.ErrNotFound
}

// MockContactRepository keeps contacts in memory.
type MockContactRepository struct {
	mu       sync.Mutex
	Contacts []domain.Contact
	Err      error
}

func (m *MockContactRepository) Save(ctx context.Context, contact *domain.Contact) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Contacts = append(m.Contacts, *contact)
	return nil
}

func (m *MockContactRepository) FindByName(ctx context.Context, name string) (*domain.Contact, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Contacts {
		if strings.EqualFold(c.Name, name) {
			found := c
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockContactRepository) Search(ctx context.Context, query string) ([]domain.Contact, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	var out []domain.Contact
	for _, c := range m.Contacts {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Email), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

// MockExpenseRepository keeps expenses in memory.
type MockExpenseRepository struct {
	mu       sync.Mutex
	Expenses []domain.Expense
	Err      error
}

func (m *MockExpenseRepository) Save(ctx context.Context, expense *domain.Expense) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Expenses = append(m.Expenses, *expense)
	return nil
}

func (m *MockExpenseRepository) Recent(ctx context.Context, source string, limit int) ([]domain.Expense, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Expense
	for _, e := range m.Expenses {
		if source == "" || e.Source == source {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockExpenseRepository) WithEmbeddings(ctx context.Context) ([]domain.Expense, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Expense
	for _, e := range m.Expenses {
		if len(e.Embedding) > 0 {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockExpenseRepository) SumSpending(ctx context.Context, filter domain.SpendingFilter) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, e := range m.Expenses {
		if filter.Category != "" && !strings.EqualFold(e.Category, filter.Category) {
			continue
		}
		if !filter.From.IsZero() && e.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !e.Date.Before(filter.To) {
			continue
		}
		total += e.Amount
	}
	return total, nil
}

// MockCalendarRepository keeps events in memory.
type MockCalendarRepository struct {
	mu     sync.Mutex
	Events []domain.CalendarEvent
	Err    error
}

func (m *MockCalendarRepository) Save(ctx context.Context, event *domain.CalendarEvent) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, *event)
	return nil
}

func (m *MockCalendarRepository) Between(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CalendarEvent
	for _, e := range m.Events {
		if !e.StartsAt.Before(from) && e.StartsAt.Before(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (m *MockCalendarRepository) FindByTitle(ctx context.Context, title string) (*domain.CalendarEvent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if strings.EqualFold(e.Title, title) {
			found := e
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockCalendarRepository) Delete(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.Events {
		if e.ID == id {
			m.Events = append(m.Events[:i], m.Events[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
