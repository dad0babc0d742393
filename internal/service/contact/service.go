package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/ports"
	"github.com/seu-repo/jarvis/internal/service/agent"
)

const role = `You are a Contact Database Agent. Your role is to retrieve and manage contact information.
Always provide accurate contact information.`

// Service implements the contact tools over the contact store.
type Service struct {
	repo ports.ContactRepository
	log  *zap.Logger
}

func NewService(repo ports.ContactRepository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// NewHandler builds the contact domain handler.
func NewHandler(model ports.ChatModel, svc *Service, log *zap.Logger) *agent.Agent {
	return agent.New(domain.HandlerContact, role, model, []agent.Tool{
		{
			Name:        "get_contact",
			Description: `Get contact information by full name. Input: {"name": "..."}`,
			Run: func(ctx context.Context, in agent.Input) (string, error) {
				return svc.GetContact(ctx, in.String("name"))
			},
		},
		{
			Name:        "search_contacts",
			Description: `Search contacts by part of a name or email. Input: {"query": "..."}`,
			Run: func(ctx context.Context, in agent.Input) (string, error) {
				return svc.SearchContacts(ctx, in.String("query"))
			},
		},
		{
			Name:        "add_contact",
			Description: `Add a new contact. Input: {"name": "...", "email": "...", "phone": "..."} (phone optional)`,
			Run: func(ctx context.Context, in agent.Input) (string, error) {
				return svc.AddContact(ctx, in.String("name"), in.String("email"), in.String("phone"))
			},
		},
	}, log)
}

func (s *Service) GetContact(ctx context.Context, name string) (string, error) {
	c, err := s.repo.FindByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Sprintf("No contact found with name: %s", name), nil
	}
	if err != nil {
		return "", s.fail("retrieving contact", err)
	}
	return c.Card(), nil
}

func (s *Service) SearchContacts(ctx context.Context, query string) (string, error) {
	found, err := s.repo.Search(ctx, query)
	if err != nil {
		return "", s.fail("searching contacts", err)
	}
	if len(found) == 0 {
		return fmt.Sprintf("No contacts found matching: %s", query), nil
	}

	lines := make([]string, 0, len(found))
	for _, c := range found {
		lines = append(lines, fmt.Sprintf("%s (%s)", c.Name, c.Email))
	}
	return "Matching contacts:\n" + strings.Join(lines, "\n"), nil
}

func (s *Service) AddContact(ctx context.Context, name, email, phone string) (string, error) {
	if name == "" || email == "" {
		return "", s.fail("adding contact", errors.New("name and email are required"))
	}

	now := time.Now()
	c := &domain.Contact{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return "", s.fail("adding contact", err)
	}

	s.log.Info("Contact added", zap.String("contact_id", c.ID))
	return fmt.Sprintf("Contact added: %s", name), nil
}

func (s *Service) fail(op string, err error) error {
	return &domain.HandlerError{Handler: domain.HandlerContact, Op: op, Err: err}
}
