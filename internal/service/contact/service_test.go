package contact

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/mocks"
)

func newTestRepo() *mocks.MockContactRepository {
	return &mocks.MockContactRepository{Contacts: []domain.Contact{
		{ID: "1", Name: "John Smith", Email: "john@x.com", Phone: "555-0100"},
		{ID: "2", Name: "Mary", Email: "mary@corp.io"},
	}}
}

func TestGetContact_Found(t *testing.T) {
	svc := NewService(newTestRepo(), zap.NewNop())

	got, err := svc.GetContact(context.Background(), "mary")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Name: Mary\nEmail: mary@corp.io\nPhone: N/A" {
		t.Errorf("got %q", got)
	}
}

func TestGetContact_NotFound(t *testing.T) {
	svc := NewService(newTestRepo(), zap.NewNop())

	got, err := svc.GetContact(context.Background(), "Zed")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "No contact found with name: Zed" {
		t.Errorf("got %q", got)
	}
}

func TestSearchContacts(t *testing.T) {
	svc := NewService(newTestRepo(), zap.NewNop())

	got, _ := svc.SearchContacts(context.Background(), "corp")
	if got != "Matching contacts:\nMary (mary@corp.io)" {
		t.Errorf("got %q", got)
	}

	got, _ = svc.SearchContacts(context.Background(), "nobody")
	if got != "No contacts found matching: nobody" {
		t.Errorf("got %q", got)
	}
}

func TestAddContact(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, zap.NewNop())

	got, err := svc.AddContact(context.Background(), "Ann", "ann@x.com", "")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Contact added: Ann" {
		t.Errorf("got %q", got)
	}
	if len(repo.Contacts) != 3 || repo.Contacts[2].ID == "" {
		t.Errorf("contact not stored with an id: %+v", repo.Contacts)
	}
}

func TestHandler_RepositoryFailureIsText(t *testing.T) {
	// Arrange
	repo := &mocks.MockContactRepository{Err: errors.New("connection refused")}
	model := &mocks.MockChatModel{Responses: []string{`{"tool":"get_contact","input":{"name":"John"}}`}}
	h := NewHandler(model, NewService(repo, zap.NewNop()), zap.NewNop())

	// Act
	got := h.Run(context.Background(), "Get contact information for John")

	// Assert
	if got != "Error retrieving contact: connection refused" {
		t.Errorf("got %q", got)
	}
	if h.Name() != domain.HandlerContact {
		t.Errorf("unexpected handler name %q", h.Name())
	}
}

func TestHandler_LookupInstruction(t *testing.T) {
	model := &mocks.MockChatModel{Responses: []string{`{"tool":"get_contact","input":{"name":"John Smith"}}`}}
	h := NewHandler(model, NewService(newTestRepo(), zap.NewNop()), zap.NewNop())

	got := h.Run(context.Background(), "Get contact information for John")

	if got != "Name: John Smith\nEmail: john@x.com\nPhone: 555-0100" {
		t.Errorf("got %q", got)
	}
}
