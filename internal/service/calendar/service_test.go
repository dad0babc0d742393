package calendar

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/mocks"
)

var fixedNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newTestService(repo *mocks.MockCalendarRepository) *Service {
	svc := NewService(repo, time.UTC, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestListEvents(t *testing.T) {
	// Arrange
	repo := &mocks.MockCalendarRepository{Events: []domain.CalendarEvent{
		{ID: "2", Title: "Lunch with Mary", StartsAt: fixedNow.Add(28 * time.Hour)},
		{ID: "1", Title: "Standup", StartsAt: fixedNow.Add(time.Hour)},
		{ID: "3", Title: "Next month", StartsAt: fixedNow.AddDate(0, 1, 0)},
	}}
	svc := newTestService(repo)

	// Act
	got, err := svc.ListEvents(context.Background(), 7)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Upcoming events:\n- Standup at 2024-05-01 09:00\n- Lunch with Mary at 2024-05-02 12:00"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestListEvents_Empty(t *testing.T) {
	svc := newTestService(&mocks.MockCalendarRepository{})

	got, _ := svc.ListEvents(context.Background(), 0)

	if got != "No upcoming events found." {
		t.Errorf("got %q", got)
	}
}

func TestCreateEvent(t *testing.T) {
	repo := &mocks.MockCalendarRepository{}
	svc := newTestService(repo)

	got, err := svc.CreateEvent(context.Background(), EventRequest{Title: "Dentist", Start: "2024-05-03T14:30"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Event created: Dentist on 2024-05-03 14:30" {
		t.Errorf("got %q", got)
	}
	if len(repo.Events) != 1 || repo.Events[0].EndsAt.Sub(repo.Events[0].StartsAt) != time.Hour {
		t.Errorf("event not stored with default duration: %+v", repo.Events)
	}
}

func TestCreateEvent_BadTime(t *testing.T) {
	svc := newTestService(&mocks.MockCalendarRepository{})

	_, err := svc.CreateEvent(context.Background(), EventRequest{Title: "x", Start: "tomorrow-ish"})

	var herr *domain.HandlerError
	if !errors.As(err, &herr) || !strings.HasPrefix(herr.Text(), "Error creating event") {
		t.Errorf("expected handler error, got %v", err)
	}
}

func TestDeleteEvent(t *testing.T) {
	repo := &mocks.MockCalendarRepository{Events: []domain.CalendarEvent{{ID: "1", Title: "Standup", StartsAt: fixedNow}}}
	svc := newTestService(repo)

	got, _ := svc.DeleteEvent(context.Background(), "standup")
	if got != "Event deleted: Standup" || len(repo.Events) != 0 {
		t.Errorf("got %q, remaining %d", got, len(repo.Events))
	}

	got, _ = svc.DeleteEvent(context.Background(), "standup")
	if got != "No event found with title: standup" {
		t.Errorf("got %q", got)
	}
}

func TestHandler_ListEventsViaModel(t *testing.T) {
	repo := &mocks.MockCalendarRepository{Err: errors.New("db down")}
	model := &mocks.MockChatModel{Responses: []string{`{"tool":"list_events","input":{"days":3}}`}}
	h := NewHandler(model, newTestService(repo), zap.NewNop())

	got := h.Run(context.Background(), "What's on my calendar?")

	if got != "Error retrieving events: db down" {
		t.Errorf("got %q", got)
	}
}

func TestCreateEvent_SendsInvitations(t *testing.T) {
	mail := &mocks.MockEmailService{}
	svc := newTestService(&mocks.MockCalendarRepository{}).WithInvites(mail)

	got, err := svc.CreateEvent(context.Background(), EventRequest{
		Title:     "Board meeting",
		Start:     "2024-05-03 14:00",
		Attendees: []string{"pepper@stark.com", "Happy"},
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Event created: Board meeting on 2024-05-03 14:00\nInvitations sent to 1 attendee(s)" {
		t.Errorf("got %q", got)
	}
	if len(mail.Sent) != 1 || mail.Sent[0].To != "pepper@stark.com" || mail.Sent[0].Subject != "event_invitation" {
		t.Errorf("unexpected invitations %+v", mail.Sent)
	}
}
