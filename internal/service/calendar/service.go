package calendar

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

const role = `You are a Calendar Management Agent. Your role is to read and manage the user's schedule:
meetings, events and appointments. Use ISO 8601 timestamps for event times.`

const (
	defaultWindowDays = 7
	defaultDuration   = time.Hour
)

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

type Service struct {
	repo    ports.CalendarRepository
	invites ports.EmailService
	loc     *time.Location
	now     func() time.Time
	log     *zap.Logger
}

func NewService(repo ports.CalendarRepository, loc *time.Location, log *zap.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, loc: loc, now: time.Now, log: log}
}

// WithInvites makes CreateEvent email attendees that have an address.
func (s *Service) WithInvites(mail ports.EmailService) *Service {
	s.invites = mail
	return s
}

func NewHandler(model ports.ChatModel, svc *Service, log *zap.Logger) *agent.Agent {
	return agent.New(domain.HandlerCalendar, role, model, []agent.Tool{
		{
			Name:        "list_events",
			Description: `List upcoming events. Input: {"days": 7}`,
			Run: func(ctx context.Context, in agent.Input) (string, error) {
				return svc.ListEvents(ctx, in.Int("days", defaultWindowDays))
			},
		},
		{
			Name:        "create_event",
			Description: `Create an event. Input: {"title": "...", "start": "2006-01-02T15:04", "duration_minutes": 60, "location": "...", "attendees": ["..."]}`,
			Run: func(ctx context.Context, in agent.Input) (string, error) {
				return svc.CreateEvent(ctx, EventRequest{
					Title:     in.String("title"),
					Start:     in.String("start"),
					Duration:  time.Duration(in.Int("duration_minutes", 60)) * time.Minute,
					Location:  in.String("location"),
					Attendees: in.Strings("attendees"),
				})
			},
		},
		{
			Name:        "delete_event",
			Description: `Cancel an event by its title. Input: {"title": "..."}`,
			Run: func(ctx context.Context, in agent.Input) (string, error) {
				return svc.DeleteEvent(ctx, in.String("title"))
			},
		},
	}, log)
}

func (s *Service) ListEvents(ctx context.Context, days int) (string, error) {
	if days <= 0 {
		days = defaultWindowDays
	}
	from := s.now().In(s.loc)
	events, err := s.repo.Between(ctx, from, from.AddDate(0, 0, days))
	if err != nil {
		return "", s.fail("retrieving events", err)
	}
	if len(events) == 0 {
		return "No upcoming events found.", nil
	}

	lines := make([]string, 0, len(events))
	for _, e := range events {
		e.StartsAt = e.StartsAt.In(s.loc)
		lines = append(lines, e.Line())
	}
	return "Upcoming events:\n" + strings.Join(lines, "\n"), nil
}

type EventRequest struct {
	Title     string
	Start     string
	Duration  time.Duration
	Location  string
	Attendees []string
}

func (s *Service) CreateEvent(ctx context.Context, req EventRequest) (string, error) {
	if req.Title == "" {
		return "", s.fail("creating event", errors.New("title is required"))
	}
	start, err := s.parseTime(req.Start)
	if err != nil {
		return "", s.fail("creating event", err)
	}
	if req.Duration <= 0 {
		req.Duration = defaultDuration
	}

	evt := &domain.CalendarEvent{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Location:  req.Location,
		StartsAt:  start,
		EndsAt:    start.Add(req.Duration),
		Attendees: req.Attendees,
		CreatedAt: s.now(),
	}
	if err := s.repo.Save(ctx, evt); err != nil {
		return "", s.fail("creating event", err)
	}

	s.log.Info("Calendar event created", zap.String("event_id", evt.ID))
	out := fmt.Sprintf("Event created: %s on %s", evt.Title, start.Format("2006-01-02 15:04"))
	if n := s.sendInvites(ctx, evt); n > 0 {
		out += fmt.Sprintf("\nInvitations sent to %d attendee(s)", n)
	}
	return out, nil
}

func (s *Service) sendInvites(ctx context.Context, evt *domain.CalendarEvent) int {
	if s.invites == nil {
		return 0
	}
	sent := 0
	for _, to := range evt.Attendees {
		if !strings.Contains(to, "@") {
			continue
		}
		err := s.invites.SendTemplate(ctx, to, "event_invitation", map[string]interface{}{
			"Subject":  "Invitation: " + evt.Title,
			"Title":    evt.Title,
			"StartsAt": evt.StartsAt.Format("2006-01-02 15:04"),
			"EndsAt":   evt.EndsAt.Format("2006-01-02 15:04"),
			"Location": evt.Location,
		})
		if err != nil {
			s.log.Warn("Invitation not sent", zap.String("event_id", evt.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

func (s *Service) DeleteEvent(ctx context.Context, title string) (string, error) {
	evt, err := s.repo.FindByTitle(ctx, title)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Sprintf("No event found with title: %s", title), nil
	}
	if err != nil {
		return "", s.fail("deleting event", err)
	}
	if err := s.repo.Delete(ctx, evt.ID); err != nil {
		return "", s.fail("deleting event", err)
	}
	return fmt.Sprintf("Event deleted: %s", evt.Title), nil
}

func (s *Service) parseTime(v string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, v, s.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised start time %q", v)
}

func (s *Service) fail(op string, err error) error {
	return &domain.HandlerError{Handler: domain.HandlerCalendar, Op: op, Err: err}
}
