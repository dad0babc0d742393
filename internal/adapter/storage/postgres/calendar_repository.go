package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/ports"
)

type CalendarRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCalendarRepository(db *gorm.DB, log *zap.Logger) ports.CalendarRepository {
	return &CalendarRepository{db: db, log: log}
}

func (r *CalendarRepository) Save(ctx context.Context, event *domain.CalendarEvent) error {
	defer observe(time.Now())
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		r.log.Error("Failed to save calendar event", zap.Error(err))
		return err
	}
	return nil
}

// Between returns events starting in [from, to), earliest first.
func (r *CalendarRepository) Between(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error) {
	defer observe(time.Now())
	var events []domain.CalendarEvent
	err := r.db.WithContext(ctx).
		Where("starts_at >= ? AND starts_at < ?", from, to).
		Order("starts_at").
		Find(&events).Error
	return events, err
}

// FindByTitle returns the next matching event, or the latest past one.
func (r *CalendarRepository) FindByTitle(ctx context.Context, title string) (*domain.CalendarEvent, error) {
	defer observe(time.Now())
	var event domain.CalendarEvent
	err := r.db.WithContext(ctx).
		Where("LOWER(title) = ?", strings.ToLower(strings.TrimSpace(title))).
		Order("starts_at < NOW()").
		Order("ABS(EXTRACT(EPOCH FROM (starts_at - NOW())))").
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *CalendarRepository) Delete(ctx context.Context, id string) error {
	defer observe(time.Now())
	result := r.db.WithContext(ctx).Delete(&domain.CalendarEvent{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
