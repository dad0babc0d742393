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

type ContactRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewContactRepository(db *gorm.DB, log *zap.Logger) ports.ContactRepository {
	return &ContactRepository{db: db, log: log}
}

func (r *ContactRepository) Save(ctx context.Context, contact *domain.Contact) error {
	defer observe(time.Now())
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Save(contact).Error; err != nil {
		r.log.Error("Failed to save contact", zap.Error(err))
		return err
	}
	return nil
}

func (r *ContactRepository) FindByName(ctx context.Context, name string) (*domain.Contact, error) {
	defer observe(time.Now())
	var contact domain.Contact
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

// Search matches query as a substring of the name or email.
func (r *ContactRepository) Search(ctx context.Context, query string) ([]domain.Contact, error) {
	defer observe(time.Now())
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"

	var contacts []domain.Contact
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern).
		Order("name").
		Find(&contacts).Error
	return contacts, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
