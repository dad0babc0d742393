package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/ports"
)

type ExpenseRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewExpenseRepository(db *gorm.DB, log *zap.Logger) ports.ExpenseRepository {
	return &ExpenseRepository{db: db, log: log}
}

func (r *ExpenseRepository) Save(ctx context.Context, expense *domain.Expense) error {
	defer observe(time.Now())
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Save(expense).Error; err != nil {
		r.log.Error("Failed to save expense", zap.Error(err))
		return err
	}
	return nil
}

// Recent returns the newest expenses first. An empty source matches all.
func (r *ExpenseRepository) Recent(ctx context.Context, source string, limit int) ([]domain.Expense, error) {
	defer observe(time.Now())
	query := r.db.WithContext(ctx).Order("date desc")
	if source != "" {
		query = query.Where("source = ?", source)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var expenses []domain.Expense
	err := query.Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) WithEmbeddings(ctx context.Context) ([]domain.Expense, error) {
	defer observe(time.Now())
	var expenses []domain.Expense
	err := r.db.WithContext(ctx).
		Where("embedding IS NOT NULL AND jsonb_typeof(embedding) = 'array' AND jsonb_array_length(embedding) > 0").
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) SumSpending(ctx context.Context, filter domain.SpendingFilter) (float64, error) {
	defer observe(time.Now())
	query := r.db.WithContext(ctx).Model(&domain.Expense{})
	query = applySpendingFilter(query, filter)

	var total float64
	err := query.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}

func applySpendingFilter(query *gorm.DB, filter domain.SpendingFilter) *gorm.DB {
	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if !filter.From.IsZero() {
		query = query.Where("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("date < ?", filter.To)
	}
	return query
}
