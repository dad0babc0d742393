package expense

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

const role = `You are a Financial Analysis Agent. Your role is to answer questions about the user's
expenses, credit card transactions and spending patterns. Always report amounts exactly.`

const (
	searchTopK       = 5
	recentLimit      = 10
	sourceCreditCard = "credit_card"
)

type Service struct {
	repo     ports.ExpenseRepository
	embedder ports.Embedder
	now      func() time.Time
	log      *zap.Logger
}

func NewService(repo ports.ExpenseRepository, embedder ports.Embedder, log *zap.Logger) *Service {
	return &Service{repo: repo, embedder: embedder, now: time.Now, log: log}
}

func NewHandler(model ports.ChatModel, svc *Service, log *zap.Logger) *agent.Agent {
	return agent.New(domain.HandlerExpense, role, model, []agent.Tool{
		{
			Name:        "query_expenses",
			Description: `Find expenses similar to a free-text description. Input: {"query": "..."}`,
			Run: func(ctx context.Context, in agent.Input) (string, error) {
				return svc.QueryExpenses(ctx, in.String("query"))
			},
		},
		{
			Name:        "get_credit_card_transactions",
			Description: `List the most recent credit card transactions. Input: {}`,
			Run: func(ctx context.Context, in agent.Input) (string, error) {
				return svc.RecentTransactions(ctx)
			},
		},
		{
			Name:        "calculate_spending",
			Description: `Total spending, optionally for a category and a period such as "this month", "last month", "this week", "today", "this year" or "last 30 days". Input: {"category": "...", "time_period": "..."}`,
			Run: func(ctx context.Context, in agent.Input) (string, error) {
				return svc.CalculateSpending(ctx, in.String("category"), in.String("time_period"))
			},
		},
		{
			Name:        "record_expense",
			Description: `Record a new expense. Input: {"description": "...", "amount": 12.5, "category": "...", "date": "2006-01-02", "source": "credit_card"}`,
			Run: func(ctx context.Context, in agent.Input) (string, error) {
				amount, ok := in.Float("amount")
				if !ok {
					return "", svc.fail("recording expense", errors.New("amount is required"))
				}
				return svc.RecordExpense(ctx, in.String("description"), amount, in.String("category"), in.String("date"), in.String("source"))
			},
		},
	}, log)
}

// QueryExpenses ranks stored expenses by cosine similarity to query.
func (s *Service) QueryExpenses(ctx context.Context, query string) (string, error) {
	vec, err := s.embedder.GetEmbeddings(ctx, query)
	if err != nil {
		return "", s.fail("querying expenses", err)
	}
	candidates, err := s.repo.WithEmbeddings(ctx)
	if err != nil {
		return "", s.fail("querying expenses", err)
	}

	top := TopK(vec, candidates, searchTopK)
	if len(top) == 0 {
		return "No matching expenses found.", nil
	}

	lines := make([]string, 0, len(top))
	for _, e := range top {
		lines = append(lines, e.Line())
	}
	return "Matching expenses:\n" + strings.Join(lines, "\n"), nil
}

func (s *Service) RecentTransactions(ctx context.Context) (string, error) {
	txs, err := s.repo.Recent(ctx, sourceCreditCard, recentLimit)
	if err != nil {
		return "", s.fail("retrieving transactions", err)
	}
	if len(txs) == 0 {
		return "No recent transactions found.", nil
	}

	lines := make([]string, 0, len(txs))
	for _, e := range txs {
		lines = append(lines, e.Line())
	}
	return "Recent transactions:\n" + strings.Join(lines, "\n"), nil
}

func (s *Service) CalculateSpending(ctx context.Context, category, period string) (string, error) {
	filter := domain.SpendingFilter{Category: category}
	if period != "" {
		from, to, ok := PeriodRange(period, s.now())
		if !ok {
			return "", s.fail("calculating spending", fmt.Errorf("unsupported time period %q", period))
		}
		filter.From, filter.To = from, to
	}

	total, err := s.repo.SumSpending(ctx, filter)
	if err != nil {
		return "", s.fail("calculating spending", err)
	}

	var b strings.Builder
	b.WriteString("Total spending")
	if category != "" {
		b.WriteString(" on " + category)
	}
	if period != "" {
		b.WriteString(" for " + period)
	}
	fmt.Fprintf(&b, ": $%.2f", total)
	return b.String(), nil
}

func (s *Service) RecordExpense(ctx context.Context, description string, amount float64, category, date, source string) (string, error) {
	if description == "" {
		return "", s.fail("recording expense", errors.New("description is required"))
	}
	when := s.now()
	if date != "" {
		d, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return "", s.fail("recording expense", err)
		}
		when = d
	}
	if source == "" {
		source = sourceCreditCard
	}

	vec, err := s.embedder.GetEmbeddings(ctx, fmt.Sprintf("%s %s", description, category))
	if err != nil {
		// stored without a vector; it still counts towards totals
		s.log.Warn("Embedding failed for expense", zap.Error(err))
		vec = nil
	}

	e := &domain.Expense{
		ID:          uuid.NewString(),
		Description: description,
		Amount:      amount,
		Category:    category,
		Date:        when,
		Source:      source,
		Embedding:   vec,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Save(ctx, e); err != nil {
		return "", s.fail("recording expense", err)
	}
	return fmt.Sprintf("Expense recorded: %s ($%.2f)", description, amount), nil
}

func (s *Service) fail(op string, err error) error {
	return &domain.HandlerError{Handler: domain.HandlerExpense, Op: op, Err: err}
}
