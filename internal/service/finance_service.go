package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jarvis-assistant/internal/model"
)

const financeTipFallback = "AI жауап таба алмады."

// FinanceStore is the slice of the ledger the finance service needs.
type FinanceStore interface {
	GetMonthlyIncome(ctx context.Context, userID uint, month string) (*model.MonthlyIncome, error)
	UpsertMonthlyIncome(ctx context.Context, income *model.MonthlyIncome) error
	InsertAutoIncome(ctx context.Context, record *model.FinanceRecord) (bool, error)
	CreateRecord(ctx context.Context, record *model.FinanceRecord) error
	ListByMonth(ctx context.Context, userID uint, month, recordType string) ([]model.FinanceRecord, error)
	DeleteRecord(ctx context.Context, userID uint, recordID string) error
}

// FinanceService owns the ledger: manual entries, monthly aggregates,
// and the automatic payday income posting.
type FinanceService struct {
	store FinanceStore
	ai    Completer
	log   *zap.Logger
}

func NewFinanceService(store FinanceStore, ai Completer, log *zap.Logger) *FinanceService {
	return &FinanceService{store: store, ai: ai, log: log}
}

// SetupMonthlyIncome declares (or replaces) the recurring income for
// the month containing now. Payday is restricted to 1–28 so every
// month has the day.
func (s *FinanceService) SetupMonthlyIncome(ctx context.Context, userID uint, amount decimal.Decimal, payday int, now time.Time) error {
	if amount.IsNegative() || amount.IsZero() {
		return fmt.Errorf("amount must be positive")
	}
	if payday < 1 || payday > 28 {
		return fmt.Errorf("payday must be between 1 and 28")
	}
	return s.store.UpsertMonthlyIncome(ctx, &model.MonthlyIncome{
		UserID: userID,
		Month:  model.MonthKey(now),
		Amount: amount,
		Payday: payday,
	})
}

// CheckAndPostMonthlyIncome runs the payday evaluation for one user:
// no config this month, or payday not today, or already posted today,
// are all terminal no-ops. Otherwise one auto-income record is
// inserted. The insert is conditional on a per-day dedup key, so the
// whole sequence is safe to run any number of times per day, including
// concurrently. Returns true when a record was posted.
func (s *FinanceService) CheckAndPostMonthlyIncome(ctx context.Context, userID uint, now time.Time) (bool, error) {
	month := model.MonthKey(now)

	income, err := s.store.GetMonthlyIncome(ctx, userID, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if income.Payday != now.Day() {
		return false, nil
	}

	posted, err := s.store.ListByMonth(ctx, userID, month, model.RecordAutoIncome)
	if err != nil {
		return false, err
	}
	for _, rec := range posted {
		if sameDay(rec.CreatedAt, now) {
			return false, nil
		}
	}

	dedup := fmt.Sprintf("%d:%s", userID, model.PostDayKey(now))
	inserted, err := s.store.InsertAutoIncome(ctx, &model.FinanceRecord{
		UserID:   userID,
		Type:     model.RecordAutoIncome,
		Amount:   income.Amount,
		Title:    model.AutoIncomeTitle,
		Month:    month,
		DedupKey: &dedup,
	})
	if err != nil {
		return false, err
	}
	if inserted {
		s.log.Info("auto income posted",
			zap.Uint("user", userID),
			zap.String("month", month),
			zap.String("amount", income.Amount.String()),
		)
	}
	return inserted, nil
}

// AddIncome records a manual income entry.
func (s *FinanceService) AddIncome(ctx context.Context, userID uint, amount decimal.Decimal, note string, now time.Time) error {
	return s.addRecord(ctx, userID, model.RecordIncome, amount, note, now)
}

// AddExpense records a manual expense entry.
func (s *FinanceService) AddExpense(ctx context.Context, userID uint, amount decimal.Decimal, title string, now time.Time) error {
	return s.addRecord(ctx, userID, model.RecordExpense, amount, title, now)
}

func (s *FinanceService) addRecord(ctx context.Context, userID uint, recordType string, amount decimal.Decimal, title string, now time.Time) error {
	if amount.IsNegative() || amount.IsZero() {
		return fmt.Errorf("amount must be positive")
	}
	return s.store.CreateRecord(ctx, &model.FinanceRecord{
		UserID: userID,
		Type:   recordType,
		Amount: amount,
		Title:  title,
		Month:  model.MonthKey(now),
	})
}

// DeleteRecord removes one of the user's ledger entries.
func (s *FinanceService) DeleteRecord(ctx context.Context, userID uint, recordID string) error {
	return s.store.DeleteRecord(ctx, userID, recordID)
}

// MonthSummary aggregates one month of the ledger.
type MonthSummary struct {
	Month        string
	IncomeTotal  decimal.Decimal
	ExpenseTotal decimal.Decimal
	Balance      decimal.Decimal
	IncomeCount  int
	ExpenseCount int
	Records      []model.FinanceRecord
}

// Summarize computes totals for the month containing now. Auto-income
// counts as income.
func (s *FinanceService) Summarize(ctx context.Context, userID uint, now time.Time) (MonthSummary, error) {
	month := model.MonthKey(now)
	records, err := s.store.ListByMonth(ctx, userID, month, "")
	if err != nil {
		return MonthSummary{}, fmt.Errorf("list month records: %w", err)
	}

	sum := MonthSummary{Month: month, Records: records}
	for _, rec := range records {
		if rec.IsIncome() {
			sum.IncomeTotal = sum.IncomeTotal.Add(rec.Amount)
			sum.IncomeCount++
		} else {
			sum.ExpenseTotal = sum.ExpenseTotal.Add(rec.Amount)
			sum.ExpenseCount++
		}
	}
	sum.Balance = sum.IncomeTotal.Sub(sum.ExpenseTotal)
	return sum, nil
}

// MonthlyTip asks the assistant for a short financial tip based on the
// month's records. AI failure degrades to a fixed fallback.
func (s *FinanceService) MonthlyTip(ctx context.Context, sum MonthSummary) string {
	var parts []string
	for _, rec := range sum.Records {
		title := rec.Title
		if title == "" {
			title = model.AutoIncomeTitle
		}
		sign := "+"
		if !rec.IsIncome() {
			sign = "-"
		}
		parts = append(parts, fmt.Sprintf("%s %s%s₸", title, sign, rec.Amount.String()))
	}

	prompt := fmt.Sprintf(
		"This month, I earned %s₸ and spent %s₸. Here are the records: %s. Please give me a short and friendly financial tip.",
		sum.IncomeTotal.String(), sum.ExpenseTotal.String(), strings.Join(parts, ", "),
	)

	tip, err := s.ai.Complete(ctx, "You are a helpful financial assistant. Keep advice friendly and short.", prompt)
	if err != nil || tip == "" {
		if err != nil {
			s.log.Warn("monthly tip failed", zap.Error(err))
		}
		return financeTipFallback
	}
	return tip
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
