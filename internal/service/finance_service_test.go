package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jarvis-assistant/internal/model"
)

type fakeFinanceStore struct {
	incomes map[string]*model.MonthlyIncome // keyed by month
	records []model.FinanceRecord
	dedup   map[string]bool
}

func newFakeFinanceStore() *fakeFinanceStore {
	return &fakeFinanceStore{
		incomes: make(map[string]*model.MonthlyIncome),
		dedup:   make(map[string]bool),
	}
}

func (f *fakeFinanceStore) GetMonthlyIncome(_ context.Context, _ uint, month string) (*model.MonthlyIncome, error) {
	income, ok := f.incomes[month]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return income, nil
}

func (f *fakeFinanceStore) UpsertMonthlyIncome(_ context.Context, income *model.MonthlyIncome) error {
	f.incomes[income.Month] = income
	return nil
}

func (f *fakeFinanceStore) InsertAutoIncome(_ context.Context, record *model.FinanceRecord) (bool, error) {
	if record.DedupKey != nil && f.dedup[*record.DedupKey] {
		return false, nil
	}
	if record.DedupKey != nil {
		f.dedup[*record.DedupKey] = true
	}
	f.records = append(f.records, *record)
	return true, nil
}

func (f *fakeFinanceStore) CreateRecord(_ context.Context, record *model.FinanceRecord) error {
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeFinanceStore) DeleteRecord(_ context.Context, userID uint, recordID string) error {
	kept := f.records[:0]
	for _, rec := range f.records {
		if rec.UserID == userID && rec.ID == recordID {
			continue
		}
		kept = append(kept, rec)
	}
	f.records = kept
	return nil
}

func (f *fakeFinanceStore) ListByMonth(_ context.Context, _ uint, month, recordType string) ([]model.FinanceRecord, error) {
	var out []model.FinanceRecord
	for _, rec := range f.records {
		if rec.Month != month {
			continue
		}
		if recordType != "" && rec.Type != recordType {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

type fixedCompleter struct {
	reply string
	err   error
}

func (f fixedCompleter) Complete(context.Context, string, string) (string, error) {
	return f.reply, f.err
}

func TestCheckAndPostMonthlyIncomePostsOnPayday(t *testing.T) {
	store := newFakeFinanceStore()
	svc := NewFinanceService(store, fixedCompleter{}, zap.NewNop())

	now := time.Date(2025, 6, 5, 0, 5, 0, 0, time.UTC)
	if err := svc.SetupMonthlyIncome(context.Background(), 1, decimal.NewFromInt(300000), 5, now); err != nil {
		t.Fatalf("SetupMonthlyIncome() error = %v", err)
	}

	posted, err := svc.CheckAndPostMonthlyIncome(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("CheckAndPostMonthlyIncome() error = %v", err)
	}
	if !posted {
		t.Fatal("expected income to be posted on payday")
	}
	if len(store.records) != 1 {
		t.Fatalf("records = %d, want 1", len(store.records))
	}

	rec := store.records[0]
	if rec.Type != model.RecordAutoIncome {
		t.Errorf("type = %q, want %q", rec.Type, model.RecordAutoIncome)
	}
	if rec.Title != model.AutoIncomeTitle {
		t.Errorf("title = %q, want %q", rec.Title, model.AutoIncomeTitle)
	}
	if !rec.Amount.Equal(decimal.NewFromInt(300000)) {
		t.Errorf("amount = %s, want 300000", rec.Amount.String())
	}
	if rec.DedupKey == nil || *rec.DedupKey != "1:2025-06-05" {
		t.Errorf("dedup key = %v, want 1:2025-06-05", rec.DedupKey)
	}

	// Second run on the same day is a no-op.
	posted, err = svc.CheckAndPostMonthlyIncome(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("second check error = %v", err)
	}
	if posted {
		t.Error("expected second check to be a no-op")
	}
	if len(store.records) != 1 {
		t.Errorf("records = %d after second check, want 1", len(store.records))
	}
}

func TestCheckAndPostMonthlyIncomeWrongDay(t *testing.T) {
	store := newFakeFinanceStore()
	svc := NewFinanceService(store, fixedCompleter{}, zap.NewNop())

	now := time.Date(2025, 6, 4, 0, 5, 0, 0, time.UTC)
	if err := svc.SetupMonthlyIncome(context.Background(), 1, decimal.NewFromInt(300000), 5, now); err != nil {
		t.Fatalf("SetupMonthlyIncome() error = %v", err)
	}

	posted, err := svc.CheckAndPostMonthlyIncome(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("CheckAndPostMonthlyIncome() error = %v", err)
	}
	if posted || len(store.records) != 0 {
		t.Error("expected no posting before payday")
	}
}

func TestCheckAndPostMonthlyIncomeNoConfig(t *testing.T) {
	svc := NewFinanceService(newFakeFinanceStore(), fixedCompleter{}, zap.NewNop())

	posted, err := svc.CheckAndPostMonthlyIncome(context.Background(), 1, time.Date(2025, 6, 5, 0, 5, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CheckAndPostMonthlyIncome() error = %v", err)
	}
	if posted {
		t.Error("expected no posting without a configured income")
	}
}

func TestSetupMonthlyIncomeValidation(t *testing.T) {
	svc := NewFinanceService(newFakeFinanceStore(), fixedCompleter{}, zap.NewNop())
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := svc.SetupMonthlyIncome(context.Background(), 1, decimal.Zero, 5, now); err == nil {
		t.Error("expected error for zero amount")
	}
	if err := svc.SetupMonthlyIncome(context.Background(), 1, decimal.NewFromInt(100), 0, now); err == nil {
		t.Error("expected error for payday 0")
	}
	if err := svc.SetupMonthlyIncome(context.Background(), 1, decimal.NewFromInt(100), 29, now); err == nil {
		t.Error("expected error for payday 29")
	}
}

func TestSummarize(t *testing.T) {
	store := newFakeFinanceStore()
	svc := NewFinanceService(store, fixedCompleter{}, zap.NewNop())

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	if err := svc.AddIncome(ctx, 1, decimal.NewFromInt(50000), "Фриланс", now); err != nil {
		t.Fatalf("AddIncome() error = %v", err)
	}
	if err := svc.AddExpense(ctx, 1, decimal.NewFromInt(12000), "Азық-түлік", now); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}
	if err := svc.AddExpense(ctx, 1, decimal.NewFromInt(3000), "Кофе", now); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	sum, err := svc.Summarize(ctx, 1, now)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if sum.Month != "2025-06" {
		t.Errorf("month = %q, want 2025-06", sum.Month)
	}
	if !sum.IncomeTotal.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("income total = %s, want 50000", sum.IncomeTotal.String())
	}
	if !sum.ExpenseTotal.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("expense total = %s, want 15000", sum.ExpenseTotal.String())
	}
	if !sum.Balance.Equal(decimal.NewFromInt(35000)) {
		t.Errorf("balance = %s, want 35000", sum.Balance.String())
	}
	if sum.IncomeCount != 1 || sum.ExpenseCount != 2 {
		t.Errorf("counts = %d/%d, want 1/2", sum.IncomeCount, sum.ExpenseCount)
	}
}

func TestAddRecordRejectsNonPositive(t *testing.T) {
	svc := NewFinanceService(newFakeFinanceStore(), fixedCompleter{}, zap.NewNop())
	now := time.Now()

	if err := svc.AddExpense(context.Background(), 1, decimal.NewFromInt(-5), "x", now); err == nil {
		t.Error("expected error for negative amount")
	}
	if err := svc.AddIncome(context.Background(), 1, decimal.Zero, "x", now); err == nil {
		t.Error("expected error for zero amount")
	}
}

func TestMonthlyTipFallsBack(t *testing.T) {
	svc := NewFinanceService(newFakeFinanceStore(), fixedCompleter{err: errors.New("upstream down")}, zap.NewNop())

	tip := svc.MonthlyTip(context.Background(), MonthSummary{})
	if tip != financeTipFallback {
		t.Errorf("tip = %q, want fallback", tip)
	}

	svc = NewFinanceService(newFakeFinanceStore(), fixedCompleter{reply: ""}, zap.NewNop())
	if tip := svc.MonthlyTip(context.Background(), MonthSummary{}); tip != financeTipFallback {
		t.Errorf("tip = %q, want fallback for empty reply", tip)
	}
}

func TestMonthlyTipUsesCompletion(t *testing.T) {
	svc := NewFinanceService(newFakeFinanceStore(), fixedCompleter{reply: "Аз жұмсаңыз!"}, zap.NewNop())

	if tip := svc.MonthlyTip(context.Background(), MonthSummary{}); tip != "Аз жұмсаңыз!" {
		t.Errorf("tip = %q", tip)
	}
}
