package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Finance record types.
const (
	RecordIncome     = "income"
	RecordAutoIncome = "auto-income"
	RecordExpense    = "expense"
)

// AutoIncomeTitle is the fixed label attached to automatically posted
// monthly income records.
const AutoIncomeTitle = "Айлық табыс"

// FinanceRecord is a single ledger entry.
//
// DedupKey is set only for auto-income rows ("<userID>:<YYYY-MM-DD>")
// and carries a unique index, so two concurrent payday evaluations
// cannot both insert a record for the same day. Manual entries leave
// it NULL, which SQLite excludes from the uniqueness check.
type FinanceRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    uint   `gorm:"index"`
	Type      string `gorm:"index"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2)"`
	Title     string
	Month     string  `gorm:"index"`
	DedupKey  *string `gorm:"uniqueIndex"`
	CreatedAt time.Time
}

// IsIncome reports whether the record counts toward the income total.
func (r FinanceRecord) IsIncome() bool {
	return r.Type == RecordIncome || r.Type == RecordAutoIncome
}

// MonthlyIncome is a user's recurring income declaration for one month.
type MonthlyIncome struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index:idx_income_user_month,unique"`
	Month     string `gorm:"index:idx_income_user_month,unique"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2)"`
	Payday    int
	CreatedAt time.Time
	UpdatedAt time.Time
}
