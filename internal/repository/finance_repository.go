package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jarvis-assistant/internal/model"
)

// FinanceRepository handles ledger records and monthly income configs.
type FinanceRepository struct {
	db *gorm.DB
}

func NewFinanceRepository(db *gorm.DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

func (r *FinanceRepository) CreateRecord(ctx context.Context, record *model.FinanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("create finance record: %w", err)
	}
	return nil
}

// InsertAutoIncome inserts an auto-income record unless one with the
// same dedup key already exists. The insert is conditional at the
// database level, so concurrent payday checks cannot double-post.
// Returns true when a row was actually inserted.
func (r *FinanceRepository) InsertAutoIncome(ctx context.Context, record *model.FinanceRecord) (bool, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedup_key"}},
			DoNothing: true,
		}).
		Create(record)
	if res.Error != nil {
		return false, fmt.Errorf("insert auto income: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListByMonth returns the user's ledger entries for the month key,
// optionally narrowed to one record type, newest first.
func (r *FinanceRepository) ListByMonth(ctx context.Context, userID uint, month, recordType string) ([]model.FinanceRecord, error) {
	q := r.db.WithContext(ctx).Where("user_id = ? AND month = ?", userID, month)
	if recordType != "" {
		q = q.Where("type = ?", recordType)
	}
	var records []model.FinanceRecord
	if err := q.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *FinanceRepository) DeleteRecord(ctx context.Context, userID uint, recordID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, recordID).
		Delete(&model.FinanceRecord{}).Error; err != nil {
		return fmt.Errorf("delete finance record: %w", err)
	}
	return nil
}

// UpsertMonthlyIncome creates or replaces the income declaration for
// (user, month).
func (r *FinanceRepository) UpsertMonthlyIncome(ctx context.Context, income *model.MonthlyIncome) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "month"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "payday", "updated_at"}),
		}).
		Create(income).Error
	if err != nil {
		return fmt.Errorf("upsert monthly income: %w", err)
	}
	return nil
}

func (r *FinanceRepository) GetMonthlyIncome(ctx context.Context, userID uint, month string) (*model.MonthlyIncome, error) {
	var income model.MonthlyIncome
	if err := r.db.WithContext(ctx).Where("user_id = ? AND month = ?", userID, month).First(&income).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("find monthly income: %w", err)
	}
	return &income, nil
}
