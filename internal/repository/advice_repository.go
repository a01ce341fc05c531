package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"jarvis-assistant/internal/model"
)

// AdviceRepository persists generated advice and chat exchanges.
type AdviceRepository struct {
	db *gorm.DB
}

func NewAdviceRepository(db *gorm.DB) *AdviceRepository {
	return &AdviceRepository{db: db}
}

func (r *AdviceRepository) SaveAdvice(ctx context.Context, entry *model.AdviceEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("save advice: %w", err)
	}
	return nil
}

func (r *AdviceRepository) SaveChat(ctx context.Context, entry *model.ChatEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("save chat: %w", err)
	}
	return nil
}

// LatestAdvice returns the most recent advice text for the user, or
// gorm.ErrRecordNotFound when none exists.
func (r *AdviceRepository) LatestAdvice(ctx context.Context, userID uint) (*model.AdviceEntry, error) {
	var entry model.AdviceEntry
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
