package model

import "time"

// AdviceEntry keeps a generated smart-advice text for later display.
type AdviceEntry struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index"`
	Text      string
	CreatedAt time.Time
}

// ChatEntry keeps one question/reply exchange with the assistant.
type ChatEntry struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index"`
	Question  string
	Reply     string
	CreatedAt time.Time
}
