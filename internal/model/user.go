package model

import "time"

// User stores Telegram user metadata plus the location used for
// weather-dependent advice.
type User struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	Username   string
	Latitude   *float64
	Longitude  *float64
	City       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasLocation reports whether the user has shared coordinates.
func (u User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}
