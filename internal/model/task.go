package model

import "time"

// Task represents a single scheduled item in the planner.
// Day and Time are stored the way the planner renders them: Day as
// DD.MM.YYYY, Time as HH:MM (24-hour).
type Task struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      uint   `gorm:"index"`
	Title       string
	Description string
	Day         string `gorm:"index"`
	Time        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DueAt resolves the task's calendar day and time-of-day into an
// absolute instant in loc. Returns an error when either part is
// missing or malformed.
func (t Task) DueAt(loc *time.Location) (time.Time, error) {
	return ParseDayTime(t.Day, t.Time, loc)
}
