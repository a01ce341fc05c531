package model

import (
	"fmt"
	"time"
)

const (
	dayKeyLayout   = "02.01.2006"
	monthKeyLayout = "2006-01"
	timeLayout     = "15:04"
)

// DayKey formats t as the planner's calendar-day key (DD.MM.YYYY).
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// MonthKey formats t as the ledger's month partition key (YYYY-MM).
func MonthKey(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// PostDayKey formats t as the auto-income dedup day (YYYY-MM-DD).
func PostDayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDayTime combines a DD.MM.YYYY day key and an HH:MM time into an
// absolute instant in loc.
func ParseDayTime(day, clock string, loc *time.Location) (time.Time, error) {
	if day == "" || clock == "" {
		return time.Time{}, fmt.Errorf("task is not scheduled: day=%q time=%q", day, clock)
	}
	t, err := time.ParseInLocation(dayKeyLayout+" "+timeLayout, day+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day/time: %w", err)
	}
	return t, nil
}
