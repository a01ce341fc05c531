package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"jarvis-assistant/internal/model"
	"jarvis-assistant/internal/notify"
)

// Notification texts. The empty-state body is a fixed string, never "".
const (
	EveningTitleToday    = "📌 Бүгінгі тапсырмалар"
	EveningTitleTomorrow = "📌 Ертеңгі тапсырмалар"
	MorningTitle         = "🌞 Бүгінгі тапсырмалар мен кеңестер"
	WeatherAlertTitle    = "🌦 Ауа райы ескертуі"
	NoTasksFound         = "Тапсырмалар табылмады"
	NoTasksToday         = "Бүгінге тапсырмалар жоқ"
)

// TaskLister is the slice of the task store the reminder engine needs.
type TaskLister interface {
	ListForDay(ctx context.Context, userID uint, day string) ([]model.Task, error)
}

// ReminderService decides what to notify at each trigger point and
// composes the message. It only reads tasks; dispatch is the caller's
// concern.
type ReminderService struct {
	tasks TaskLister
	log   *zap.Logger
}

func NewReminderService(tasks TaskLister, log *zap.Logger) *ReminderService {
	return &ReminderService{tasks: tasks, log: log}
}

// EveningSummary picks the task set for the evening trigger: today's
// tasks when any exist, otherwise tomorrow's. The two days are never
// merged. A failed query degrades to an empty day.
func (s *ReminderService) EveningSummary(ctx context.Context, userID uint, now time.Time) notify.Notification {
	today := model.DayKey(now)
	tomorrow := model.DayKey(now.AddDate(0, 0, 1))

	todayTasks := s.listForDay(ctx, userID, today)
	if len(todayTasks) > 0 {
		return notify.Notification{Title: EveningTitleToday, Body: formatTaskLines(todayTasks)}
	}

	nextTasks := s.listForDay(ctx, userID, tomorrow)
	if len(nextTasks) > 0 {
		return notify.Notification{Title: EveningTitleTomorrow, Body: formatTaskLines(nextTasks)}
	}
	return notify.Notification{Title: EveningTitleToday, Body: NoTasksFound}
}

// MorningSummary composes the morning message from today's tasks only
// (no fallback to tomorrow) plus the weather line when one is known.
func (s *ReminderService) MorningSummary(ctx context.Context, userID uint, now time.Time, weather string) notify.Notification {
	tasks := s.listForDay(ctx, userID, model.DayKey(now))

	body := NoTasksToday
	if len(tasks) > 0 {
		body = formatTaskLines(tasks)
	}
	if weather != "" {
		body += "\n\n🌤 Ауа райы: " + weather
	}
	return notify.Notification{Title: MorningTitle, Body: body}
}

// HourBefore returns the one-shot reminder for a task and the instant
// it must fire: exactly 60 minutes before the due instant, day
// boundaries included.
func (s *ReminderService) HourBefore(due time.Time, title, tip string) (notify.Notification, time.Time) {
	n := notify.Notification{
		Title: fmt.Sprintf("⏰ 1 сағаттан кейін: %s", title),
		Body:  tip,
	}
	return n, due.Add(-time.Hour)
}

// WeatherAlert wraps an immediate weather warning; the message passes
// through untouched.
func (s *ReminderService) WeatherAlert(message string) notify.Notification {
	return notify.Notification{Title: WeatherAlertTitle, Body: message}
}

func (s *ReminderService) listForDay(ctx context.Context, userID uint, day string) []model.Task {
	tasks, err := s.tasks.ListForDay(ctx, userID, day)
	if err != nil {
		s.log.Warn("list tasks for day failed", zap.Uint("user", userID), zap.String("day", day), zap.Error(err))
		return nil
	}
	return tasks
}

// formatTaskLines renders one line per task: "• <title> (<time>)".
func formatTaskLines(tasks []model.Task) string {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("• %s (%s)", t.Title, t.Time))
	}
	return strings.Join(lines, "\n")
}
