package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"jarvis-assistant/internal/model"
)

type fakeTaskLister struct {
	byDay map[string][]model.Task
	err   error
}

func (f *fakeTaskLister) ListForDay(_ context.Context, _ uint, day string) ([]model.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byDay[day], nil
}

func TestEveningSummaryPrefersToday(t *testing.T) {
	now := time.Date(2025, 6, 5, 22, 0, 0, 0, time.UTC)
	lister := &fakeTaskLister{byDay: map[string][]model.Task{
		"05.06.2025": {{Title: "Meeting", Time: "09:00"}},
		"06.06.2025": {{Title: "Dentist", Time: "11:00"}},
	}}
	svc := NewReminderService(lister, zap.NewNop())

	n := svc.EveningSummary(context.Background(), 1, now)
	if n.Title != EveningTitleToday {
		t.Errorf("title = %q, want %q", n.Title, EveningTitleToday)
	}
	if n.Body != "• Meeting (09:00)" {
		t.Errorf("body = %q, want %q", n.Body, "• Meeting (09:00)")
	}
}

func TestEveningSummaryFallsBackToTomorrow(t *testing.T) {
	now := time.Date(2025, 6, 5, 22, 0, 0, 0, time.UTC)
	lister := &fakeTaskLister{byDay: map[string][]model.Task{
		"06.06.2025": {
			{Title: "Dentist", Time: "11:00"},
			{Title: "Gym", Time: "18:30"},
		},
	}}
	svc := NewReminderService(lister, zap.NewNop())

	n := svc.EveningSummary(context.Background(), 1, now)
	if n.Title != EveningTitleTomorrow {
		t.Errorf("title = %q, want %q", n.Title, EveningTitleTomorrow)
	}
	want := "• Dentist (11:00)\n• Gym (18:30)"
	if n.Body != want {
		t.Errorf("body = %q, want %q", n.Body, want)
	}
}

func TestEveningSummaryEmptyBothDays(t *testing.T) {
	now := time.Date(2025, 6, 5, 22, 0, 0, 0, time.UTC)
	svc := NewReminderService(&fakeTaskLister{byDay: map[string][]model.Task{}}, zap.NewNop())

	n := svc.EveningSummary(context.Background(), 1, now)
	if n.Title != EveningTitleToday {
		t.Errorf("title = %q, want %q", n.Title, EveningTitleToday)
	}
	if n.Body != NoTasksFound {
		t.Errorf("body = %q, want %q", n.Body, NoTasksFound)
	}
}

func TestEveningSummaryQueryErrorDegrades(t *testing.T) {
	now := time.Date(2025, 6, 5, 22, 0, 0, 0, time.UTC)
	svc := NewReminderService(&fakeTaskLister{err: errors.New("db locked")}, zap.NewNop())

	n := svc.EveningSummary(context.Background(), 1, now)
	if n.Body != NoTasksFound {
		t.Errorf("body = %q, want %q", n.Body, NoTasksFound)
	}
}

func TestMorningSummaryNoFallback(t *testing.T) {
	now := time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC)
	// Tomorrow has tasks, today does not: morning must not borrow them.
	lister := &fakeTaskLister{byDay: map[string][]model.Task{
		"06.06.2025": {{Title: "Dentist", Time: "11:00"}},
	}}
	svc := NewReminderService(lister, zap.NewNop())

	n := svc.MorningSummary(context.Background(), 1, now, "")
	if n.Title != MorningTitle {
		t.Errorf("title = %q, want %q", n.Title, MorningTitle)
	}
	if n.Body != NoTasksToday {
		t.Errorf("body = %q, want %q", n.Body, NoTasksToday)
	}
}

func TestMorningSummaryWithWeather(t *testing.T) {
	now := time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC)
	lister := &fakeTaskLister{byDay: map[string][]model.Task{
		"05.06.2025": {{Title: "Meeting", Time: "09:00"}},
	}}
	svc := NewReminderService(lister, zap.NewNop())

	n := svc.MorningSummary(context.Background(), 1, now, "21.5°C")
	want := "• Meeting (09:00)\n\n🌤 Ауа райы: 21.5°C"
	if n.Body != want {
		t.Errorf("body = %q, want %q", n.Body, want)
	}
}

func TestMorningSummaryWeatherOmittedWhenUnknown(t *testing.T) {
	now := time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC)
	lister := &fakeTaskLister{byDay: map[string][]model.Task{
		"05.06.2025": {{Title: "Meeting", Time: "09:00"}},
	}}
	svc := NewReminderService(lister, zap.NewNop())

	n := svc.MorningSummary(context.Background(), 1, now, "")
	if n.Body != "• Meeting (09:00)" {
		t.Errorf("body = %q, want %q", n.Body, "• Meeting (09:00)")
	}
}

func TestHourBefore(t *testing.T) {
	svc := NewReminderService(&fakeTaskLister{}, zap.NewNop())

	due := time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC)
	n, fireAt := svc.HourBefore(due, "Meeting", "Prepare the slides.")

	if n.Title != "⏰ 1 сағаттан кейін: Meeting" {
		t.Errorf("title = %q", n.Title)
	}
	if n.Body != "Prepare the slides." {
		t.Errorf("body = %q", n.Body)
	}
	want := time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC)
	if !fireAt.Equal(want) {
		t.Errorf("fireAt = %v, want %v", fireAt, want)
	}
}

func TestHourBeforeCrossesMidnight(t *testing.T) {
	svc := NewReminderService(&fakeTaskLister{}, zap.NewNop())

	due := time.Date(2025, 6, 5, 0, 30, 0, 0, time.UTC)
	_, fireAt := svc.HourBefore(due, "Flight", "")

	want := time.Date(2025, 6, 4, 23, 30, 0, 0, time.UTC)
	if !fireAt.Equal(want) {
		t.Errorf("fireAt = %v, want %v", fireAt, want)
	}
}

func TestWeatherAlertPassesMessageThrough(t *testing.T) {
	svc := NewReminderService(&fakeTaskLister{}, zap.NewNop())

	n := svc.WeatherAlert("Бүгін суық! Жылы киінуді ұмытпаңыз.")
	if n.Title != WeatherAlertTitle {
		t.Errorf("title = %q, want %q", n.Title, WeatherAlertTitle)
	}
	if n.Body != "Бүгін суық! Жылы киінуді ұмытпаңыз." {
		t.Errorf("body = %q", n.Body)
	}
}
