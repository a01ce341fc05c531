package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"jarvis-assistant/internal/model"
	"jarvis-assistant/internal/repository"
)

const (
	adviceFallback   = "Кеңес алу мүмкін болмады 😢"
	adviceNoUpcoming = "Алдағы тапсырма табылмады."

	clothingWarm   = "It's warm today. Light clothes and sunglasses are fine."
	clothingChilly = "Wear a light jacket. It's a bit chilly."
	clothingCold   = "It's cold. Wear warm clothes like coats and scarves."
)

// AdviceService generates the "smart advice" card: a suggestion for
// the next upcoming task, shaped by current weather.
type AdviceService struct {
	taskRepo   *repository.TaskRepository
	adviceRepo *repository.AdviceRepository
	ai         Completer
	translator Translator
	log        *zap.Logger
	loc        *time.Location
}

func NewAdviceService(taskRepo *repository.TaskRepository, adviceRepo *repository.AdviceRepository, ai Completer, translator Translator, log *zap.Logger, loc *time.Location) *AdviceService {
	return &AdviceService{
		taskRepo:   taskRepo,
		adviceRepo: adviceRepo,
		ai:         ai,
		translator: translator,
		log:        log,
		loc:        loc,
	}
}

// ClothingAdvice maps temperature to the wardrobe hint used in
// prompts: above 25° light, above 10° jacket, otherwise warm clothes.
func ClothingAdvice(temperature float64) string {
	switch {
	case temperature > 25:
		return clothingWarm
	case temperature > 10:
		return clothingChilly
	default:
		return clothingCold
	}
}

// SmartAdvice finds the user's next upcoming task and asks the
// assistant for a suggestion tailored to it and the temperature.
// Kazakh task titles get the translation roundtrip. The result is
// persisted and returned; failures degrade to fixed strings.
func (s *AdviceService) SmartAdvice(ctx context.Context, userID uint, temperature *float64, now time.Time) string {
	tasks, err := s.taskRepo.ListAll(ctx, userID)
	if err != nil {
		s.log.Warn("list tasks failed", zap.Uint("user", userID), zap.Error(err))
		return adviceFallback
	}

	next, ok := nextUpcoming(tasks, now, s.loc)
	if !ok {
		return adviceNoUpcoming
	}

	weatherPart := ""
	if temperature != nil {
		weatherPart = fmt.Sprintf(" Weather: %.0f°C. %s", *temperature, ClothingAdvice(*temperature))
	}
	prompt := fmt.Sprintf("My task is: %s. Date: %s, %s.%s Please provide a short, helpful suggestion.",
		next.Title, next.Day, next.Time, weatherPart)

	isKazakh := DetectLanguage(next.Title) == LangKazakh
	if isKazakh {
		if translated, err := s.translator.Translate(ctx, prompt, LangKazakh, LangEnglish); err == nil && translated != "" {
			prompt = translated
		}
	}

	reply, err := s.ai.Complete(ctx, "You are a helpful assistant.", prompt)
	if err != nil || reply == "" {
		if err != nil {
			s.log.Warn("advice completion failed", zap.Error(err))
		}
		// Show the last generated advice rather than nothing.
		if last, lastErr := s.adviceRepo.LatestAdvice(ctx, userID); lastErr == nil {
			return last.Text
		}
		return adviceFallback
	}

	if isKazakh {
		if translated, err := s.translator.Translate(ctx, reply, LangEnglish, LangKazakh); err == nil && translated != "" {
			reply = translated
		}
	}

	if err := s.adviceRepo.SaveAdvice(ctx, &model.AdviceEntry{UserID: userID, Text: reply}); err != nil {
		s.log.Warn("save advice failed", zap.Error(err))
	}
	return reply
}

// nextUpcoming picks the earliest task due strictly after now.
// Unscheduled or malformed tasks are skipped.
func nextUpcoming(tasks []model.Task, now time.Time, loc *time.Location) (model.Task, bool) {
	type scheduled struct {
		task model.Task
		due  time.Time
	}

	var upcoming []scheduled
	for _, t := range tasks {
		due, err := t.DueAt(loc)
		if err != nil {
			continue
		}
		if due.After(now) {
			upcoming = append(upcoming, scheduled{task: t, due: due})
		}
	}
	if len(upcoming) == 0 {
		return model.Task{}, false
	}
	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].due.Before(upcoming[j].due) })
	return upcoming[0].task, true
}
