package service

import (
	"context"

	"go.uber.org/zap"

	"jarvis-assistant/internal/model"
	"jarvis-assistant/internal/repository"
)

const chatFallback = "Кешіріңіз, жауап табылмады 😢"

// ChatService answers free-form questions. Kazakh input is translated
// to English for the model and the reply is translated back; other
// languages go through as-is.
type ChatService struct {
	ai         Completer
	translator Translator
	advice     *repository.AdviceRepository
	log        *zap.Logger
}

func NewChatService(ai Completer, translator Translator, advice *repository.AdviceRepository, log *zap.Logger) *ChatService {
	return &ChatService{ai: ai, translator: translator, advice: advice, log: log}
}

// Reply produces the assistant's answer for the user's question and
// persists the exchange. It always returns a displayable string.
func (s *ChatService) Reply(ctx context.Context, userID uint, question string) string {
	isKazakh := DetectLanguage(question) == LangKazakh

	prompt := question
	if isKazakh {
		if translated, err := s.translator.Translate(ctx, question, LangKazakh, LangEnglish); err != nil {
			s.log.Warn("question translation failed", zap.Error(err))
		} else if translated != "" {
			prompt = translated
		}
	}

	reply, err := s.ai.Complete(ctx, "You are a helpful assistant. Reply short and friendly.", prompt)
	if err != nil || reply == "" {
		if err != nil {
			s.log.Warn("chat completion failed", zap.Error(err))
		}
		reply = chatFallback
	} else if isKazakh {
		if translated, err := s.translator.Translate(ctx, reply, LangEnglish, LangKazakh); err != nil {
			s.log.Warn("reply translation failed", zap.Error(err))
		} else if translated != "" {
			reply = translated
		}
	}

	if err := s.advice.SaveChat(ctx, &model.ChatEntry{UserID: userID, Question: question, Reply: reply}); err != nil {
		s.log.Warn("save chat failed", zap.Error(err))
	}
	return reply
}
