package config

import "github.com/kelseyhightower/envconfig"

// Config keeps runtime settings for the assistant.
type Config struct {
	TelegramToken   string `envconfig:"TELEGRAM_TOKEN" required:"true"`
	DatabaseURL     string `envconfig:"DATABASE_URL" default:"jarvis.db"`
	OpenRouterKey   string `envconfig:"OPENROUTER_API_KEY"`
	OpenRouterURL   string `envconfig:"OPENROUTER_URL" default:"https://openrouter.ai/api/v1/chat/completions"`
	OpenRouterModel string `envconfig:"OPENROUTER_MODEL" default:"mistralai/mistral-7b-instruct:free"`
	OpenWeatherKey  string `envconfig:"OPENWEATHER_API_KEY"`
	LingvaURL       string `envconfig:"LINGVA_URL" default:"https://lingva.ml"`
	MorningTime     string `envconfig:"MORNING_TIME" default:"08:00"` // HH:MM, daily morning summary
	EveningTime     string `envconfig:"EVENING_TIME" default:"22:00"` // HH:MM, daily evening summary
	IncomeTime      string `envconfig:"INCOME_TIME" default:"00:05"`  // HH:MM, daily payday check
	Timezone        string `envconfig:"TZ_NAME" default:"Asia/Almaty"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
