package service

import "context"

// Completer produces a chat-completion reply for a system+user prompt
// pair. Implemented by the OpenRouter client.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Translator translates text between two languages. Implemented by the
// Lingva client; an empty source means auto-detect.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// WeatherProvider reports current conditions for coordinates.
type WeatherProvider interface {
	CurrentTemperature(ctx context.Context, lat, lon float64) (float64, error)
	CityName(ctx context.Context, lat, lon float64) (string, error)
}
