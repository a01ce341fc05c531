package service

import "unicode"

// Language codes the assistant distinguishes between.
const (
	LangKazakh  = "kk"
	LangRussian = "ru"
	LangChinese = "zh"
	LangEnglish = "en"
)

var kazakhLetters = map[rune]bool{
	'ә': true, 'ғ': true, 'қ': true, 'ң': true, 'ө': true,
	'ұ': true, 'ү': true, 'һ': true, 'і': true,
}

// DetectLanguage guesses the language of text by script: Kazakh wins
// on any Kazakh-specific letter, other Cyrillic means Russian, Han
// means Chinese, Latin means English. English is the default.
func DetectLanguage(text string) string {
	cyrillic := false
	latin := false
	for _, r := range text {
		lower := unicode.ToLower(r)
		switch {
		case kazakhLetters[lower]:
			return LangKazakh
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic = true
		case unicode.Is(unicode.Han, r):
			return LangChinese
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			latin = true
		}
	}
	switch {
	case cyrillic:
		return LangRussian
	case latin:
		return LangEnglish
	default:
		return LangEnglish
	}
}
