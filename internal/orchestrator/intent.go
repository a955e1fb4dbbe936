package orchestrator

import "strings"

type intent int

const (
	intentProduct intent = iota
	intentGreeting
	intentReset
	intentHuman
	intentQuestion
)

var (
	greetingTerms = []string{"привет", "здравствуй", "добрый день", "добрый вечер", "доброе утро", "/start", "start"}
	resetTerms    = []string{"сброс", "заново", "начать сначала", "/reset", "reset"}
	humanTerms    = []string{"оператор", "менеджер", "живой человек", "человека", "с человеком", "поддержк"}
	questionLead  = []string{"как ", "что ", "почему ", "сколько ", "когда ", "можно ли ", "есть ли доставка", "какие условия"}
)

// detectIntent classifies the message text. Product resolution is the
// default; everything else needs an explicit cue.
func detectIntent(text string) intent {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return intentProduct
	}

	for _, t := range resetTerms {
		if lower == t || strings.HasPrefix(lower, t) {
			return intentReset
		}
	}
	for _, t := range humanTerms {
		if strings.Contains(lower, t) {
			return intentHuman
		}
	}
	for _, t := range greetingTerms {
		if lower == t || strings.HasPrefix(lower, t) {
			return intentGreeting
		}
	}
	for _, t := range questionLead {
		if strings.HasPrefix(lower, t) {
			return intentQuestion
		}
	}
	return intentProduct
}
