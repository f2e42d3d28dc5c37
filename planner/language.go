package planner

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// The fixed set of itinerary languages, in menu order.
var supportedLanguages = []language.Tag{
	language.English,
	language.Hindi,
	language.Spanish,
	language.French,
	language.German,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// SupportedLanguages returns the English names of the selectable languages.
func SupportedLanguages() []string {
	names := make([]string, 0, len(supportedLanguages))
	for _, tag := range supportedLanguages {
		names = append(names, display.English.Languages().Name(tag))
	}
	return names
}

// NormalizeLanguage resolves user input ("english", "Hindi", "fr") to the
// canonical English name of a supported language.
func NormalizeLanguage(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}

	for _, tag := range supportedLanguages {
		if strings.EqualFold(display.English.Languages().Name(tag), input) {
			return display.English.Languages().Name(tag), true
		}
	}

	parsed, err := language.Parse(input)
	if err != nil {
		return "", false
	}
	_, idx, conf := languageMatcher.Match(parsed)
	if conf < language.High {
		return "", false
	}
	return display.English.Languages().Name(supportedLanguages[idx]), true
}

// NativeLanguageName returns the language's name in the language itself
// ("Hindi" -> "हिन्दी"), used to reinforce the prompt language directive.
// Falls back to the given name when it is not a supported language.
func NativeLanguageName(name string) string {
	for _, tag := range supportedLanguages {
		if display.English.Languages().Name(tag) == name {
			return display.Self.Name(tag)
		}
	}
	return name
}
