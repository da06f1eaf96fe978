package translate

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when a user has no usable language preference.
const DefaultLanguage = "en"

// languageNames maps supported base codes to the English name given to the
// model in translation prompts.
var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"zh": "Chinese",
	"ja": "Japanese",
	"ar": "Arabic",
	"gu": "Gujarati",
	"bn": "Bengali",
	"ta": "Tamil",
	"te": "Telugu",
	"ml": "Malayalam",
	"or": "Odia",
}

// Normalize reduces a free-form language tag ("es", "ES", "es-MX", "pt_BR")
// to a supported base code, or DefaultLanguage when it cannot.
func Normalize(code string) string {
	code = strings.TrimSpace(strings.ReplaceAll(code, "_", "-"))
	if code == "" {
		return DefaultLanguage
	}

	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}
	base, _ := tag.Base()
	if !Supported(base.String()) {
		return DefaultLanguage
	}
	return base.String()
}

// Supported reports whether code is a supported base code.
func Supported(code string) bool {
	_, ok := languageNames[code]
	return ok
}

// DisplayName returns the English name for code, or code itself.
func DisplayName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}
