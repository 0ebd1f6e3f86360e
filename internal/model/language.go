package model

// LanguageStorageKey is the key-value key holding the selected language code.
const LanguageStorageKey = "enatega-language"

// DefaultLanguageCode is used when no preference has been stored.
const DefaultLanguageCode = "en"

// Language is a selectable UI language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupportedLanguages lists the languages offered on the settings screen, in display order.
var SupportedLanguages = []Language{
	{Code: "en", Name: "English"},
	{Code: "fr", Name: "français"},
	{Code: "km", Name: "ភាសាខ្មែរ"},
	{Code: "zh", Name: "中文"},
	{Code: "de", Name: "Deutsche"},
	{Code: "ar", Name: "arabic"},
}

// LookupLanguage returns the supported language with the given code.
func LookupLanguage(code string) (Language, bool) {
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// SetLanguageRequest is the request body for PUT /me/language.
type SetLanguageRequest struct {
	Code string `json:"code"`
}
