package locale

// Pick returns the text for the request language, falling back to English.
func Pick(language string, texts map[string]string) string {
	if text, ok := texts[PreferenceForLanguage(language).Tag]; ok && text != "" {
		return text
	}
	return texts[LanguageEnglish]
}
