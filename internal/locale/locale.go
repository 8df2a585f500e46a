package locale

import "strings"

const (
	LanguageEnglish = "en-US"
	LanguageHindi   = "hi-IN"
	LanguageMarathi = "mr-IN"
)

// Preference 描述一种受支持的语言。
type Preference struct {
	Tag  string `json:"code"`
	Code string `json:"short"`
	Name string `json:"name"`
}

var supported = []Preference{
	{Tag: LanguageEnglish, Code: "en", Name: "English"},
	{Tag: LanguageHindi, Code: "hi", Name: "Hindi"},
	{Tag: LanguageMarathi, Code: "mr", Name: "Marathi"},
}

// Supported 按展示顺序返回全部语言。
func Supported() []Preference {
	out := make([]Preference, len(supported))
	copy(out, supported)
	return out
}

// NormalizeLanguage 把 "hi"、"HI_in"、"mr-IN" 等写法归一为语言标签，不支持时返回空串。
func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	trimmed = strings.ReplaceAll(trimmed, "_", "-")
	for _, pref := range supported {
		if trimmed == strings.ToLower(pref.Tag) || trimmed == pref.Code || strings.HasPrefix(trimmed, pref.Code+"-") {
			return pref.Tag
		}
	}
	return ""
}

// LanguageFromAcceptLanguage 取 Accept-Language 中第一个受支持的语言。
func LanguageFromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if normalized := NormalizeLanguage(tag); normalized != "" {
			return normalized
		}
	}
	return ""
}

// PreferenceForLanguage 返回语言信息，未知语言回退到英语。
func PreferenceForLanguage(language string) Preference {
	normalized := NormalizeLanguage(language)
	for _, pref := range supported {
		if pref.Tag == normalized {
			return pref
		}
	}
	return supported[0]
}
