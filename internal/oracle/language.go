package oracle

import "strings"

// Language selects display text and interpretation language.
type Language string

const (
	English Language = "en"
	Chinese Language = "zh"
)

// ParseLanguage maps a tag like "zh-CN" or "EN" to a supported language.
// Anything unrecognised falls back to English.
func ParseLanguage(tag string) Language {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if strings.HasPrefix(tag, "zh") {
		return Chinese
	}
	return English
}
