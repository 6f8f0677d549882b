// Package i18n holds the bilingual string tables for backend-visible text.
// The frontend carries its own UI strings; only strings the server embeds in
// stored data (inbox subjects, chat annotations, error fallbacks) live here.
package i18n

// Language is a supported interface language
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

// Key identifies a localized string
type Key string

const (
	KeyWelcomeSubject  Key = "welcome_subject"
	KeyTaskAutoAdded   Key = "task_auto_added"
	KeyTaskAutoUpdated Key = "task_auto_updated"
	KeyTaskAutoDone    Key = "task_auto_done"
	KeyConnectError    Key = "connect_error"
	KeyAIDisabled      Key = "ai_disabled"
)

var tables = map[Language]map[Key]string{
	LanguageEnglish: {
		KeyWelcomeSubject:  "Welcome to Syntra!",
		KeyTaskAutoAdded:   "Task added:",
		KeyTaskAutoUpdated: "Task updated:",
		KeyTaskAutoDone:    "Task completed:",
		KeyConnectError:    "Connection failed. Please check internet.",
		KeyAIDisabled:      "AI features are unavailable: no API key is configured.",
	},
	LanguageArabic: {
		KeyWelcomeSubject:  "مرحباً بك في سينترا!",
		KeyTaskAutoAdded:   "تم إضافة:",
		KeyTaskAutoUpdated: "تم تعديل:",
		KeyTaskAutoDone:    "تم إنجاز:",
		KeyConnectError:    "معلش في مشكلة في الاتصال، حاول تاني.",
		KeyAIDisabled:      "خدمات الذكاء الاصطناعي غير متاحة: مفيش مفتاح API.",
	},
}

// Normalize maps an arbitrary language tag to a supported Language,
// defaulting to English.
func Normalize(lang string) Language {
	if Language(lang) == LanguageArabic {
		return LanguageArabic
	}
	return LanguageEnglish
}

// T returns the localized string for key in lang. Unknown keys return the
// English value, or the empty string when the key does not exist at all.
func T(lang Language, key Key) string {
	if table, ok := tables[lang]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	return tables[LanguageEnglish][key]
}
