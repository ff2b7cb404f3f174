package utils

import "strings"

// Minimal server-side i18n for fixed notification keys. Form option text
// lives in the forms catalog; this table only covers the toast-style
// messages the wizard emits.

var translations = map[string]map[string]string{
	"english": {
		"health.ok":      "ok",
		"draft.restored": "Previous data restored! 📂",
		"submit.success": "Feedback successfully submitted! 🎉",
		"submit.error":   "Error submitting feedback. Please try again. ❌",
	},
	"hindi": {
		"health.ok":      "ठीक है",
		"draft.restored": "आपका पिछला डेटा restore हो गया! 📂",
		"submit.success": "फीडबैक सफलतापूर्वक सबमिट हो गया! 🎉",
		"submit.error":   "फीडबैक सबमिट करने में त्रुटि हुई। कृपया दोबारा कोशिश करें। ❌",
	},
	"hinglish": {
		"health.ok":      "ok",
		"draft.restored": "Aapka previous data restore ho gaya! 📂",
		"submit.success": "Feedback successfully submit ho gaya! 🎉",
		"submit.error":   "Feedback submit karne me error hui. Please try again. ❌",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["english"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// DetermineLocale picks the active locale from an explicit query value, then
// the Accept-Language header, then the fallback. Only supported locales win.
func DetermineLocale(queryLang, acceptLang string, supported []string, fallback string) string {
	q := strings.ToLower(strings.TrimSpace(queryLang))
	for _, s := range supported {
		if q == s {
			return s
		}
	}
	// Accept-Language carries BCP 47 tags; map the primary subtags we know.
	for _, part := range strings.Split(acceptLang, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		primary := strings.SplitN(tag, "-", 2)[0]
		var candidate string
		switch primary {
		case "hi":
			candidate = "hindi"
		case "en":
			candidate = "english"
		}
		for _, s := range supported {
			if candidate == s {
				return s
			}
		}
	}
	return fallback
}
