package utils

import (
	"strings"

	"golang.org/x/text/language"
)

// SupportedLocales lists the locales the server has translations for.
var SupportedLocales = []string{"en", "fa"}

// DetermineLocale resolves a locale to use based on explicit query param, Accept-Language header,
// supported locales, and a default fallback. Supported values should be base languages like "en", "fa".
func DetermineLocale(queryLang, acceptLang string, supported []string, def string) string {
	sup := map[string]struct{}{}
	for _, s := range supported {
		sup[strings.ToLower(s)] = struct{}{}
	}

	pick := func(tag language.Tag) (string, bool) {
		if tag == language.Und {
			return "", false
		}
		base, _ := tag.Base()
		l := base.String()
		if _, ok := sup[l]; ok {
			return l, true
		}
		return "", false
	}

	if queryLang != "" {
		if tag, err := language.Parse(queryLang); err == nil {
			if v, ok := pick(tag); ok {
				return v
			}
		}
	}

	// Tags come back ordered by q-value; zero weights are dropped.
	if tags, _, err := language.ParseAcceptLanguage(acceptLang); err == nil {
		for _, tag := range tags {
			if v, ok := pick(tag); ok {
				return v
			}
		}
	}

	def = strings.ToLower(def)
	if _, ok := sup[def]; ok {
		return def
	}
	if len(supported) > 0 {
		return strings.ToLower(supported[0])
	}
	return "en"
}
