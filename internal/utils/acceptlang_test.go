package utils

import "testing"

func TestDetermineLocale_QueryParamWins(t *testing.T) {
	got := DetermineLocale("fa-IR", "en-US,en;q=0.9,fa;q=0.8", SupportedLocales, "en")
	if got != "fa" {
		t.Fatalf("want fa, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguageOrder(t *testing.T) {
	got := DetermineLocale("", "en-US,en;q=0.9,fa;q=0.8", SupportedLocales, "en")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocale_AcceptLanguagePrefersHigherQ(t *testing.T) {
	got := DetermineLocale("", "en;q=0.8,fa;q=0.9", SupportedLocales, "en")
	if got != "fa" {
		t.Fatalf("want fa, got %s", got)
	}
}

func TestDetermineLocale_ZeroWeightIgnored(t *testing.T) {
	got := DetermineLocale("", "fa;q=0,de", SupportedLocales, "en")
	if got != "en" {
		t.Fatalf("want en, got %s", got)
	}
}

func TestDetermineLocale_DefaultFallback(t *testing.T) {
	got := DetermineLocale("", "fr-FR,es;q=0.9", SupportedLocales, "en")
	if got != "en" {
		t.Fatalf("want en fallback, got %s", got)
	}
	if got := DetermineLocale("xx-invalid-?", "", SupportedLocales, "de"); got != "en" {
		t.Fatalf("unsupported default should give first supported, got %s", got)
	}
}

func TestDetermineLocale_OtherLocaleSets(t *testing.T) {
	got := DetermineLocale("", "zh-CN,zh;q=0.9", []string{"en", "zh"}, "en")
	if got != "zh" {
		t.Fatalf("want zh, got %s", got)
	}
}
