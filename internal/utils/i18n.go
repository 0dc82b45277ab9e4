package utils

// Minimal server-side i18n for fixed keys.
// UI strings should live in the frontend; server provides only essentials.

var translations = map[string]map[string]string{
	"en": {
		"health.ok":             "ok",
		"org.default":           "My organization",
		"assessment.incomplete": "Please answer all questions before submitting.",
		"assessment.saved":      "Assessment saved.",
		"history.empty":         "No assessments yet.",
		"trend.insufficient":    "At least two assessments are needed to show a trend.",
		"tier.red":              "Critical gaps threaten continuity. Prioritize leadership commitment and basic risk planning now.",
		"tier.orange":           "Important foundations are missing. Address the weakest categories first.",
		"tier.blue":             "Solid resilience practices are in place. Keep testing plans and closing remaining gaps.",
		"tier.green":            "Resilience is embedded in the organization. Sustain it through regular review and learning.",
	},
	"fa": {
		"health.ok":             "خوب",
		"org.default":           "سازمان من",
		"assessment.incomplete": "لطفاً پیش از ارسال به همه پرسش‌ها پاسخ دهید.",
		"assessment.saved":      "ارزیابی ذخیره شد.",
		"history.empty":         "هنوز ارزیابی‌ای ثبت نشده است.",
		"trend.insufficient":    "برای نمایش روند دست‌کم دو ارزیابی لازم است.",
		"tier.red":              "شکاف‌های جدی تداوم کسب‌وکار را تهدید می‌کند. تعهد مدیریت و برنامه‌ریزی پایه ریسک را در اولویت قرار دهید.",
		"tier.orange":           "برخی پایه‌های مهم وجود ندارد. ابتدا به ضعیف‌ترین حوزه‌ها بپردازید.",
		"tier.blue":             "رویه‌های تاب‌آوری مناسبی برقرار است. آزمودن برنامه‌ها و رفع شکاف‌های باقی‌مانده را ادامه دهید.",
		"tier.green":            "تاب‌آوری در سازمان نهادینه شده است. با بازنگری و یادگیری مستمر آن را حفظ کنید.",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["en"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
