package i18n

import (
	"testing"

	"github.com/planwise/planner-bot/internal/domain"
)

func loadManager(t *testing.T) *Manager {
	t.Helper()

	m, err := LoadFromDir("locales", domain.LocaleRU)
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}
	return m
}

func TestTranslatorLookup(t *testing.T) {
	m := loadManager(t)

	en := m.Translator(domain.LocaleEN)
	if got := en.T("tasks.none"); got != "You have no active tasks." {
		t.Errorf("en tasks.none = %q", got)
	}

	zh := m.Translator(domain.LocaleZH)
	if got := zh.T("digest.plan_tomorrow"); got != "别忘了为明天计划任务！" {
		t.Errorf("zh digest.plan_tomorrow = %q", got)
	}
}

func TestTranslatorFallsBackToDefault(t *testing.T) {
	m := loadManager(t)

	tr := m.Translator(domain.Locale("de"))
	if tr.Lang() != "ru" {
		t.Errorf("unknown locale resolved to %q, expected default ru", tr.Lang())
	}
}

func TestTranslatorUnknownKeyReturnsKey(t *testing.T) {
	m := loadManager(t)

	if got := m.Translator(domain.LocaleEN).T("no.such.key"); got != "no.such.key" {
		t.Errorf("unknown key = %q, expected the key itself", got)
	}
}

func TestTf(t *testing.T) {
	m := loadManager(t)

	got := m.Translator(domain.LocaleEN).Tf("tasks.summary", 3)
	if got != "📝 Active tasks (3):" {
		t.Errorf("Tf(tasks.summary, 3) = %q", got)
	}

	stats := m.Translator(domain.LocaleEN).Tf("stats.tasks_completed", 2, 4, 50)
	if stats != "✅ Tasks completed: 2 of 4 (50%)" {
		t.Errorf("Tf(stats.tasks_completed) = %q", stats)
	}
}

func TestAllLocalesCarryCoreKeys(t *testing.T) {
	m := loadManager(t)

	keys := []string{
		"greeting", "tasks.none", "tasks.summary", "events.none_today",
		"events.tomorrow_summary", "digest.plan_tomorrow", "reminder.header",
		"settings.title", "language.changed", "help.title",
	}

	for _, locale := range []domain.Locale{domain.LocaleRU, domain.LocaleEN, domain.LocaleZH} {
		tr := m.Translator(locale)
		for _, key := range keys {
			if tr.T(key) == key {
				t.Errorf("locale %s is missing key %s", locale, key)
			}
		}
	}
}
