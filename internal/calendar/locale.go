package calendar

import (
	"sort"
	"strings"

	"toll-system/internal/apperror"
)

var factories = map[string]func() HolidayCalendar{
	strings.ToLower(LocaleSweden): func() HolidayCalendar { return NewSwedishCalendar() },
}

// ForLocale выбирает календарь по идентификатору локали (например, "sv-SE").
// Для неизвестной локали возвращает ошибку вида apperror.KindConfiguration.
func ForLocale(locale string) (HolidayCalendar, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
	factory, ok := factories[key]
	if !ok {
		return nil, apperror.Configurationf("no implementation for locale %s", locale)
	}
	return factory(), nil
}

// SupportedLocales возвращает отсортированный список поддерживаемых локалей.
func SupportedLocales() []string {
	out := make([]string, 0, len(factories))
	for key := range factories {
		lang, region, found := strings.Cut(key, "-")
		if found {
			key = lang + "-" + strings.ToUpper(region)
		}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
