package calendar

import "time"

// LocaleSweden — идентификатор шведского календаря.
const LocaleSweden = "sv-SE"

// NewSwedishCalendar возвращает шведский календарь: фиксированный список дат и весь июль.
// Переходящие праздники не вычисляются.
func NewSwedishCalendar() *FixedCalendar {
	return newFixedCalendar(
		[]time.Month{time.July},
		monthDay{time.January, 1},
		monthDay{time.March, 28},
		monthDay{time.March, 29},
		monthDay{time.April, 1},
		monthDay{time.April, 30},
		monthDay{time.May, 1},
		monthDay{time.May, 8},
		monthDay{time.May, 9},
		monthDay{time.June, 5},
		monthDay{time.June, 6},
		monthDay{time.June, 21},
		monthDay{time.November, 1},
		monthDay{time.December, 24},
		monthDay{time.December, 25},
		monthDay{time.December, 26},
		monthDay{time.December, 31},
	)
}
