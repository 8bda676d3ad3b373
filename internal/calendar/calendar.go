package calendar

import "time"

// HolidayCalendar отвечает, является ли дата днём без сборов.
// Реализации читают только месяц и день даты.
type HolidayCalendar interface {
	IsExempt(date time.Time) bool
}

type monthDay struct {
	month time.Month
	day   int
}

// FixedCalendar — календарь с фиксированным набором дат и целиком свободных месяцев.
type FixedCalendar struct {
	days   map[monthDay]struct{}
	months map[time.Month]struct{}
}

// IsExempt реализует HolidayCalendar.
func (c *FixedCalendar) IsExempt(date time.Time) bool {
	if c == nil {
		return false
	}
	if _, ok := c.months[date.Month()]; ok {
		return true
	}
	_, ok := c.days[monthDay{month: date.Month(), day: date.Day()}]
	return ok
}

func newFixedCalendar(months []time.Month, days ...monthDay) *FixedCalendar {
	c := &FixedCalendar{
		days:   make(map[monthDay]struct{}, len(days)),
		months: make(map[time.Month]struct{}, len(months)),
	}
	for _, m := range months {
		c.months[m] = struct{}{}
	}
	for _, d := range days {
		c.days[d] = struct{}{}
	}
	return c
}
