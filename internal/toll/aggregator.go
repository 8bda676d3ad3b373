package toll

import (
	"sort"
	"time"

	"toll-system/internal/calendar"
)

const (
	// MaxDailyFee — максимальная сумма сборов за один календарный день.
	MaxDailyFee = 60
	// WindowLength — длина окна, в котором проезды оплачиваются один раз.
	WindowLength = 60 * time.Minute
)

// VehicleClass описывает класс транспортного средства.
type VehicleClass interface {
	IsTollExempt() bool
}

// BillingWindow — группа проездов, оплачиваемая как одно событие.
type BillingWindow struct {
	Anchor   time.Time   `json:"anchor"`
	Passages []time.Time `json:"passages"`
	Fee      int         `json:"fee"`
}

// Aggregator рассчитывает дневной сбор для одного ТС.
// После создания не изменяется и может использоваться конкурентно.
type Aggregator struct {
	schedule *FeeSchedule
	calendar calendar.HolidayCalendar
}

// NewAggregator создаёт агрегатор. Без расписания используется DefaultSchedule,
// без календаря праздников освобождаются только выходные.
func NewAggregator(schedule *FeeSchedule, cal calendar.HolidayCalendar) *Aggregator {
	if schedule == nil {
		schedule = DefaultSchedule()
	}
	return &Aggregator{
		schedule: schedule,
		calendar: cal,
	}
}

// Schedule возвращает расписание тарифов агрегатора.
func (a *Aggregator) Schedule() *FeeSchedule {
	return a.schedule
}

// DailyFee возвращает сбор за день в диапазоне [0, MaxDailyFee].
// Все моменты должны относиться к одной календарной дате; порядок не важен.
func (a *Aggregator) DailyFee(vehicle VehicleClass, timestamps []time.Time) int {
	total := 0
	for _, w := range a.Windows(vehicle, timestamps) {
		total += w.Fee
	}
	if total > MaxDailyFee {
		total = MaxDailyFee
	}
	return total
}

// Windows группирует проезды в окна длиной WindowLength, отсчитываемые от первого
// проезда каждого окна. Сбор окна равен максимальному сбору его проездов.
// Для освобождённого ТС или пустого входа возвращает nil.
func (a *Aggregator) Windows(vehicle VehicleClass, timestamps []time.Time) []BillingWindow {
	if len(timestamps) == 0 || isTollFreeVehicle(vehicle) {
		return nil
	}

	sorted := make([]time.Time, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var windows []BillingWindow
	var current *BillingWindow
	for _, ts := range sorted {
		if current == nil || ts.Sub(current.Anchor) > WindowLength {
			windows = append(windows, BillingWindow{Anchor: ts})
			current = &windows[len(windows)-1]
		}
		current.Passages = append(current.Passages, ts)
		if fee := a.PassageFee(ts); fee > current.Fee {
			current.Fee = fee
		}
	}

	return windows
}

// PassageFee возвращает сбор за одиночный проезд без учёта окна и лимита.
func (a *Aggregator) PassageFee(ts time.Time) int {
	if a.isTollFreeDate(ts) {
		return 0
	}
	return a.schedule.FeeAt(TimeOfDayOf(ts))
}

func (a *Aggregator) isTollFreeDate(ts time.Time) bool {
	switch ts.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	if a.calendar == nil {
		return false
	}
	return a.calendar.IsExempt(ts)
}

// Отсутствующий класс считается платным.
func isTollFreeVehicle(vehicle VehicleClass) bool {
	if vehicle == nil {
		return false
	}
	return vehicle.IsTollExempt()
}
