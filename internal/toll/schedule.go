package toll

import (
	"fmt"
	"time"
)

// TimeOfDay хранит время суток в минутах от полуночи (0..1439).
type TimeOfDay int

// Clock собирает TimeOfDay из часов и минут.
func Clock(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// TimeOfDayOf возвращает время суток момента t в его собственной локации.
// Секунды отбрасываются: 06:29:59 относится к минуте 06:29.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return Clock(t.Hour(), t.Minute())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// FeeWindow описывает тарифное окно; обе границы включительные.
type FeeWindow struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
	Fee   int       `json:"fee"`
}

// Contains сообщает, попадает ли t в окно.
func (w FeeWindow) Contains(t TimeOfDay) bool {
	return w.Start <= t && t <= w.End
}

// FeeSchedule сопоставляет время суток тарифу.
// Окна просматриваются в порядке объявления, при пересечении побеждает первое.
type FeeSchedule struct {
	windows []FeeWindow
}

// NewFeeSchedule создаёт расписание из упорядоченного списка окон.
func NewFeeSchedule(windows ...FeeWindow) *FeeSchedule {
	copied := make([]FeeWindow, len(windows))
	copy(copied, windows)
	return &FeeSchedule{windows: copied}
}

// DefaultSchedule возвращает базовое расписание тарифов.
// Окно 15:00–16:59 намеренно пересекается с 15:00–15:29: для 15:00–15:29 действует 13.
func DefaultSchedule() *FeeSchedule {
	return NewFeeSchedule(
		FeeWindow{Start: Clock(6, 0), End: Clock(6, 29), Fee: 8},
		FeeWindow{Start: Clock(6, 30), End: Clock(6, 59), Fee: 13},
		FeeWindow{Start: Clock(7, 0), End: Clock(7, 59), Fee: 18},
		FeeWindow{Start: Clock(8, 0), End: Clock(8, 29), Fee: 13},
		FeeWindow{Start: Clock(8, 30), End: Clock(14, 59), Fee: 8},
		FeeWindow{Start: Clock(15, 0), End: Clock(15, 29), Fee: 13},
		FeeWindow{Start: Clock(15, 0), End: Clock(16, 59), Fee: 18},
		FeeWindow{Start: Clock(17, 0), End: Clock(17, 59), Fee: 13},
		FeeWindow{Start: Clock(18, 0), End: Clock(18, 29), Fee: 8},
	)
}

// FeeAt возвращает тариф первого окна, содержащего t, или 0.
func (s *FeeSchedule) FeeAt(t TimeOfDay) int {
	for _, w := range s.windows {
		if w.Contains(t) {
			return w.Fee
		}
	}
	return 0
}

// Windows возвращает копию окон расписания.
func (s *FeeSchedule) Windows() []FeeWindow {
	out := make([]FeeWindow, len(s.windows))
	copy(out, s.windows)
	return out
}
