package toll

import (
	"testing"
	"time"
)

func TestDefaultSchedule_FeeAt(t *testing.T) {
	schedule := DefaultSchedule()

	cases := []struct {
		at   TimeOfDay
		want int
	}{
		{Clock(0, 0), 0},
		{Clock(5, 59), 0},
		{Clock(6, 0), 8},
		{Clock(6, 29), 8},
		{Clock(6, 30), 13},
		{Clock(6, 59), 13},
		{Clock(7, 0), 18},
		{Clock(7, 59), 18},
		{Clock(8, 0), 13},
		{Clock(8, 29), 13},
		{Clock(8, 30), 8},
		{Clock(14, 59), 8},
		{Clock(15, 0), 13},
		{Clock(15, 29), 13},
		{Clock(15, 30), 18},
		{Clock(16, 59), 18},
		{Clock(17, 0), 13},
		{Clock(17, 59), 13},
		{Clock(18, 0), 8},
		{Clock(18, 29), 8},
		{Clock(18, 30), 0},
		{Clock(19, 0), 0},
		{Clock(23, 59), 0},
	}

	for _, tc := range cases {
		if got := schedule.FeeAt(tc.at); got != tc.want {
			t.Fatalf("FeeAt(%s): expected %d, got %d", tc.at, tc.want, got)
		}
	}
}

func TestFeeSchedule_FirstMatchWins(t *testing.T) {
	schedule := NewFeeSchedule(
		FeeWindow{Start: Clock(10, 0), End: Clock(10, 30), Fee: 5},
		FeeWindow{Start: Clock(10, 0), End: Clock(11, 0), Fee: 50},
	)
	if fee := schedule.FeeAt(Clock(10, 15)); fee != 5 {
		t.Fatalf("expected first window fee 5, got %d", fee)
	}
	if fee := schedule.FeeAt(Clock(10, 45)); fee != 50 {
		t.Fatalf("expected second window fee 50, got %d", fee)
	}
}

func TestFeeSchedule_Empty(t *testing.T) {
	schedule := NewFeeSchedule()
	if fee := schedule.FeeAt(Clock(7, 30)); fee != 0 {
		t.Fatalf("expected 0 for empty schedule, got %d", fee)
	}
}

func TestNewFeeSchedule_CopiesWindows(t *testing.T) {
	windows := []FeeWindow{{Start: Clock(6, 0), End: Clock(6, 59), Fee: 10}}
	schedule := NewFeeSchedule(windows...)
	windows[0].Fee = 99

	if fee := schedule.FeeAt(Clock(6, 10)); fee != 10 {
		t.Fatalf("schedule must not observe caller mutations, got %d", fee)
	}

	got := schedule.Windows()
	got[0].Fee = 77
	if fee := schedule.FeeAt(Clock(6, 10)); fee != 10 {
		t.Fatalf("Windows must return a copy, got %d", fee)
	}
}

func TestTimeOfDayOf_TruncatesSeconds(t *testing.T) {
	ts := time.Date(2024, 12, 17, 6, 29, 59, 0, time.UTC)
	if tod := TimeOfDayOf(ts); tod != Clock(6, 29) {
		t.Fatalf("expected 06:29, got %s", tod)
	}
	if s := Clock(7, 5).String(); s != "07:05" {
		t.Fatalf("unexpected string: %s", s)
	}
}
