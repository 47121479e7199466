package reminder

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEvaluateTable(t *testing.T) {
	today := date(2026, time.March, 10)
	cases := []struct {
		name    string
		dueDate string
		mode    Mode
		want    Kind
		wantOK  bool
	}{
		{"due today morning", "2026-03-10", ModeMorning, KindD0Morning, true},
		{"due today afternoon", "2026-03-10", ModeAfternoon, "", false},
		{"due today evening", "2026-03-10", ModeEvening, "", false},
		{"due tomorrow afternoon", "2026-03-11", ModeAfternoon, KindD1Afternoon, true},
		{"due tomorrow evening", "2026-03-11", ModeEvening, KindD1Evening, true},
		{"due tomorrow morning", "2026-03-11", ModeMorning, "", false},
		{"due in two days", "2026-03-12", ModeAfternoon, "", false},
		{"due in a week", "2026-03-17", ModeMorning, "", false},
		{"overdue yesterday morning", "2026-03-09", ModeMorning, "", false},
		{"overdue yesterday afternoon", "2026-03-09", ModeAfternoon, "", false},
		{"malformed due date", "10/03/2026", ModeMorning, "", false},
		{"empty due date", "", ModeMorning, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, ok := Evaluate(today, tc.dueDate, tc.mode)
			if ok != tc.wantOK || kind != tc.want {
				t.Fatalf("Evaluate(%q, %s) = (%q, %v), want (%q, %v)", tc.dueDate, tc.mode, kind, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestEvaluateIgnoresTimeOfDay(t *testing.T) {
	due := "2026-03-11"
	times := []time.Time{
		time.Date(2026, time.March, 10, 0, 0, 1, 0, time.UTC),
		time.Date(2026, time.March, 10, 12, 30, 0, 0, time.UTC),
		time.Date(2026, time.March, 10, 23, 59, 59, 0, time.UTC),
	}
	for _, now := range times {
		kind, ok := Evaluate(now, due, ModeAfternoon)
		if !ok || kind != KindD1Afternoon {
			t.Fatalf("Evaluate at %s = (%q, %v), want (%q, true)", now, kind, ok, KindD1Afternoon)
		}
	}
}

func TestDaysUntilAcrossDSTTransition(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// Italy springs forward on 2026-03-29; the elapsed interval is 23h
	// but the calendar distance must still be one day.
	today := time.Date(2026, time.March, 28, 12, 0, 0, 0, rome)
	due := time.Date(2026, time.March, 29, 12, 0, 0, 0, rome)
	if got := DaysUntil(today, due); got != 1 {
		t.Fatalf("DaysUntil across DST = %d, want 1", got)
	}
}

func TestDaysUntilNegativeForOverdue(t *testing.T) {
	if got := DaysUntil(date(2026, time.March, 10), date(2026, time.March, 7)); got != -3 {
		t.Fatalf("DaysUntil = %d, want -3", got)
	}
}
