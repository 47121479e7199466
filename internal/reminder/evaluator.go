package reminder

import (
	"time"

	"github.com/payalert-labs/payalert/internal/model"
)

// Kind identifies a reminder rule. Kind values double as deduplication
// keys in the notification log, so they stay stable across releases.
type Kind string

const (
	KindD0Morning   Kind = "d0_morning"
	KindD1Afternoon Kind = "d1_afternoon"
	KindD1Evening   Kind = "d1_evening"
)

// Kinds lists every kind the current reminder table can produce.
var Kinds = []Kind{KindD0Morning, KindD1Afternoon, KindD1Evening}

// Evaluate decides whether today is a reminder day for a payment and, if
// so, which kind fires. Pure: same (due-today delta, mode) pair always
// yields the same answer regardless of time of day. A malformed due date
// fails closed so a single bad record never aborts a sweep.
func Evaluate(today time.Time, dueDate string, mode Mode) (Kind, bool) {
	due, err := time.Parse(model.DueDateLayout, dueDate)
	if err != nil {
		return "", false
	}
	days := DaysUntil(today, due)
	if days < 0 {
		return "", false
	}
	switch {
	case mode == ModeMorning && days == 0:
		return KindD0Morning, true
	case mode == ModeAfternoon && days == 1:
		return KindD1Afternoon, true
	case mode == ModeEvening && days == 1:
		return KindD1Evening, true
	}
	return "", false
}

// DaysUntil counts calendar days from today to due. Both instants are
// reduced to their civil date in UTC before the diff, so the result is
// insensitive to time of day and to DST transitions.
func DaysUntil(today, due time.Time) int {
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(t).Hours() / 24)
}
