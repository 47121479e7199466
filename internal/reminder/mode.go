package reminder

import "fmt"

// Mode identifies a scheduled sweep run and gates which reminder kinds
// are eligible during it.
type Mode string

const (
	ModeMorning   Mode = "morning"
	ModeAfternoon Mode = "afternoon"
	ModeEvening   Mode = "evening"
)

// Modes lists every valid dispatch mode.
var Modes = []Mode{ModeMorning, ModeAfternoon, ModeEvening}

// ParseMode validates a mode string from the trigger endpoint.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMorning, ModeAfternoon, ModeEvening:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}
