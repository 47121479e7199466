package reminder

import "testing"

func TestParseMode(t *testing.T) {
	for _, mode := range Modes {
		got, err := ParseMode(string(mode))
		if err != nil || got != mode {
			t.Fatalf("ParseMode(%q) = (%q, %v)", mode, got, err)
		}
	}
	for _, bad := range []string{"", "night", "Morning", "d0"} {
		if _, err := ParseMode(bad); err == nil {
			t.Fatalf("ParseMode(%q) accepted", bad)
		}
	}
}
