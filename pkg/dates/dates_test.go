package dates

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	got, err := ParseDay("2026-03-15")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDay = %v, want %v", got, want)
	}
	for _, bad := range []string{"15/03/2026", "2026-3-15", "yesterday", ""} {
		if _, err := ParseDay(bad); err == nil {
			t.Errorf("ParseDay(%q) should fail", bad)
		}
	}
}

func TestDay(t *testing.T) {
	in := time.Date(2026, 3, 15, 23, 59, 59, 0, time.FixedZone("x", -5*3600))
	got := Day(in)
	if got.Hour() != 0 || got.Location() != time.UTC {
		t.Errorf("Day = %v, want UTC midnight", got)
	}
}
