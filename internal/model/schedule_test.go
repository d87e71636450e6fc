package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	hour, minute, err := ParseClock("09:05")
	if err != nil {
		t.Fatalf("parse clock: %v", err)
	}
	if hour != 9 || minute != 5 {
		t.Fatalf("unexpected clock: %02d:%02d", hour, minute)
	}

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd", "10:00:00"} {
		if _, _, err := ParseClock(bad); !errors.Is(err, ErrInvalidClock) {
			t.Fatalf("expected ErrInvalidClock for %q, got: %v", bad, err)
		}
	}
}

func TestShiftScheduleWithinDay(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	newDate, newClock, err := ShiftSchedule(date, "10:15", 30*time.Minute)
	if err != nil {
		t.Fatalf("shift: %v", err)
	}
	if !newDate.Equal(date) || newClock != "10:45" {
		t.Fatalf("unexpected shift result: %v %s", newDate, newClock)
	}
}

func TestShiftScheduleRollsOverMidnight(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	newDate, newClock, err := ShiftSchedule(date, "23:50", 30*time.Minute)
	if err != nil {
		t.Fatalf("shift: %v", err)
	}
	wantDate := time.Date(2026, 3, 3, 0, 0, 0, 0, time.Local)
	if !newDate.Equal(wantDate) || newClock != "00:20" {
		t.Fatalf("expected next-day 00:20, got %v %s", newDate, newClock)
	}
}

func TestSameMinute(t *testing.T) {
	a := time.Date(2026, 3, 2, 10, 15, 2, 0, time.Local)
	b := time.Date(2026, 3, 2, 10, 15, 58, 0, time.Local)
	if !SameMinute(a, b) {
		t.Fatal("expected same minute")
	}
	if SameMinute(a, b.Add(time.Minute)) {
		t.Fatal("expected different minute")
	}
	if SameMinute(a, a.AddDate(0, 0, 1)) {
		t.Fatal("expected different day to not match")
	}
}
