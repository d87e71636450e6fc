package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidClock = errors.New("model: invalid clock string")

// ParseClock parses a local wall-clock "HH:MM" string.
func ParseClock(value string) (hour int, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return hour, minute, nil
}

// FormatClock renders an instant's wall-clock component as "HH:MM".
func FormatClock(at time.Time) string {
	return fmt.Sprintf("%02d:%02d", at.Hour(), at.Minute())
}

// ShiftSchedule moves a date+clock pair forward by delta minutes, carrying
// minute overflow into the date (23:50 + 30m lands on the next day at 00:20).
func ShiftSchedule(date time.Time, clock string, delta time.Duration) (time.Time, string, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, "", err
	}
	at := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
	shifted := at.Add(delta)
	newDate := time.Date(shifted.Year(), shifted.Month(), shifted.Day(), 0, 0, 0, 0, shifted.Location())
	return newDate, FormatClock(shifted), nil
}

// SameMinute reports whether two instants fall in the same local calendar
// minute. This is the matcher's equality: same year/month/day and "HH:MM".
func SameMinute(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd && a.Hour() == b.Hour() && a.Minute() == b.Minute()
}
