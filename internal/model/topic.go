package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidPriority = errors.New("model: invalid topic priority")

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Topic is a schedulable unit of study work owned by exactly one subject.
// ScheduledDate is a calendar date (midnight, local zone); nil means the
// topic is unscheduled and excluded from reminder matching and the calendar.
// ScheduledTime is a local wall-clock "HH:MM" string.
type Topic struct {
	ID              string
	SubjectID       string
	Title           string
	Description     string
	Subtopics       []string
	Priority        Priority
	ScheduledDate   *time.Time
	ScheduledTime   string
	DurationMinutes int
	Completed       bool
	Notes           string
	Resources       []string
}

func (t Topic) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: topic id is required")
	}
	if strings.TrimSpace(t.SubjectID) == "" {
		return errors.New("model: topic subject_id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: topic title is required")
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.DurationMinutes <= 0 {
		return errors.New("model: topic duration must be positive")
	}
	if t.ScheduledDate != nil {
		if _, _, err := ParseClock(t.ScheduledTime); err != nil {
			return err
		}
	}
	return nil
}

// Scheduled reports whether the topic occupies a calendar slot.
func (t Topic) Scheduled() bool {
	return t.ScheduledDate != nil
}

// ScheduledAt combines the calendar date and the clock string into a single
// local instant. The second return is false for unscheduled topics and for
// malformed clock strings. Reminder matching and cascade selection both use
// this so their notion of "when" never diverges.
func (t Topic) ScheduledAt() (time.Time, bool) {
	if t.ScheduledDate == nil {
		return time.Time{}, false
	}
	hour, minute, err := ParseClock(t.ScheduledTime)
	if err != nil {
		return time.Time{}, false
	}
	d := *t.ScheduledDate
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, d.Location()), true
}
