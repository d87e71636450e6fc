package model

import (
	"errors"
	"testing"
	"time"
)

func TestTopicValidateSuccess(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	topic := Topic{
		ID:              "topic-1",
		SubjectID:       "subject-1",
		Title:           "Graph traversal",
		Priority:        PriorityHigh,
		ScheduledDate:   &date,
		ScheduledTime:   "10:00",
		DurationMinutes: 45,
	}
	if err := topic.Validate(); err != nil {
		t.Fatalf("expected valid topic, got error: %v", err)
	}
}

func TestTopicValidateRejectsBadPriority(t *testing.T) {
	topic := Topic{
		ID:              "topic-1",
		SubjectID:       "subject-1",
		Title:           "Graph traversal",
		Priority:        Priority("Urgent"),
		DurationMinutes: 45,
	}
	err := topic.Validate()
	if err == nil || !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got: %v", err)
	}
}

func TestTopicValidateRejectsBadClockWhenScheduled(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	topic := Topic{
		ID:              "topic-1",
		SubjectID:       "subject-1",
		Title:           "Graph traversal",
		Priority:        PriorityLow,
		ScheduledDate:   &date,
		ScheduledTime:   "25:99",
		DurationMinutes: 30,
	}
	err := topic.Validate()
	if err == nil || !errors.Is(err, ErrInvalidClock) {
		t.Fatalf("expected ErrInvalidClock, got: %v", err)
	}
}

func TestTopicValidateUnscheduledIgnoresClock(t *testing.T) {
	topic := Topic{
		ID:              "topic-1",
		SubjectID:       "subject-1",
		Title:           "Graph traversal",
		Priority:        PriorityMedium,
		ScheduledTime:   "",
		DurationMinutes: 30,
	}
	if err := topic.Validate(); err != nil {
		t.Fatalf("expected valid unscheduled topic, got: %v", err)
	}
}

func TestScheduledAtCombinesDateAndClock(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	topic := Topic{ScheduledDate: &date, ScheduledTime: "14:30"}

	at, ok := topic.ScheduledAt()
	if !ok {
		t.Fatal("expected a scheduled instant")
	}
	want := time.Date(2026, 3, 2, 14, 30, 0, 0, time.Local)
	if !at.Equal(want) {
		t.Fatalf("unexpected instant: got %v want %v", at, want)
	}
}

func TestScheduledAtUnscheduledOrMalformed(t *testing.T) {
	if _, ok := (Topic{ScheduledTime: "10:00"}).ScheduledAt(); ok {
		t.Fatal("expected no instant for unscheduled topic")
	}
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	if _, ok := (Topic{ScheduledDate: &date, ScheduledTime: "nope"}).ScheduledAt(); ok {
		t.Fatal("expected no instant for malformed clock")
	}
}
