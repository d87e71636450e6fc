package scheduler

import (
	"errors"
	"testing"
	"time"

	"studyd/internal/model"
)

func scheduledTopic(id string, at time.Time) model.Topic {
	date := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	return model.Topic{
		ID:              id,
		SubjectID:       "subject-1",
		Title:           "Topic " + id,
		Priority:        model.PriorityMedium,
		ScheduledDate:   &date,
		ScheduledTime:   model.FormatClock(at),
		DurationMinutes: 30,
	}
}

func newTestEngine(topics *[]model.Topic) *Engine {
	return NewEngine(TopicSourceFunc(func() []model.Topic { return *topics }), DefaultPollInterval, 16)
}

func drainEvents(e *Engine) []Event {
	out := make([]Event, 0)
	for {
		select {
		case ev := <-e.C():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestTickRaisesReminderExactlyOnce(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 12, 0, time.Local)
	topics := []model.Topic{scheduledTopic("topic-1", now)}
	engine := newTestEngine(&topics)

	engine.Tick(now)
	events := drainEvents(engine)
	if len(events) != 1 || events[0].Kind != EventReminder || events[0].TopicID != "topic-1" {
		t.Fatalf("expected one reminder event, got: %#v", events)
	}

	// Second tick inside the same minute must not re-raise.
	engine.Tick(now.Add(30 * time.Second))
	if events := drainEvents(engine); len(events) != 0 {
		t.Fatalf("expected no further events, got: %#v", events)
	}
	if got := engine.Reminders(); len(got) != 1 || got[0] != "topic-1" {
		t.Fatalf("unexpected reminder set: %v", got)
	}
}

func TestTickSkipsCompletedAndUnscheduledTopics(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	done := scheduledTopic("done", now)
	done.Completed = true
	unscheduled := model.Topic{ID: "floating", SubjectID: "subject-1", Title: "Floating", Priority: model.PriorityLow, DurationMinutes: 20}
	topics := []model.Topic{done, unscheduled}
	engine := newTestEngine(&topics)

	engine.Tick(now)
	if events := drainEvents(engine); len(events) != 0 {
		t.Fatalf("expected no events, got: %#v", events)
	}
}

func TestTickOnlyMatchesExactMinute(t *testing.T) {
	target := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	topics := []model.Topic{scheduledTopic("topic-1", target)}
	engine := newTestEngine(&topics)

	engine.Tick(target.Add(-time.Minute))
	engine.Tick(target.Add(time.Minute))
	if events := drainEvents(engine); len(events) != 0 {
		t.Fatalf("expected no events outside the scheduled minute, got: %#v", events)
	}
}

func TestStartSessionDismissesReminder(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	topics := []model.Topic{scheduledTopic("topic-1", now)}
	engine := newTestEngine(&topics)

	engine.Tick(now)
	drainEvents(engine)
	if err := engine.StartSession("topic-1", 25, now); err != nil {
		t.Fatalf("start session: %v", err)
	}
	if got := engine.Reminders(); len(got) != 0 {
		t.Fatalf("expected reminder dismissed on start, got: %v", got)
	}
	session, ok := engine.SessionFor("topic-1")
	if !ok || session.TotalSeconds != 25*60 || session.RemainingSeconds != 25*60 {
		t.Fatalf("unexpected session: %#v", session)
	}

	if err := engine.StartSession("topic-1", 25, now); !errors.Is(err, ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got: %v", err)
	}
}

func TestSessionRecomputeClampsAfterLongGap(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	topics := []model.Topic{}
	engine := newTestEngine(&topics)

	if err := engine.StartSession("topic-1", 1, start); err != nil {
		t.Fatalf("start session: %v", err)
	}

	// Simulate a backgrounded process: next tick arrives hours later.
	engine.Tick(start.Add(3 * time.Hour))
	session, ok := engine.SessionFor("topic-1")
	if !ok {
		t.Fatal("session must survive completion until finished or extended")
	}
	if session.RemainingSeconds != 0 {
		t.Fatalf("expected remaining clamped to 0, got %d", session.RemainingSeconds)
	}

	events := drainEvents(engine)
	if len(events) != 1 || events[0].Kind != EventSessionComplete {
		t.Fatalf("expected one session-complete event, got: %#v", events)
	}

	// Further ticks must not repeat the completion signal.
	engine.Tick(start.Add(4 * time.Hour))
	if events := drainEvents(engine); len(events) != 0 {
		t.Fatalf("expected no duplicate completion, got: %#v", events)
	}
}

func TestSessionRemainingDerivedFromElapsed(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	topics := []model.Topic{}
	engine := newTestEngine(&topics)

	if err := engine.StartSession("topic-1", 10, start); err != nil {
		t.Fatalf("start session: %v", err)
	}
	engine.Tick(start.Add(90 * time.Second))
	session, _ := engine.SessionFor("topic-1")
	if session.RemainingSeconds != 10*60-90 {
		t.Fatalf("expected remaining %d, got %d", 10*60-90, session.RemainingSeconds)
	}
}

func TestExtendSessionKeepsDerivedRemainingConsistent(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	topics := []model.Topic{}
	engine := newTestEngine(&topics)

	if err := engine.StartSession("topic-1", 10, start); err != nil {
		t.Fatalf("start session: %v", err)
	}
	at := start.Add(2 * time.Minute)
	engine.Tick(at)
	before, _ := engine.SessionFor("topic-1")

	if err := engine.ExtendSession("topic-1", 15); err != nil {
		t.Fatalf("extend session: %v", err)
	}
	after, _ := engine.SessionFor("topic-1")
	if after.TotalSeconds != before.TotalSeconds+900 {
		t.Fatalf("expected total +900, got %d -> %d", before.TotalSeconds, after.TotalSeconds)
	}
	if after.RemainingSeconds != before.RemainingSeconds+900 {
		t.Fatalf("expected remaining +900, got %d -> %d", before.RemainingSeconds, after.RemainingSeconds)
	}

	// A recompute at the same instant must agree with the direct bump.
	engine.Tick(at)
	derived, _ := engine.SessionFor("topic-1")
	if derived.RemainingSeconds != after.RemainingSeconds {
		t.Fatalf("recompute changed remaining: %d -> %d", after.RemainingSeconds, derived.RemainingSeconds)
	}
}

func TestExtendWithoutSessionIsReportedNoop(t *testing.T) {
	topics := []model.Topic{}
	engine := newTestEngine(&topics)
	if err := engine.ExtendSession("ghost", 5); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got: %v", err)
	}
	if err := engine.ExtendSession("ghost", 0); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got: %v", err)
	}
}

func TestFinishAndDismissAreNoopSafe(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	topics := []model.Topic{scheduledTopic("topic-1", now)}
	engine := newTestEngine(&topics)

	engine.FinishSession("ghost")
	engine.DismissReminder("ghost")

	engine.Tick(now)
	drainEvents(engine)
	engine.DismissReminder("topic-1")
	engine.DismissReminder("topic-1")
	if got := engine.Reminders(); len(got) != 0 {
		t.Fatalf("expected empty reminder set, got: %v", got)
	}

	// The latch survives dismissal: the same minute must not re-raise.
	engine.Tick(now.Add(20 * time.Second))
	if events := drainEvents(engine); len(events) != 0 {
		t.Fatalf("expected no re-raise after dismissal, got: %#v", events)
	}
}

func TestResetNotifiedAllowsRescheduledTopicToFireAgain(t *testing.T) {
	first := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	topics := []model.Topic{scheduledTopic("topic-1", first)}
	engine := newTestEngine(&topics)

	engine.Tick(first)
	drainEvents(engine)
	engine.DismissReminder("topic-1")

	second := first.Add(2 * time.Hour)
	topics[0] = scheduledTopic("topic-1", second)
	engine.ResetNotified("topic-1")

	engine.Tick(second)
	events := drainEvents(engine)
	if len(events) != 1 || events[0].Kind != EventReminder {
		t.Fatalf("expected reminder at new minute, got: %#v", events)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	topics := []model.Topic{}
	engine := newTestEngine(&topics)
	engine.Start()
	engine.Start()
	engine.Stop()
	engine.Stop()
}
