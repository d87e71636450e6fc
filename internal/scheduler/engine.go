package scheduler

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"studyd/internal/model"
)

var (
	ErrInvalidDuration = errors.New("scheduler: duration must be positive")
	ErrSessionExists   = errors.New("scheduler: session already active for topic")
	ErrNoSession       = errors.New("scheduler: no active session for topic")
)

// DefaultPollInterval matches the coarse 30-second polling cadence the
// reminder matcher is designed around: minute-granularity equality needs at
// least one tick inside the target minute.
const DefaultPollInterval = 30 * time.Second

type EventKind string

const (
	EventReminder        EventKind = "reminder"
	EventSessionComplete EventKind = "session_complete"
)

type Event struct {
	Kind    EventKind
	TopicID string
	At      time.Time
}

// Session is the ephemeral countdown state for a topic being studied.
// RemainingSeconds is derived from absolute elapsed time on every tick, never
// decremented, so it self-corrects after any gap in polling.
type Session struct {
	TopicID          string
	StartedAt        time.Time
	TotalSeconds     int
	RemainingSeconds int
}

// TopicSource supplies the engine with a topic snapshot on each tick.
// Implementations must not call back into the engine.
type TopicSource interface {
	TopicSnapshot() []model.Topic
}

type TopicSourceFunc func() []model.Topic

func (f TopicSourceFunc) TopicSnapshot() []model.Topic { return f() }

// Engine drives every time-based transition from a single polling loop: one
// wall-clock sample per tick feeds both the reminder matcher and the session
// tracker.
type Engine struct {
	mu        sync.Mutex
	source    TopicSource
	interval  time.Duration
	out       chan Event
	stopCh    chan struct{}
	doneCh    chan struct{}
	started   bool
	stopped   bool
	dropped   uint64
	notified  map[string]bool
	reminders map[string]bool
	sessions  map[string]Session
}

func NewEngine(source TopicSource, interval time.Duration, bufferSize int) *Engine {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		source:    source,
		interval:  interval,
		out:       make(chan Event, bufferSize),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		notified:  make(map[string]bool),
		reminders: make(map[string]bool),
		sessions:  make(map[string]Session),
	}
}

func (e *Engine) C() <-chan Event {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	if e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.stopped = true
		e.mu.Unlock()
		return
	}
	e.stopped = true
	e.mu.Unlock()
	close(e.stopCh)
	<-e.doneCh
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	// One immediate sample on activation, then the fixed interval.
	e.Tick(time.Now())

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			e.Tick(now)
		case <-e.stopCh:
			return
		}
	}
}

// Tick runs one poll cycle against the given wall-clock sample: raise
// reminders for topics whose scheduled minute has arrived, then recompute
// every active session's remaining time. Exported so tests and callers can
// drive the engine without the loop.
func (e *Engine) Tick(now time.Time) {
	topics := e.source.TopicSnapshot()

	e.mu.Lock()
	events := make([]Event, 0, 2)
	for _, topic := range topics {
		if topic.Completed || e.notified[topic.ID] {
			continue
		}
		if _, active := e.sessions[topic.ID]; active {
			continue
		}
		at, ok := topic.ScheduledAt()
		if !ok {
			continue
		}
		if !model.SameMinute(at, now) {
			continue
		}
		e.notified[topic.ID] = true
		e.reminders[topic.ID] = true
		events = append(events, Event{Kind: EventReminder, TopicID: topic.ID, At: now})
	}

	for id, session := range e.sessions {
		elapsed := int(now.Sub(session.StartedAt) / time.Second)
		if elapsed < 0 {
			elapsed = 0
		}
		remaining := session.TotalSeconds - elapsed
		if remaining < 0 {
			remaining = 0
		}
		if remaining == session.RemainingSeconds {
			continue
		}
		wasRunning := session.RemainingSeconds > 0
		session.RemainingSeconds = remaining
		e.sessions[id] = session
		if remaining == 0 && wasRunning {
			events = append(events, Event{Kind: EventSessionComplete, TopicID: id, At: now})
		}
	}
	e.mu.Unlock()

	for _, ev := range events {
		e.emit(ev)
	}
}

// StartSession promotes a topic into an active countdown. A raised reminder
// for the topic is dismissed as a side effect; a session and a reminder never
// coexist.
func (e *Engine) StartSession(topicID string, minutes int, now time.Time) error {
	if minutes <= 0 {
		return ErrInvalidDuration
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.sessions[topicID]; exists {
		return ErrSessionExists
	}
	total := minutes * 60
	e.sessions[topicID] = Session{
		TopicID:          topicID,
		StartedAt:        now,
		TotalSeconds:     total,
		RemainingSeconds: total,
	}
	delete(e.reminders, topicID)
	return nil
}

// ExtendSession adds time to an active session. Total and remaining are both
// bumped directly; the next tick re-derives remaining from the new total and
// lands on the same value.
func (e *Engine) ExtendSession(topicID string, minutes int) error {
	if minutes <= 0 {
		return ErrInvalidDuration
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	session, exists := e.sessions[topicID]
	if !exists {
		return ErrNoSession
	}
	session.TotalSeconds += minutes * 60
	session.RemainingSeconds += minutes * 60
	e.sessions[topicID] = session
	return nil
}

// FinishSession drops the topic's session, reminder, and fired-once latch.
// Safe to call when nothing is active.
func (e *Engine) FinishSession(topicID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, topicID)
	delete(e.reminders, topicID)
	delete(e.notified, topicID)
}

// DismissReminder removes a raised reminder without starting a session. The
// fired-once latch stays set so the same scheduled minute does not re-raise.
func (e *Engine) DismissReminder(topicID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.reminders, topicID)
}

// ResetNotified clears the fired-once latch so a rescheduled topic can raise
// a reminder at its new minute.
func (e *Engine) ResetNotified(topicID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.notified, topicID)
	delete(e.reminders, topicID)
}

// Reminders returns the ids of topics with a raised, undismissed reminder.
func (e *Engine) Reminders() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.reminders))
	for id := range e.reminders {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (e *Engine) Sessions() map[string]Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]Session, len(e.sessions))
	for id, session := range e.sessions {
		out[id] = session
	}
	return out
}

func (e *Engine) SessionFor(topicID string) (Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	session, ok := e.sessions[topicID]
	return session, ok
}

func (e *Engine) emit(ev Event) {
	select {
	case e.out <- ev:
	default:
		atomic.AddUint64(&e.dropped, 1)
	}
}
