package scheduler

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"studyd/internal/model"
)

func TestEngineStressConcurrentLifecycleOps(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	topics := make([]model.Topic, 0, 200)
	for i := 0; i < 200; i++ {
		topics = append(topics, scheduledTopic(fmt.Sprintf("topic-%d", i), now))
	}
	engine := NewEngine(TopicSourceFunc(func() []model.Topic { return topics }), DefaultPollInterval, 4096)

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers + 1)

	// Ticks and lifecycle operations race; the engine must stay consistent.
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			engine.Tick(now.Add(time.Duration(i) * time.Second))
		}
	}()
	for w := 0; w < workers; w++ {
		w := w
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("topic-%d", (w*100+i)%200)
				_ = engine.StartSession(id, 5, now)
				_ = engine.ExtendSession(id, 5)
				if i%3 == 0 {
					engine.FinishSession(id)
				}
				engine.DismissReminder(id)
			}
		}()
	}
	wg.Wait()

	for id, session := range engine.Sessions() {
		if session.RemainingSeconds < 0 || session.TotalSeconds < session.RemainingSeconds {
			t.Fatalf("inconsistent session %s: %#v", id, session)
		}
	}
	for _, id := range engine.Reminders() {
		if _, active := engine.SessionFor(id); active {
			t.Fatalf("topic %s has both a reminder and a session", id)
		}
	}
}

func TestEngineDropsWhenConsumerIsSlow(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	topics := make([]model.Topic, 0, 25)
	for i := 0; i < 25; i++ {
		topics = append(topics, scheduledTopic(fmt.Sprintf("topic-%d", i), now))
	}
	engine := NewEngine(TopicSourceFunc(func() []model.Topic { return topics }), DefaultPollInterval, 1)

	engine.Tick(now)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0, got %d", engine.Dropped())
	}
}
