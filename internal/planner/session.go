package planner

import (
	"time"

	"studyd/internal/model"
	"studyd/internal/scheduler"
)

// CascadeProposal describes the ripple an extension would cause: every
// incomplete topic scheduled strictly after OriginalStart shifts by
// DeltaMinutes. The proposal is inert until ApplyCascade; extending never
// moves other topics on its own.
type CascadeProposal struct {
	TopicID       string
	OriginalStart time.Time
	DeltaMinutes  int
}

// StartSession begins a countdown for the topic. Zero or negative minutes
// fall back to the topic's planned duration.
func (p *Planner) StartSession(topicID string, minutes int) error {
	topic, ok := p.TopicByID(topicID)
	if !ok {
		return ErrTopicNotFound
	}
	if topic.Completed {
		return ErrTopicCompleted
	}
	if minutes <= 0 {
		minutes = topic.DurationMinutes
	}
	return p.engine.StartSession(topicID, minutes, time.Now())
}

// ExtendSession adds minutes to the topic's active session and returns the
// cascade the extension implies. The second return is nil when the topic has
// no scheduled slot, so there is nothing downstream to shift.
func (p *Planner) ExtendSession(topicID string, minutes int) (*CascadeProposal, error) {
	topic, ok := p.TopicByID(topicID)
	if !ok {
		return nil, ErrTopicNotFound
	}
	if err := p.engine.ExtendSession(topicID, minutes); err != nil {
		return nil, err
	}
	start, scheduled := topic.ScheduledAt()
	if !scheduled {
		return nil, nil
	}
	return &CascadeProposal{
		TopicID:       topicID,
		OriginalStart: start,
		DeltaMinutes:  minutes,
	}, nil
}

// ApplyCascade shifts every incomplete topic scheduled strictly after the
// proposal's original start by its delta, and re-arms each shifted topic's
// reminder latch. Returns the number of topics moved.
func (p *Planner) ApplyCascade(proposal CascadeProposal) (int, error) {
	if proposal.DeltaMinutes <= 0 {
		return 0, scheduler.ErrInvalidDuration
	}
	delta := time.Duration(proposal.DeltaMinutes) * time.Minute

	p.mu.Lock()
	shifted := make([]model.Topic, 0)
	for i, topic := range p.topics {
		if topic.Completed || topic.ID == proposal.TopicID {
			continue
		}
		at, ok := topic.ScheduledAt()
		if !ok || !at.After(proposal.OriginalStart) {
			continue
		}
		newDate, newClock, err := model.ShiftSchedule(*topic.ScheduledDate, topic.ScheduledTime, delta)
		if err != nil {
			continue
		}
		topic.ScheduledDate = &newDate
		topic.ScheduledTime = newClock
		p.topics[i] = topic
		shifted = append(shifted, topic)
	}
	p.mu.Unlock()

	for _, topic := range shifted {
		p.engine.ResetNotified(topic.ID)
		p.persistTopic(topic)
	}
	return len(shifted), nil
}

// FinishSession ends the topic's countdown, marks the topic completed, and
// bumps the subject aggregate. It tolerates a missing session: finishing is
// how a reminder-only topic gets closed out too.
func (p *Planner) FinishSession(topicID string) error {
	if _, ok := p.TopicByID(topicID); !ok {
		return ErrTopicNotFound
	}
	// SetCompleted drops the session and reminder through the engine.
	return p.SetCompleted(topicID, true)
}

// DismissReminder clears a raised reminder without touching the topic.
func (p *Planner) DismissReminder(topicID string) {
	p.engine.DismissReminder(topicID)
}
