package planner

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyd/internal/model"
	"studyd/internal/scheduler"
	"studyd/internal/storage"
)

var (
	ErrSubjectNotFound = errors.New("planner: subject not found")
	ErrTopicNotFound   = errors.New("planner: topic not found")
	ErrTopicCompleted  = errors.New("planner: topic already completed")
)

// Planner is the application-state object: it owns the subject and topic
// collections, keeps subject aggregates in step with topic mutations, and
// fronts the scheduler engine for session lifecycle operations. Persistence
// is fire-and-forget: repository errors go to the error hook and never block
// a state transition.
type Planner struct {
	mu       sync.Mutex
	subjects []model.Subject
	topics   []model.Topic
	repo     storage.Repository
	engine   *scheduler.Engine
	newID    func() string
	onError  func(error)
}

func New(repo storage.Repository, pollInterval time.Duration, eventBuffer int) *Planner {
	p := &Planner{
		repo:    repo,
		newID:   uuid.NewString,
		onError: func(error) {},
	}
	p.engine = scheduler.NewEngine(p, pollInterval, eventBuffer)
	return p
}

// Engine exposes the scheduler for Start/Stop and event consumption.
func (p *Planner) Engine() *scheduler.Engine {
	return p.engine
}

// SetErrorHook installs the sink for swallowed persistence errors.
func (p *Planner) SetErrorHook(hook func(error)) {
	if hook != nil {
		p.onError = hook
	}
}

// Load replaces the in-memory collections with the persisted ones.
func (p *Planner) Load(ctx context.Context) error {
	if p.repo == nil {
		return nil
	}
	subjects, err := p.repo.ListSubjects(ctx)
	if err != nil {
		return err
	}
	topics, err := p.repo.ListTopics(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.subjects = subjects
	p.topics = topics
	p.mu.Unlock()
	return nil
}

// Restore replaces the whole in-memory state with the given collections and
// rewrites the store in one transaction. Scheduler state for the previous
// topics is cleared so no reminder or session outlives its record.
func (p *Planner) Restore(ctx context.Context, subjects []model.Subject, topics []model.Topic) error {
	p.mu.Lock()
	previous := p.topics
	p.subjects = append([]model.Subject(nil), subjects...)
	p.topics = append([]model.Topic(nil), topics...)
	p.mu.Unlock()

	for _, topic := range previous {
		p.engine.FinishSession(topic.ID)
	}
	if p.repo == nil {
		return nil
	}
	return p.repo.ReplaceAll(ctx, subjects, topics)
}

// TopicSnapshot implements scheduler.TopicSource.
func (p *Planner) TopicSnapshot() []model.Topic {
	return p.Topics()
}

func (p *Planner) Subjects() []model.Subject {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Subject, len(p.subjects))
	copy(out, p.subjects)
	return out
}

func (p *Planner) Topics() []model.Topic {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Topic, len(p.topics))
	copy(out, p.topics)
	return out
}

func (p *Planner) SubjectByID(id string) (model.Subject, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, subject := range p.subjects {
		if subject.ID == id {
			return subject, true
		}
	}
	return model.Subject{}, false
}

func (p *Planner) TopicByID(id string) (model.Topic, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, topic := range p.topics {
		if topic.ID == id {
			return topic, true
		}
	}
	return model.Topic{}, false
}

func (p *Planner) AddSubject(name, color string) (model.Subject, error) {
	subject := model.Subject{
		ID:    p.newID(),
		Name:  strings.TrimSpace(name),
		Color: color,
	}
	if err := subject.Validate(); err != nil {
		return model.Subject{}, err
	}
	p.mu.Lock()
	p.subjects = append(p.subjects, subject)
	p.mu.Unlock()
	p.persistSubject(subject)
	return subject, nil
}

// DeleteSubject removes the subject and every topic referencing it. The
// topics go first; there is no cascading delete in the store. Returns the
// number of removed topics.
func (p *Planner) DeleteSubject(id string) (int, error) {
	p.mu.Lock()
	idx := -1
	for i, subject := range p.subjects {
		if subject.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.mu.Unlock()
		return 0, ErrSubjectNotFound
	}

	removed := make([]string, 0)
	kept := make([]model.Topic, 0, len(p.topics))
	for _, topic := range p.topics {
		if topic.SubjectID == id {
			removed = append(removed, topic.ID)
			continue
		}
		kept = append(kept, topic)
	}
	p.topics = kept
	p.subjects = append(p.subjects[:idx], p.subjects[idx+1:]...)
	p.mu.Unlock()

	for _, topicID := range removed {
		p.engine.FinishSession(topicID)
		p.deleteTopicRecord(topicID)
	}
	p.deleteSubjectRecord(id)
	return len(removed), nil
}

// TopicInput carries the user-editable topic fields.
type TopicInput struct {
	SubjectID       string
	Title           string
	Description     string
	Subtopics       []string
	Priority        model.Priority
	ScheduledDate   *time.Time
	ScheduledTime   string
	DurationMinutes int
	Notes           string
	Resources       []string
}

func (p *Planner) AddTopic(in TopicInput) (model.Topic, error) {
	topic := model.Topic{
		ID:              p.newID(),
		SubjectID:       in.SubjectID,
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		Subtopics:       in.Subtopics,
		Priority:        in.Priority,
		ScheduledDate:   in.ScheduledDate,
		ScheduledTime:   in.ScheduledTime,
		DurationMinutes: in.DurationMinutes,
		Notes:           in.Notes,
		Resources:       in.Resources,
	}
	if err := topic.Validate(); err != nil {
		return model.Topic{}, err
	}

	p.mu.Lock()
	idx := p.subjectIndexLocked(in.SubjectID)
	if idx < 0 {
		p.mu.Unlock()
		return model.Topic{}, ErrSubjectNotFound
	}
	p.topics = append(p.topics, topic)
	p.subjects[idx].TotalTopics++
	subject := p.subjects[idx]
	p.mu.Unlock()

	p.persistTopic(topic)
	p.persistSubject(subject)
	return topic, nil
}

// UpdateTopic replaces the editable fields of an existing topic. The
// completion flag is owned by SetCompleted and preserved here. When the
// schedule moves, the reminder latch is reset so the new minute can fire.
func (p *Planner) UpdateTopic(id string, in TopicInput) (model.Topic, error) {
	p.mu.Lock()
	tIdx := p.topicIndexLocked(id)
	if tIdx < 0 {
		p.mu.Unlock()
		return model.Topic{}, ErrTopicNotFound
	}
	existing := p.topics[tIdx]

	updated := existing
	updated.SubjectID = in.SubjectID
	updated.Title = strings.TrimSpace(in.Title)
	updated.Description = in.Description
	updated.Subtopics = in.Subtopics
	updated.Priority = in.Priority
	updated.ScheduledDate = in.ScheduledDate
	updated.ScheduledTime = in.ScheduledTime
	updated.DurationMinutes = in.DurationMinutes
	updated.Notes = in.Notes
	updated.Resources = in.Resources
	if err := updated.Validate(); err != nil {
		p.mu.Unlock()
		return model.Topic{}, err
	}

	touched := make([]model.Subject, 0, 2)
	if updated.SubjectID != existing.SubjectID {
		newIdx := p.subjectIndexLocked(updated.SubjectID)
		if newIdx < 0 {
			p.mu.Unlock()
			return model.Topic{}, ErrSubjectNotFound
		}
		if oldIdx := p.subjectIndexLocked(existing.SubjectID); oldIdx >= 0 {
			p.subjects[oldIdx].TotalTopics--
			if existing.Completed {
				p.subjects[oldIdx].CompletedTopics--
			}
			touched = append(touched, p.subjects[oldIdx])
		}
		p.subjects[newIdx].TotalTopics++
		if existing.Completed {
			p.subjects[newIdx].CompletedTopics++
		}
		touched = append(touched, p.subjects[newIdx])
	}

	p.topics[tIdx] = updated
	p.mu.Unlock()

	if scheduleChanged(existing, updated) {
		p.engine.ResetNotified(id)
	}
	p.persistTopic(updated)
	for _, subject := range touched {
		p.persistSubject(subject)
	}
	return updated, nil
}

func (p *Planner) DeleteTopic(id string) error {
	p.mu.Lock()
	tIdx := p.topicIndexLocked(id)
	if tIdx < 0 {
		p.mu.Unlock()
		return ErrTopicNotFound
	}
	topic := p.topics[tIdx]
	p.topics = append(p.topics[:tIdx], p.topics[tIdx+1:]...)

	var subject model.Subject
	persistSubject := false
	if sIdx := p.subjectIndexLocked(topic.SubjectID); sIdx >= 0 {
		p.subjects[sIdx].TotalTopics--
		if topic.Completed {
			p.subjects[sIdx].CompletedTopics--
		}
		subject = p.subjects[sIdx]
		persistSubject = true
	}
	p.mu.Unlock()

	p.engine.FinishSession(id)
	p.deleteTopicRecord(id)
	if persistSubject {
		p.persistSubject(subject)
	}
	return nil
}

// SetCompleted flips the completion flag and adjusts the subject aggregate
// exactly once per transition. Completing a topic drops its reminder and
// session; un-completing re-arms the reminder latch.
func (p *Planner) SetCompleted(id string, completed bool) error {
	p.mu.Lock()
	tIdx := p.topicIndexLocked(id)
	if tIdx < 0 {
		p.mu.Unlock()
		return ErrTopicNotFound
	}
	topic := p.topics[tIdx]
	if topic.Completed == completed {
		p.mu.Unlock()
		return nil
	}
	topic.Completed = completed
	p.topics[tIdx] = topic

	var subject model.Subject
	persistSubject := false
	if sIdx := p.subjectIndexLocked(topic.SubjectID); sIdx >= 0 {
		if completed {
			p.subjects[sIdx].CompletedTopics++
		} else {
			p.subjects[sIdx].CompletedTopics--
		}
		subject = p.subjects[sIdx]
		persistSubject = true
	}
	p.mu.Unlock()

	if completed {
		p.engine.FinishSession(id)
	} else {
		p.engine.ResetNotified(id)
	}
	p.persistTopic(topic)
	if persistSubject {
		p.persistSubject(subject)
	}
	return nil
}

// UpcomingTopics lists the next incomplete scheduled topics by instant.
func (p *Planner) UpcomingTopics(limit int) []model.Topic {
	type entry struct {
		topic model.Topic
		at    time.Time
	}
	entries := make([]entry, 0)
	for _, topic := range p.Topics() {
		if topic.Completed {
			continue
		}
		at, ok := topic.ScheduledAt()
		if !ok {
			continue
		}
		entries = append(entries, entry{topic: topic, at: at})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]model.Topic, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.topic)
	}
	return out
}

// TopicsBetween lists scheduled topics whose instant falls in [start, end),
// completed ones included, ordered by instant.
func (p *Planner) TopicsBetween(start, end time.Time) []model.Topic {
	type entry struct {
		topic model.Topic
		at    time.Time
	}
	entries := make([]entry, 0)
	for _, topic := range p.Topics() {
		at, ok := topic.ScheduledAt()
		if !ok || at.Before(start) || !at.Before(end) {
			continue
		}
		entries = append(entries, entry{topic: topic, at: at})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })
	out := make([]model.Topic, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.topic)
	}
	return out
}

// SearchTopics matches the query against topic title, description, and the
// owning subject's name, case-insensitively.
func (p *Planner) SearchTopics(query string) []model.Topic {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return p.Topics()
	}
	names := make(map[string]string)
	for _, subject := range p.Subjects() {
		names[subject.ID] = strings.ToLower(subject.Name)
	}
	out := make([]model.Topic, 0)
	for _, topic := range p.Topics() {
		if strings.Contains(strings.ToLower(topic.Title), q) ||
			strings.Contains(strings.ToLower(topic.Description), q) ||
			strings.Contains(names[topic.SubjectID], q) {
			out = append(out, topic)
		}
	}
	return out
}

func (p *Planner) subjectIndexLocked(id string) int {
	for i, subject := range p.subjects {
		if subject.ID == id {
			return i
		}
	}
	return -1
}

func (p *Planner) topicIndexLocked(id string) int {
	for i, topic := range p.topics {
		if topic.ID == id {
			return i
		}
	}
	return -1
}

func scheduleChanged(before, after model.Topic) bool {
	if (before.ScheduledDate == nil) != (after.ScheduledDate == nil) {
		return true
	}
	if before.ScheduledDate != nil && !before.ScheduledDate.Equal(*after.ScheduledDate) {
		return true
	}
	return before.ScheduledTime != after.ScheduledTime
}

func (p *Planner) persistSubject(subject model.Subject) {
	if p.repo == nil {
		return
	}
	if err := p.repo.UpsertSubject(context.Background(), subject); err != nil {
		p.onError(err)
	}
}

func (p *Planner) persistTopic(topic model.Topic) {
	if p.repo == nil {
		return
	}
	if err := p.repo.UpsertTopic(context.Background(), topic); err != nil {
		p.onError(err)
	}
}

func (p *Planner) deleteSubjectRecord(id string) {
	if p.repo == nil {
		return
	}
	if err := p.repo.DeleteSubject(context.Background(), id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		p.onError(err)
	}
}

func (p *Planner) deleteTopicRecord(id string) {
	if p.repo == nil {
		return
	}
	if err := p.repo.DeleteTopic(context.Background(), id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		p.onError(err)
	}
}
