package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"studyd/internal/model"
	"studyd/internal/views"
)

// overviewItems lists the incomplete topics: scheduled ones first in time
// order, then the unscheduled backlog.
func (m Model) overviewItems() []model.Topic {
	if m.Planner == nil {
		return nil
	}
	out := m.Planner.UpcomingTopics(0)
	for _, topic := range m.Planner.Topics() {
		if topic.Completed || topic.Scheduled() {
			continue
		}
		out = append(out, topic)
	}
	return out
}

func (m Model) selectedOverviewTopic() (model.Topic, bool) {
	items := m.overviewItems()
	if len(items) == 0 {
		return model.Topic{}, false
	}
	cursor := m.overviewCursor
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(items) {
		cursor = len(items) - 1
	}
	return items[cursor], true
}

func (m Model) handleOverviewKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	items := m.overviewItems()
	switch msg.String() {
	case "j", "down":
		if m.overviewCursor < len(items)-1 {
			m.overviewCursor++
		}
	case "k", "up":
		if m.overviewCursor > 0 {
			m.overviewCursor--
		}
	case "enter":
		topic, ok := m.selectedOverviewTopic()
		if !ok {
			return m, nil
		}
		if err := m.Planner.StartSession(topic.ID, 0); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: "session started: " + topic.Title}
		m.CurrentView = ViewSessions
		return m.withCountdown(nil)
	case "c":
		topic, ok := m.selectedOverviewTopic()
		if !ok {
			return m, nil
		}
		if err := m.Planner.SetCompleted(topic.ID, !topic.Completed); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: "completion toggled: " + topic.Title}
	case "x":
		topic, ok := m.selectedOverviewTopic()
		if !ok {
			return m, nil
		}
		m.Planner.DismissReminder(topic.ID)
		m.Status = StatusBar{Text: "reminder dismissed: " + topic.Title}
	}
	return m, nil
}

func (m Model) renderOverviewView() string {
	items := m.overviewItems()
	reminders := make(map[string]bool)
	if m.Planner != nil {
		for _, id := range m.Planner.Engine().Reminders() {
			reminders[id] = true
		}
	}

	data := views.OverviewPanelData{Items: make([]views.OverviewItemData, 0, len(items))}
	selected, hasSelection := m.selectedOverviewTopic()
	if hasSelection {
		data.SelectedID = selected.ID
	}
	for _, topic := range items {
		item := views.OverviewItemData{
			ID:       topic.ID,
			Title:    topic.Title,
			Subject:  m.subjectName(topic.SubjectID),
			Priority: string(topic.Priority),
			Reminder: reminders[topic.ID],
			Done:     topic.Completed,
		}
		if m.Planner != nil {
			_, item.Active = m.Planner.Engine().SessionFor(topic.ID)
		}
		if topic.ScheduledDate != nil {
			item.Date = topic.ScheduledDate.Format("2006-01-02")
			item.Time = topic.ScheduledTime
		}
		data.Items = append(data.Items, item)
	}
	return views.RenderOverviewPanel(data)
}
