package update

import (
	"sort"

	tea "github.com/charmbracelet/bubbletea"

	"studyd/internal/scheduler"
	"studyd/internal/views"
)

// activeSessions returns the engine's sessions in a stable topic-id order so
// the cursor does not jump between renders.
func (m Model) activeSessions() []scheduler.Session {
	if m.Planner == nil {
		return nil
	}
	byID := m.Planner.Engine().Sessions()
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]scheduler.Session, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out
}

func (m Model) selectedSession() (scheduler.Session, bool) {
	sessions := m.activeSessions()
	if len(sessions) == 0 {
		return scheduler.Session{}, false
	}
	cursor := m.sessionCursor
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(sessions) {
		cursor = len(sessions) - 1
	}
	return sessions[cursor], true
}

func (m Model) handleSessionsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.sessionCursor < len(m.activeSessions())-1 {
			m.sessionCursor++
		}
	case "k", "up":
		if m.sessionCursor > 0 {
			m.sessionCursor--
		}
	case "e":
		session, ok := m.selectedSession()
		if !ok {
			return m, nil
		}
		return m.extendTopic(session.TopicID, m.Config.QuickExtendMinutes)
	case "E":
		session, ok := m.selectedSession()
		if !ok {
			return m, nil
		}
		return m.extendTopic(session.TopicID, m.Config.ExtendMinutes)
	case "f":
		session, ok := m.selectedSession()
		if !ok {
			return m, nil
		}
		if err := m.Planner.FinishSession(session.TopicID); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: "completed: " + m.topicTitle(session.TopicID)}
	case "x":
		reminders := m.Planner.Engine().Reminders()
		if len(reminders) == 0 {
			return m, nil
		}
		m.Planner.DismissReminder(reminders[0])
		m.Status = StatusBar{Text: "reminder dismissed: " + m.topicTitle(reminders[0])}
	}
	return m, nil
}

func (m Model) renderSessionsView() string {
	sessions := m.activeSessions()
	reminders := make(map[string]bool)
	reminderTitles := make([]string, 0)
	if m.Planner != nil {
		for _, id := range m.Planner.Engine().Reminders() {
			reminders[id] = true
			reminderTitles = append(reminderTitles, m.topicTitle(id))
		}
	}

	data := views.SessionsPanelData{
		Sessions:  make([]views.SessionItemData, 0, len(sessions)),
		Reminders: reminderTitles,
	}
	for i, session := range sessions {
		pct := 0
		if session.TotalSeconds > 0 {
			pct = 100 * (session.TotalSeconds - session.RemainingSeconds) / session.TotalSeconds
		}
		data.Sessions = append(data.Sessions, views.SessionItemData{
			TopicID:  session.TopicID,
			Title:    m.topicTitle(session.TopicID),
			Timer:    formatDuration(session.RemainingSeconds),
			Progress: m.sessionProgress.ViewAs(float64(pct) / 100),
			Pct:      pct,
			Reminder: reminders[session.TopicID],
			Selected: i == m.sessionCursor,
		})
	}
	return views.RenderSessionsPanel(data)
}
