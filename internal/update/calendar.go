package update

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"studyd/internal/model"
	"studyd/internal/views"
)

const calendarWindowDays = 7

// calendarItems lists the scheduled topics inside the focus window, one week
// starting at the focus date. Completed topics stay on the calendar.
func (m Model) calendarItems() []model.Topic {
	if m.Planner == nil {
		return nil
	}
	windowStart := m.calendarFocus
	windowEnd := windowStart.AddDate(0, 0, calendarWindowDays)
	return m.Planner.TopicsBetween(windowStart, windowEnd)
}

func (m Model) handleCalendarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.calendarFocus = m.calendarFocus.AddDate(0, 0, -1)
		m.calendarCursor = 0
	case "l", "right":
		m.calendarFocus = m.calendarFocus.AddDate(0, 0, 1)
		m.calendarCursor = 0
	case "t":
		m.calendarFocus = today()
		m.calendarCursor = 0
	case "j", "down":
		if m.calendarCursor < len(m.calendarItems())-1 {
			m.calendarCursor++
		}
	case "k", "up":
		if m.calendarCursor > 0 {
			m.calendarCursor--
		}
	}
	return m, nil
}

func (m Model) renderCalendarView() string {
	items := m.calendarItems()

	rows := make([]table.Row, 0, len(items))
	data := views.CalendarPanelData{
		FocusDate: m.calendarFocus.Format("2006-01-02"),
		Items:     make([]views.CalendarItemData, 0, len(items)),
	}
	for i, topic := range items {
		subject := m.subjectName(topic.SubjectID)
		rows = append(rows, table.Row{topic.ScheduledTime, topic.Title, subject})
		item := views.CalendarItemData{
			ID:      topic.ID,
			Title:   topic.Title,
			Subject: subject,
			Date:    topic.ScheduledDate.Format("2006-01-02"),
			Time:    topic.ScheduledTime,
			Done:    topic.Completed,
		}
		data.Items = append(data.Items, item)
		if i == m.calendarCursor {
			selected := item
			data.Selected = &selected
		}
	}
	m.calendarTable.SetRows(rows)
	data.TableView = m.calendarTable.View()
	return views.RenderCalendarPanel(data)
}
