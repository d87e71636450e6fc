package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"studyd/internal/model"
	"studyd/internal/views"
)

func (m Model) selectedSubject() (model.Subject, bool) {
	subjects := m.Planner.Subjects()
	if len(subjects) == 0 {
		return model.Subject{}, false
	}
	cursor := m.subjectCursor
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(subjects) {
		cursor = len(subjects) - 1
	}
	return subjects[cursor], true
}

func (m Model) handleSubjectsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.subjectCursor < len(m.Planner.Subjects())-1 {
			m.subjectCursor++
		}
	case "k", "up":
		if m.subjectCursor > 0 {
			m.subjectCursor--
		}
	case "x":
		subject, ok := m.selectedSubject()
		if !ok {
			return m, nil
		}
		removed, err := m.Planner.DeleteSubject(subject.ID)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.subjectCursor = 0
		m.Status = StatusBar{Text: fmt.Sprintf("deleted %s and %d topic(s)", subject.Name, removed)}
	}
	return m, nil
}

func (m Model) renderSubjectsView() string {
	subjects := m.Planner.Subjects()
	data := views.SubjectsPanelData{Items: make([]views.SubjectItemData, 0, len(subjects))}
	for i, subject := range subjects {
		data.Items = append(data.Items, views.SubjectItemData{
			ID:        subject.ID,
			Name:      subject.Name,
			Total:     subject.TotalTopics,
			Completed: subject.CompletedTopics,
			Selected:  i == m.subjectCursor,
		})
	}
	return views.RenderSubjectsPanel(data)
}
