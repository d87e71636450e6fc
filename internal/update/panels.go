package update

import (
	"fmt"
	"strings"

	"studyd/internal/views"
)

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Body)
}

func (m Model) renderCascadePromptView() string {
	if m.pendingCascade == nil {
		return ""
	}
	return views.RenderCascadePrompt(views.CascadePromptData{
		Active:       true,
		TopicTitle:   m.cascadeTitle,
		DeltaMinutes: m.pendingCascade.DeltaMinutes,
		Affected:     m.cascadeAffectedCount(),
	})
}

// cascadeAffectedCount previews how many topics ApplyCascade would move, so
// the confirmation names the blast radius.
func (m Model) cascadeAffectedCount() int {
	if m.pendingCascade == nil || m.Planner == nil {
		return 0
	}
	count := 0
	for _, topic := range m.Planner.Topics() {
		if topic.Completed || topic.ID == m.pendingCascade.TopicID {
			continue
		}
		at, ok := topic.ScheduledAt()
		if ok && at.After(m.pendingCascade.OriginalStart) {
			count++
		}
	}
	return count
}

func (m Model) renderTopicDetailPane() string {
	topic, ok := m.selectedOverviewTopic()
	if !ok {
		return "detail:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("detail:\n")
	b.WriteString(fmt.Sprintf("title: %s\n", topic.Title))
	b.WriteString(fmt.Sprintf("subject: %s\n", m.subjectName(topic.SubjectID)))
	b.WriteString(fmt.Sprintf("priority: %s | duration: %dm\n", topic.Priority, topic.DurationMinutes))
	if len(topic.Subtopics) > 0 {
		b.WriteString("subtopics: " + strings.Join(topic.Subtopics, ", ") + "\n")
	}
	if len(topic.Resources) > 0 {
		b.WriteString("resources: " + strings.Join(topic.Resources, ", ") + "\n")
	}
	if topic.Notes != "" {
		b.WriteString("notes:\n" + views.RenderMarkdown(topic.Notes) + "\n")
	}
	return strings.TrimSpace(b.String())
}

func (m Model) topicTitle(id string) string {
	if m.Planner != nil {
		if topic, ok := m.Planner.TopicByID(id); ok {
			return topic.Title
		}
	}
	return id
}

func (m Model) subjectName(id string) string {
	if m.Planner != nil {
		if subject, ok := m.Planner.SubjectByID(id); ok {
			return subject.Name
		}
	}
	return ""
}

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}
