package update

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"studyd/internal/commands"
	"studyd/internal/export"
	"studyd/internal/model"
	"studyd/internal/planner"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m, nil
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.Palette.Active = false
		m.Palette.Input = ""
		return m, nil
	}

	sessionTouched := false
	res, err := commands.Execute(cmd, commands.Handlers{
		AddSubject: func(a commands.AddSubjectArgs) (commands.Result, error) {
			subject, err := m.Planner.AddSubject(a.Name, a.Color)
			if err != nil {
				return commands.Result{}, err
			}
			m.CurrentView = ViewSubjects
			return commands.Result{Message: fmt.Sprintf("added subject: %s", subject.Name)}, nil
		},
		AddTopic: func(a commands.AddTopicArgs) (commands.Result, error) {
			input, err := m.topicInputFromArgs(a)
			if err != nil {
				return commands.Result{}, err
			}
			topic, err := m.Planner.AddTopic(input)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added topic: %s", topic.Title)}, nil
		},
		Start: func(a commands.StartArgs) (commands.Result, error) {
			topic, err := m.resolveTopic(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.Planner.StartSession(topic.ID, a.Minutes); err != nil {
				return commands.Result{}, err
			}
			sessionTouched = true
			m.CurrentView = ViewSessions
			return commands.Result{Message: fmt.Sprintf("session started: %s", topic.Title)}, nil
		},
		Extend: func(a commands.ExtendArgs) (commands.Result, error) {
			topic, err := m.resolveTopic(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			minutes := a.Minutes
			if minutes <= 0 {
				minutes = m.Config.ExtendMinutes
			}
			proposal, err := m.Planner.ExtendSession(topic.ID, minutes)
			if err != nil {
				return commands.Result{}, err
			}
			sessionTouched = true
			if proposal != nil {
				m.pendingCascade = proposal
				m.cascadeTitle = topic.Title
				return commands.Result{Message: fmt.Sprintf("extended %s by %d min; confirm cascade [y/n]", topic.Title, minutes)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("extended %s by %d min", topic.Title, minutes)}, nil
		},
		Finish: func(a commands.FinishArgs) (commands.Result, error) {
			topic, err := m.resolveTopic(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.Planner.FinishSession(topic.ID); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("completed: %s", topic.Title)}, nil
		},
		Dismiss: func(a commands.DismissArgs) (commands.Result, error) {
			topic, err := m.resolveTopic(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			m.Planner.DismissReminder(topic.ID)
			return commands.Result{Message: fmt.Sprintf("reminder dismissed: %s", topic.Title)}, nil
		},
		Export: func(a commands.ExportArgs) (commands.Result, error) {
			return m.runExport(a)
		},
		Import: func(a commands.ImportArgs) (commands.Result, error) {
			return m.runImport(a)
		},
		Find: func(a commands.FindArgs) (commands.Result, error) {
			matches := m.Planner.SearchTopics(a.Query)
			if len(matches) == 0 {
				return commands.Result{Message: fmt.Sprintf("no topics match %q", a.Query)}, nil
			}
			titles := make([]string, 0, len(matches))
			for _, topic := range matches {
				titles = append(titles, topic.Title)
			}
			return commands.Result{Message: fmt.Sprintf("%d match(es): %s", len(matches), strings.Join(titles, "; "))}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error", "")
	} else {
		m.Status = StatusBar{Text: res.Message, IsError: false}
		m.notify("Command", res.Message, "info", "")
	}

	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	if sessionTouched {
		return m.withCountdown(nil)
	}
	return m, nil
}

func (m Model) runExport(a commands.ExportArgs) (commands.Result, error) {
	switch a.Format {
	case "ical":
		path := a.Path
		if path == "" {
			path = "studyd.ics"
		}
		payload := export.ICalendar(m.Planner.Subjects(), m.Planner.Topics())
		if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
			return commands.Result{}, err
		}
		return commands.Result{Message: fmt.Sprintf("calendar written: %s", path)}, nil
	case "json":
		path := a.Path
		if path == "" {
			path = "studyd-backup.json"
		}
		payload, err := export.MarshalBackup(m.Planner.Subjects(), m.Planner.Topics())
		if err != nil {
			return commands.Result{}, err
		}
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return commands.Result{}, err
		}
		return commands.Result{Message: fmt.Sprintf("backup written: %s", path)}, nil
	default:
		return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "unsupported export format: " + a.Format}
	}
}

func (m Model) runImport(a commands.ImportArgs) (commands.Result, error) {
	raw, err := os.ReadFile(a.Path)
	if err != nil {
		return commands.Result{}, err
	}
	subjects, topics, skipped, err := export.UnmarshalBackup(raw)
	if err != nil {
		return commands.Result{}, err
	}
	if err := m.Planner.Restore(context.Background(), subjects, topics); err != nil {
		return commands.Result{}, err
	}
	msg := fmt.Sprintf("restored %d subject(s), %d topic(s)", len(subjects), len(topics))
	if skipped > 0 {
		msg += fmt.Sprintf(" (%d malformed record(s) skipped)", skipped)
	}
	return commands.Result{Message: msg}, nil
}

func (m Model) topicInputFromArgs(a commands.AddTopicArgs) (planner.TopicInput, error) {
	subject, err := m.resolveSubject(a.Subject)
	if err != nil {
		return planner.TopicInput{}, err
	}
	input := planner.TopicInput{
		SubjectID:       subject.ID,
		Title:           a.Title,
		Priority:        model.PriorityMedium,
		DurationMinutes: m.Config.DefaultSessionMinutes,
	}
	if a.Minutes > 0 {
		input.DurationMinutes = a.Minutes
	}
	switch a.Priority {
	case "":
	case "high":
		input.Priority = model.PriorityHigh
	case "medium":
		input.Priority = model.PriorityMedium
	case "low":
		input.Priority = model.PriorityLow
	default:
		return planner.TopicInput{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "prio: expects high, medium, or low"}
	}
	if a.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", a.Date, time.Local)
		if err != nil {
			return planner.TopicInput{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("on: expects YYYY-MM-DD, got %q", a.Date)}
		}
		input.ScheduledDate = &parsed
		input.ScheduledTime = a.Time
		if input.ScheduledTime == "" {
			return planner.TopicInput{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "on: also needs at:HH:MM"}
		}
	}
	return input, nil
}

// resolveSubject matches an id or a case-insensitive name fragment. The
// fragment has to be unambiguous.
func (m Model) resolveSubject(target string) (model.Subject, error) {
	needle := strings.ToLower(strings.TrimSpace(target))
	var match model.Subject
	found := 0
	for _, subject := range m.Planner.Subjects() {
		if subject.ID == target {
			return subject, nil
		}
		if strings.Contains(strings.ToLower(subject.Name), needle) {
			match = subject
			found++
		}
	}
	switch found {
	case 1:
		return match, nil
	case 0:
		return model.Subject{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no subject matches " + target}
	default:
		return model.Subject{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "ambiguous subject: " + target}
	}
}

// resolveTopic matches an id or a case-insensitive title fragment.
func (m Model) resolveTopic(target string) (model.Topic, error) {
	needle := strings.ToLower(strings.TrimSpace(target))
	var match model.Topic
	found := 0
	for _, topic := range m.Planner.Topics() {
		if topic.ID == target {
			return topic, nil
		}
		if strings.Contains(strings.ToLower(topic.Title), needle) {
			match = topic
			found++
		}
	}
	switch found {
	case 1:
		return match, nil
	case 0:
		return model.Topic{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no topic matches " + target}
	default:
		return model.Topic{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "ambiguous topic: " + target}
	}
}
