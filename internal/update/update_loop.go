package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"studyd/internal/scheduler"
	"studyd/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.Planner != nil {
		return waitForEventCmd(m.Planner.Engine().C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed)
		}
		if m.pendingCascade != nil {
			return m.handleCascadeKey(typed)
		}
		if m.completedTopic != "" {
			return m.handleCompletePromptKey(typed)
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Overview:
			m.CurrentView = ViewOverview
			return m, nil
		case m.Keys.Calendar:
			m.CurrentView = ViewCalendar
			return m, nil
		case m.Keys.Sessions:
			m.CurrentView = ViewSessions
			return m, nil
		case m.Keys.Subjects:
			m.CurrentView = ViewSubjects
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}

		switch m.CurrentView {
		case ViewOverview:
			return m.handleOverviewKey(typed)
		case ViewCalendar:
			return m.handleCalendarKey(typed)
		case ViewSessions:
			return m.handleSessionsKey(typed)
		case ViewSubjects:
			return m.handleSubjectsKey(typed)
		}

	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil

	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil

	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error", "")
		}
		return m, nil

	case EngineEventMsg:
		next, cmd := m.onEngineEvent(typed.Event)
		return next, cmd

	case CountdownTickMsg:
		return m.onCountdownTick()
	}

	return m, nil
}

func (m Model) onEngineEvent(ev scheduler.Event) (Model, tea.Cmd) {
	title := m.topicTitle(ev.TopicID)
	switch ev.Kind {
	case scheduler.EventReminder:
		ringBell()
		m.Status = StatusBar{Text: fmt.Sprintf("time to study: %s", title)}
		m.notify("Study Reminder", title, "info", "reminder-"+ev.TopicID)
	case scheduler.EventSessionComplete:
		ringBell()
		m.completedTopic = ev.TopicID
		m.Status = StatusBar{Text: fmt.Sprintf("session done: %s | [e]xtend %dm [f]inish", title, m.Config.ExtendMinutes)}
		m.notify("Session Complete", title, "info", "session-"+ev.TopicID)
	}
	if m.Planner != nil {
		return m, waitForEventCmd(m.Planner.Engine().C())
	}
	return m, nil
}

// onCountdownTick drives a one-second refresh while any session is running
// so the MM:SS display stays live between the engine's coarse polls.
func (m Model) onCountdownTick() (Model, tea.Cmd) {
	if m.Planner == nil {
		m.countdownArmed = false
		return m, nil
	}
	m.Planner.Engine().Tick(time.Now())
	if len(m.Planner.Engine().Sessions()) == 0 {
		m.countdownArmed = false
		return m, nil
	}
	return m, countdownTickCmd()
}

func (m Model) handleCascadeKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		proposal := *m.pendingCascade
		m.pendingCascade = nil
		moved, err := m.Planner.ApplyCascade(proposal)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: fmt.Sprintf("shifted %d topic(s) by %d min", moved, proposal.DeltaMinutes)}
	case "n", "N", "esc":
		m.pendingCascade = nil
		m.Status = StatusBar{Text: "cascade declined; later topics unchanged"}
	}
	return m, nil
}

func (m Model) handleCompletePromptKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	topicID := m.completedTopic
	switch msg.String() {
	case "e":
		m.completedTopic = ""
		return m.extendTopic(topicID, m.Config.ExtendMinutes)
	case "f", "enter":
		m.completedTopic = ""
		if err := m.Planner.FinishSession(topicID); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.Status = StatusBar{Text: fmt.Sprintf("completed: %s", m.topicTitle(topicID))}
	case "esc":
		m.completedTopic = ""
		m.Status = StatusBar{}
	}
	return m, nil
}

// extendTopic adds minutes to the topic's session and stages the resulting
// cascade proposal for confirmation.
func (m Model) extendTopic(topicID string, minutes int) (Model, tea.Cmd) {
	proposal, err := m.Planner.ExtendSession(topicID, minutes)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	title := m.topicTitle(topicID)
	if proposal == nil {
		m.Status = StatusBar{Text: fmt.Sprintf("extended %s by %d min", title, minutes)}
		return m.withCountdown(nil)
	}
	m.pendingCascade = proposal
	m.cascadeTitle = title
	m.Status = StatusBar{Text: fmt.Sprintf("extended %s by %d min; confirm cascade [y/n]", title, minutes)}
	return m.withCountdown(nil)
}

// withCountdown arms the per-second refresh when a session is running and
// the ticker is not already in flight.
func (m Model) withCountdown(cmd tea.Cmd) (Model, tea.Cmd) {
	if m.Planner == nil || m.countdownArmed {
		return m, cmd
	}
	if len(m.Planner.Engine().Sessions()) == 0 {
		return m, cmd
	}
	m.countdownArmed = true
	if cmd == nil {
		return m, countdownTickCmd()
	}
	return m, tea.Batch(cmd, countdownTickCmd())
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		status = fmt.Sprintf("status: %s", m.Status.Text)
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		}
	}

	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewOverview:
		leftPane = m.renderOverviewView()
		rightPane = m.renderCommandPalette() + m.renderTopicDetailPane() + m.renderHelpIfVisible()
	case ViewCalendar:
		leftPane = m.renderCalendarView()
		rightPane = m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewSessions:
		leftPane = m.renderSessionsView()
		rightPane = m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewSubjects:
		leftPane = m.renderSubjectsView()
		rightPane = m.renderCommandPalette() + m.renderHelpIfVisible()
	}

	alert := m.renderNotificationsView() + m.renderCascadePromptView()

	return views.RenderApp(views.AppData{
		Header:      fmt.Sprintf("studyd | view: %s", m.CurrentView),
		LeftPane:    leftPane,
		RightPane:   rightPane,
		StatusLine:  status,
		StatusError: m.Status.IsError,
		Alert:       alert,
		Footer: fmt.Sprintf("keys: %s overview | %s cal | %s sessions | %s subjects | / cmd | %s help | %s quit",
			m.Keys.Overview, m.Keys.Calendar, m.Keys.Sessions, m.Keys.Subjects, m.Keys.Help, m.Keys.Quit),
	})
}

func waitForEventCmd(ch <-chan scheduler.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return EngineEventMsg{Event: ev}
	}
}

func countdownTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return CountdownTickMsg{} })
}

func isKnownView(v View) bool {
	switch v {
	case ViewOverview, ViewCalendar, ViewSessions, ViewSubjects:
		return true
	default:
		return false
	}
}
