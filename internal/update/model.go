package update

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"

	"studyd/internal/planner"
	"studyd/internal/scheduler"
)

type View string

const (
	ViewOverview View = "Overview"
	ViewCalendar View = "Calendar"
	ViewSessions View = "Sessions"
	ViewSubjects View = "Subjects"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Overview string
	Calendar string
	Sessions string
	Subjects string
	Help     string
	Quit     string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	Tag   string
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

// ExecDesktopNotifier shells out to the platform notifier. The Tag keeps
// repeated reminders for one topic collapsed into a single bubble where the
// platform supports replacement.
type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		args := []string{n.Title, n.Body}
		if n.Tag != "" {
			args = append([]string{"--hint", "string:x-canonical-private-synchronous:" + n.Tag}, args...)
		}
		return exec.Command("notify-send", args...).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type Model struct {
	CurrentView    View
	Planner        *planner.Planner
	Config         RuntimeConfig
	Status         StatusBar
	Keys           GlobalKeyMap
	Palette        CommandPaletteState
	HelpVisible    bool
	Notifications  []Notification
	DesktopEnabled bool
	Quitting       bool
	LastError      error
	notifier       DesktopNotifier

	overviewCursor int
	calendarFocus  time.Time
	calendarCursor int
	sessionCursor  int
	subjectCursor  int

	// A returned cascade proposal waits here for the y/n decision.
	pendingCascade *planner.CascadeProposal
	cascadeTitle   string
	// Topic whose countdown just hit zero, awaiting extend-or-finish.
	completedTopic string

	commandInput    textinput.Model
	calendarTable   table.Model
	helpModel       help.Model
	sessionProgress progress.Model
	countdownArmed  bool
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type EngineEventMsg struct {
	Event scheduler.Event
}

type CountdownTickMsg struct{}

func NewModel(p *planner.Planner, notifier DesktopNotifier, cfg RuntimeConfig) Model {
	m := Model{
		CurrentView:    ViewOverview,
		Planner:        p,
		Config:         cfg,
		DesktopEnabled: cfg.DesktopNotifications,
		notifier:       NoopDesktopNotifier{},
		calendarFocus:  today(),
		Keys: GlobalKeyMap{
			Overview: "1",
			Calendar: "2",
			Sessions: "3",
			Subjects: "4",
			Help:     "?",
			Quit:     "q",
		},
	}
	if notifier != nil {
		m.notifier = notifier
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	input := textinput.New()
	input.Placeholder = "add-subject | add | start | extend | finish | dismiss | export | import | find"
	input.CharLimit = 200
	m.commandInput = input

	m.calendarTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "Time", Width: 6},
			{Title: "Topic", Width: 28},
			{Title: "Subject", Width: 16},
		}),
		table.WithHeight(8),
	)
	m.helpModel = help.New()
	m.sessionProgress = progress.New(progress.WithDefaultGradient())
}

func (m *Model) notify(title, body, level, tag string) {
	if body == "" {
		return
	}
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		Tag:   tag,
		At:    time.Now().UTC(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
	if m.DesktopEnabled && m.notifier != nil {
		_ = m.notifier.Send(n)
	}
}

// ringBell emits the terminal alert. Failures are invisible anyway; the
// in-app notification is the reliable channel.
func ringBell() {
	_, _ = os.Stdout.WriteString("\a")
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
