package views

import (
	"fmt"
	"sort"
	"strings"
)

type OverviewItemData struct {
	ID       string
	Title    string
	Subject  string
	Date     string
	Time     string
	Priority string
	Reminder bool
	Active   bool
	Done     bool
}

type OverviewPanelData struct {
	Items      []OverviewItemData
	SelectedID string
}

type CalendarItemData struct {
	ID      string
	Title   string
	Subject string
	Date    string
	Time    string
	Done    bool
}

type CalendarPanelData struct {
	FocusDate string
	TableView string
	Items     []CalendarItemData
	Selected  *CalendarItemData
}

type SessionItemData struct {
	TopicID   string
	Title     string
	Timer     string
	Progress  string
	Pct       int
	Reminder  bool
	Selected  bool
}

type SessionsPanelData struct {
	Sessions  []SessionItemData
	Reminders []string
}

type SubjectItemData struct {
	ID        string
	Name      string
	Total     int
	Completed int
	Selected  bool
}

type SubjectsPanelData struct {
	Items []SubjectItemData
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

type CascadePromptData struct {
	Active       bool
	TopicTitle   string
	DeltaMinutes int
	Affected     int
}

func RenderOverviewPanel(data OverviewPanelData) string {
	var b strings.Builder
	b.WriteString("overview:\n")
	b.WriteString("actions: [j/k]move [enter]start [c]complete [x]dismiss\n")
	if len(data.Items) == 0 {
		b.WriteString("(nothing scheduled)")
		return strings.TrimSpace(b.String())
	}
	for _, item := range data.Items {
		cursor := " "
		if data.SelectedID == item.ID {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s", cursor, stateBadge(item), item.Title))
		if item.Subject != "" {
			b.WriteString(" (" + item.Subject + ")")
		}
		if item.Date != "" {
			b.WriteString(fmt.Sprintf(" @%s %s", item.Date, item.Time))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderCalendarPanel(data CalendarPanelData) string {
	var b strings.Builder
	b.WriteString("calendar:\n")
	b.WriteString(fmt.Sprintf("focus: %s\n", data.FocusDate))
	b.WriteString("actions: [h/l]day [t]today [j/k]agenda\n")
	if data.TableView != "" {
		b.WriteString(data.TableView + "\n")
	}

	grouped := make(map[string][]CalendarItemData)
	keys := make([]string, 0)
	for _, item := range data.Items {
		if _, ok := grouped[item.Date]; !ok {
			keys = append(keys, item.Date)
		}
		grouped[item.Date] = append(grouped[item.Date], item)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		b.WriteString("(agenda empty)")
		return b.String()
	}

	for _, day := range keys {
		b.WriteString(fmt.Sprintf("\n%s:\n", day))
		items := grouped[day]
		sort.SliceStable(items, func(i, j int) bool { return items[i].Time < items[j].Time })
		for _, item := range items {
			cursor := " "
			if data.Selected != nil && data.Selected.ID == item.ID {
				cursor = ">"
			}
			mark := " "
			if item.Done {
				mark = "x"
			}
			b.WriteString(fmt.Sprintf("%s [%s] %s %s", cursor, mark, item.Time, item.Title))
			if item.Subject != "" {
				b.WriteString(" (" + item.Subject + ")")
			}
			b.WriteString("\n")
		}
	}

	if data.Selected != nil {
		b.WriteString("\nagenda-metadata:\n")
		b.WriteString(fmt.Sprintf("id: %s\n", data.Selected.ID))
		b.WriteString(fmt.Sprintf("when: %s %s\n", data.Selected.Date, data.Selected.Time))
	}
	return strings.TrimSpace(b.String())
}

func RenderSessionsPanel(data SessionsPanelData) string {
	var b strings.Builder
	b.WriteString("sessions:\n")
	b.WriteString("actions: [j/k]move [e]+extend [f]finish [x]dismiss\n")
	if len(data.Sessions) == 0 {
		b.WriteString("(no active sessions)\n")
	}
	for _, s := range data.Sessions {
		cursor := " "
		if s.Selected {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s %s %d%%", cursor, s.Title, s.Timer, s.Progress, s.Pct))
		if s.Reminder {
			b.WriteString(" [reminder]")
		}
		b.WriteString("\n")
	}
	if len(data.Reminders) > 0 {
		b.WriteString("\nreminders due:\n")
		for _, title := range data.Reminders {
			b.WriteString("! " + title + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderSubjectsPanel(data SubjectsPanelData) string {
	var b strings.Builder
	b.WriteString("subjects:\n")
	b.WriteString("actions: [j/k]move [x]delete\n")
	if len(data.Items) == 0 {
		b.WriteString("(no subjects)")
		return b.String()
	}
	for _, item := range data.Items {
		cursor := " "
		if item.Selected {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %d/%d done\n", cursor, item.Name, item.Completed, item.Total))
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("\nnotification: [%s] %s", strings.ToUpper(level), body)
}

func RenderCascadePrompt(data CascadePromptData) string {
	if !data.Active {
		return ""
	}
	return fmt.Sprintf("\ncascade: shift %d later topic(s) by %d min after %q? [y/n]",
		data.Affected, data.DeltaMinutes, data.TopicTitle)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func stateBadge(item OverviewItemData) string {
	switch {
	case item.Done:
		return "[DONE]"
	case item.Active:
		return "[LIVE]"
	case item.Reminder:
		return "[DUE]"
	case item.Priority == "High":
		return "[HIGH]"
	default:
		return "[    ]"
	}
}
