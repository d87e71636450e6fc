package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// AppData is the fully rendered screen content. Panes arrive as plain
// strings; this layer only arranges and colors them.
type AppData struct {
	Header      string
	LeftPane    string
	RightPane   string
	StatusLine  string
	StatusError bool
	Alert       string
	Footer      string
}

const paneWidth = 58

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(paneWidth)
	alertStyle  = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).Padding(0, 1).Foreground(lipgloss.Color("11"))
	footerStyle = lipgloss.NewStyle().Faint(true)
)

// RenderApp lays out the two panes side by side with the header above and
// status, alert overlay, and key footer below.
func RenderApp(data AppData) string {
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Render(data.LeftPane),
		paneStyle.Render(data.RightPane),
	)

	var b strings.Builder
	b.WriteString(headerStyle.Render(data.Header))
	b.WriteString("\n")
	b.WriteString(row)
	if data.StatusLine != "" {
		style := statusStyle
		if data.StatusError {
			style = errorStyle
		}
		b.WriteString("\n")
		b.WriteString(style.Render(data.StatusLine))
	}
	if data.Alert != "" {
		b.WriteString("\n")
		b.WriteString(alertStyle.Render(data.Alert))
	}
	if data.Footer != "" {
		b.WriteString("\n")
		b.WriteString(footerStyle.Render(data.Footer))
	}
	return b.String()
}

// RenderMarkdown renders topic notes through glamour, falling back to the
// raw text when rendering fails.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
