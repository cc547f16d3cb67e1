package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"ragchat/internal/domain"
	"ragchat/internal/store"
	"ragchat/internal/viewer"
)

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	overviewStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sidebarStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	viewerStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("14")).Padding(0, 1)
	userLabel       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	citationStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	spinnerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	highlightStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11"))
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
)

const helpLine = "enter send · ctrl+n new · tab switch · ctrl+o sources · ctrl+c quit"

func renderTranscript(st store.State, width int, spin string) string {
	conv, ok := st.ActiveConversation()
	if !ok || len(conv.Messages) == 0 {
		return overviewStyle.Render("No messages yet. Ask a question about the documents.")
	}
	var b strings.Builder
	for i, msg := range conv.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(renderMessage(msg, width))
	}
	if st.IsLoading {
		b.WriteString("\n\n")
		b.WriteString(assistantLabel.Render("Assistant") + " " + spin + " searching documents...")
	}
	return b.String()
}

func renderMessage(msg domain.Message, width int) string {
	label := userLabel.Render("You")
	if msg.Role == domain.RoleAssistant {
		label = assistantLabel.Render("Assistant")
	}
	body := wordwrap.String(msg.Content, max(10, width))
	if msg.Status == domain.StatusError {
		body = errorStyle.Render(body)
	}
	lines := []string{label, body}
	for i, c := range msg.Citations {
		lines = append(lines, citationStyle.Render(citationLabel(i, c)))
	}
	return strings.Join(lines, "\n")
}

func citationLabel(i int, c domain.Citation) string {
	return fmt.Sprintf("[%d] %s · p. %s", i+1, c.Title, c.Page)
}

func renderSidebar(st store.State, width, height int) string {
	inner := width - 4
	lines := []string{headerStyle.Render("Conversations")}
	for _, id := range st.ConversationOrder {
		conv := st.ConversationsByID[id]
		title := truncate(conv.Title, inner-2)
		if id == st.ActiveConversationID {
			lines = append(lines, activeStyle.Render("▸ "+title))
		} else {
			lines = append(lines, "  "+title)
		}
	}
	return sidebarStyle.Width(width - 2).Height(max(3, height-2)).Render(strings.Join(lines, "\n"))
}

func renderStatus(st store.State, busy bool, spin string) string {
	switch {
	case busy:
		return statusStyle.Render(spin + " Waiting for the assistant...")
	case st.Error != "":
		hint := ""
		if st.LastUserMessage != nil {
			hint = " (ctrl+r to retry)"
		}
		return errorStyle.Render(st.Error + hint)
	default:
		return overviewStyle.Render(helpLine)
	}
}

func renderViewer(v store.ViewerState, corpus domain.Corpus, width, height int) string {
	page, ok := viewer.Resolve(v, corpus)
	if !ok {
		return ""
	}
	inner := width - 4
	lines := []string{
		overviewStyle.Render("DOCUMENT VIEWER · esc close · ←/→ select"),
		headerStyle.Render(truncate(page.DocumentTitle, inner)),
		"",
	}
	for i, c := range v.Citations {
		label := truncate(citationLabel(i, c), inner-2)
		if i == page.Index {
			lines = append(lines, selectedStyle.Render("▸ "+label))
		} else {
			lines = append(lines, "  "+label)
		}
	}
	lines = append(lines, "", headerStyle.Render(fmt.Sprintf("Page %s", page.Citation.Page)))
	lines = append(lines, wordwrap.String(renderSegments(page.Segments), max(10, inner)))
	return viewerStyle.Width(width - 2).Height(max(3, height-2)).Render(strings.Join(lines, "\n"))
}

func renderSegments(segs []viewer.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Highlighted {
			b.WriteString(highlightStyle.Render(s.Text))
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return string([]rune(s)[:n-1]) + "…"
}
