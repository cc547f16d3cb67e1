package tui

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragchat/internal/chat"
	"ragchat/internal/domain"
	"ragchat/internal/store"
)

const (
	sidebarWidth   = 28
	minMainWidth   = 30
	viewerMinWidth = 36
)

// sendSettledMsg is delivered once a send or retry has returned.
type sendSettledMsg struct {
	admitted bool
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	ctx      context.Context
	ctrl     *chat.Controller
	corpus   domain.Corpus
	overview string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width   int
	height  int
	ready   bool
	waiting bool
}

// New creates a new TUI model bound to a controller and the corpus its
// citations point into.
func New(ctx context.Context, ctrl *chat.Controller, corpus domain.Corpus, overview string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about the documents"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		corpus:   corpus,
		overview: overview,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and completion events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.refresh()
		return m, nil
	case sendSettledMsg:
		m.waiting = false
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		if !m.busy() {
			m.refresh()
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	case tea.KeyMsg:
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	// Global quits
	if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
		return m, tea.Quit, true
	}
	st := m.ctrl.Store().Snapshot()
	switch msg.String() {
	case "enter":
		q := strings.TrimSpace(m.input.Value())
		if q == "" || m.busy() {
			return m, nil, true
		}
		m.input.Reset()
		m.waiting = true
		return m, tea.Batch(m.sendCmd(q), m.spinner.Tick), true
	case "ctrl+r":
		if st.Error == "" || st.LastUserMessage == nil || m.busy() {
			return m, nil, true
		}
		m.waiting = true
		return m, tea.Batch(m.retryCmd(), m.spinner.Tick), true
	case "ctrl+n":
		m.ctrl.NewChat()
		m.refresh()
		return m, nil, true
	case "tab", "shift+tab":
		step := 1
		if msg.String() == "shift+tab" {
			step = -1
		}
		if next := cycleConversation(st, step); next != "" {
			m.ctrl.SwitchConversation(next)
			m.refresh()
		}
		return m, nil, true
	case "ctrl+o":
		if msgCites := latestCitations(st); len(msgCites) > 0 {
			m.ctrl.OpenCitation(msgCites[0], msgCites)
			m.resize()
			m.refresh()
		}
		return m, nil, true
	case "esc":
		if st.Viewer.IsOpen {
			m.ctrl.CloseViewer()
			m.resize()
			m.refresh()
		}
		return m, nil, true
	case "left", "right":
		if !st.Viewer.IsOpen {
			return m, nil, false
		}
		step := 1
		if msg.String() == "left" {
			step = -1
		}
		m.ctrl.SelectCitation(stepCitation(st.Viewer, step))
		return m, nil, true
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, true
	}
	return m, nil, false
}

func (m Model) busy() bool {
	return m.waiting || m.ctrl.Store().Snapshot().IsLoading
}

func (m Model) sendCmd(content string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return sendSettledMsg{admitted: ctrl.SendMessage(ctx, content, true)}
	}
}

func (m Model) retryCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return sendSettledMsg{admitted: ctrl.RetryLastMessage(ctx)}
	}
}

func (m *Model) resize() {
	if !m.ready {
		return
	}
	qw, qh := queryBoxStyle.GetFrameSize()
	fw, fh := transcriptStyle.GetFrameSize()
	reserved := 2 + 1 + 1 + qh // header + overview, status, input
	m.viewport.Width = max(minMainWidth, m.mainWidth()-fw)
	m.viewport.Height = max(3, m.height-reserved-fh)
	m.input.Width = max(10, m.mainWidth()-qw-len(m.input.Prompt)-1)
}

func (m Model) mainWidth() int {
	w := m.width - sidebarWidth
	if m.ctrl.Store().Snapshot().Viewer.IsOpen {
		w -= m.viewerWidth()
	}
	return max(minMainWidth, w)
}

func (m Model) viewerWidth() int {
	return max(viewerMinWidth, m.width*2/5)
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	st := m.ctrl.Store().Snapshot()
	m.viewport.SetContent(renderTranscript(st, m.viewport.Width, m.spinner.View()))
	m.viewport.GotoBottom()
}

// View renders the sidebar, transcript, input and optional viewer panel.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	st := m.ctrl.Store().Snapshot()

	header := headerStyle.Render("RAG Chat")
	overview := overviewStyle.Render(truncate(m.overview, m.mainWidth()))
	main := lipgloss.JoinVertical(lipgloss.Left,
		header,
		overview,
		transcriptStyle.Render(m.viewport.View()),
		queryBoxStyle.Render(m.input.View()),
		renderStatus(st, m.busy(), m.spinner.View()),
	)
	panels := []string{renderSidebar(st, sidebarWidth, m.height), main}
	if st.Viewer.IsOpen {
		panels = append(panels, renderViewer(st.Viewer, m.corpus, m.viewerWidth(), m.height))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panels...)
}

func cycleConversation(st store.State, step int) string {
	n := len(st.ConversationOrder)
	if n < 2 {
		return ""
	}
	idx := slices.Index(st.ConversationOrder, st.ActiveConversationID)
	if idx < 0 {
		return st.ConversationOrder[0]
	}
	return st.ConversationOrder[((idx+step)%n+n)%n]
}

// latestCitations returns the citations of the newest assistant message in
// the active conversation that has any.
func latestCitations(st store.State) []domain.Citation {
	conv, ok := st.ActiveConversation()
	if !ok {
		return nil
	}
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		msg := conv.Messages[i]
		if msg.Role == domain.RoleAssistant && len(msg.Citations) > 0 {
			return msg.Citations
		}
	}
	return nil
}

func stepCitation(v store.ViewerState, step int) string {
	n := len(v.Citations)
	if n == 0 {
		return ""
	}
	idx := slices.IndexFunc(v.Citations, func(c domain.Citation) bool { return c.ID == v.SelectedCitationID })
	if idx < 0 {
		idx = 0
	}
	return v.Citations[((idx+step)%n+n)%n].ID
}
