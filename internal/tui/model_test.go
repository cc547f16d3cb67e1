package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/chat"
	"ragchat/internal/corpus"
	"ragchat/internal/domain"
	"ragchat/internal/store"
)

type cannedRetriever struct {
	resp *domain.ChatResponse
	err  error
}

func (r cannedRetriever) Retrieve(context.Context, string) (*domain.ChatResponse, error) {
	return r.resp, r.err
}

var mfaCitations = []domain.Citation{
	{ID: "c1", DocumentID: "sec-policy", Title: "Security Policy Handbook", Page: "2", Snippet: "Access Control: MFA is required for all privileged accounts."},
	{ID: "c2", DocumentID: "onboarding", Title: "Employee Onboarding Guide", Page: "3", Snippet: "Training: Required training includes privacy, security awareness, and secure coding."},
}

func newTestModel(t *testing.T, r domain.Retriever) Model {
	t.Helper()
	ctrl := chat.New(store.New(), r)
	m := New(context.Background(), ctrl, corpus.Default(), "overview")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return next.(Model)
}

func press(t *testing.T, m Model, key tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key)
	return next.(Model), cmd
}

// drain runs cmd and any batched commands, feeding settle messages back.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case sendSettledMsg:
			next, _ := m.Update(msg)
			m = next.(Model)
		}
	}
	return m
}

func TestEnterSendsMessage(t *testing.T) {
	m := newTestModel(t, cannedRetriever{resp: &domain.ChatResponse{Answer: "From Security Policy Handbook, here is what I found: MFA.", Citations: mfaCitations}})
	m.input.SetValue("What about MFA?")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Empty(t, m.input.Value())
	assert.True(t, m.busy())

	m = drain(t, m, cmd)
	assert.False(t, m.busy())

	conv, ok := m.ctrl.Store().Snapshot().ActiveConversation()
	require.True(t, ok)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "What about MFA?", conv.Title)

	view := m.View()
	assert.Contains(t, view, "What about MFA?")
	assert.Contains(t, view, "[1] Security Policy Handbook · p. 2")
}

func TestEnterWithBlankInputDoesNothing(t *testing.T) {
	m := newTestModel(t, cannedRetriever{})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, m.busy())
}

func TestFailureShowsRetryHint(t *testing.T) {
	m := newTestModel(t, cannedRetriever{err: assert.AnError})
	m.input.SetValue("Trigger error")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = drain(t, m, cmd)

	st := m.ctrl.Store().Snapshot()
	assert.Equal(t, chat.UnreachableNotice, st.Error)
	assert.Contains(t, m.View(), "ctrl+r to retry")

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	m = drain(t, m, cmd)
	conv, _ := m.ctrl.Store().Snapshot().ActiveConversation()
	assert.Len(t, conv.Messages, 3)
}

func TestRetryWithoutErrorIsIgnored(t *testing.T) {
	m := newTestModel(t, cannedRetriever{})
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Nil(t, cmd)
}

func TestNewChatAndCycleConversations(t *testing.T) {
	m := newTestModel(t, cannedRetriever{})
	first := m.ctrl.Store().Snapshot().ActiveConversationID

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	second := m.ctrl.Store().Snapshot().ActiveConversationID
	require.NotEqual(t, first, second)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, first, m.ctrl.Store().Snapshot().ActiveConversationID)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, second, m.ctrl.Store().Snapshot().ActiveConversationID)
	assert.Equal(t, 2, strings.Count(m.View(), "New chat"))
}

func TestViewerKeys(t *testing.T) {
	m := newTestModel(t, cannedRetriever{resp: &domain.ChatResponse{Answer: "answer", Citations: mfaCitations}})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.False(t, m.ctrl.Store().Snapshot().Viewer.IsOpen, "nothing to open yet")

	m.input.SetValue("mfa")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = drain(t, m, cmd)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	v := m.ctrl.Store().Snapshot().Viewer
	require.True(t, v.IsOpen)
	assert.Equal(t, "c1", v.SelectedCitationID)
	assert.Contains(t, m.View(), "DOCUMENT VIEWER")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "c2", m.ctrl.Store().Snapshot().Viewer.SelectedCitationID)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "c1", m.ctrl.Store().Snapshot().Viewer.SelectedCitationID)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "c2", m.ctrl.Store().Snapshot().Viewer.SelectedCitationID)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	v = m.ctrl.Store().Snapshot().Viewer
	assert.False(t, v.IsOpen)
	assert.Empty(t, v.Citations)
	assert.NotContains(t, m.View(), "DOCUMENT VIEWER")
}

func TestCtrlCQuits(t *testing.T) {
	m := newTestModel(t, cannedRetriever{})
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "", truncate("abc", 0))
}

func TestCycleConversationSingle(t *testing.T) {
	st := store.New().Snapshot()
	assert.Empty(t, cycleConversation(st, 1))
}
