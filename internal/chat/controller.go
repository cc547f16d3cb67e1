package chat

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"ragchat/internal/domain"
	"ragchat/internal/ids"
	"ragchat/internal/store"
)

// User-facing fallback texts.
const (
	NoResponseNotice     = "No response received. Please try again."
	UnreachableNotice    = "We could not reach the assistant. Please retry."
	NoUsableResponseText = "I did not receive a usable response. Please try again."
	FailureText          = "Something went wrong while fetching the response."
)

const (
	maxTitleRunes     = 40
	truncatedTitleLen = 37
)

// BuildConversationTitle derives a conversation title from the first user
// message.
func BuildConversationTitle(message string) string {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return store.DefaultTitle
	}
	if utf8.RuneCountInString(trimmed) > maxTitleRunes {
		return string([]rune(trimmed)[:truncatedTitleLen]) + "..."
	}
	return trimmed
}

// Controller drives sends against a Retriever and records every turn in the
// store. At most one retrieval is in flight at any time.
type Controller struct {
	store     *store.Store
	retriever domain.Retriever
	logger    *zap.Logger
	now       func() time.Time

	// admit serializes the check of IsLoading with setting it.
	admit sync.Mutex
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time source for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func New(st *store.Store, retriever domain.Retriever, opts ...Option) *Controller {
	c := &Controller{
		store:     st,
		retriever: retriever,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store exposes the state container the controller writes to.
func (c *Controller) Store() *store.Store { return c.store }

// SendMessage sends content in the active conversation and blocks until the
// retrieval settles. With appendUserMessage the user turn is appended before
// the call and is never rolled back. It reports false when the send was not
// admitted: blank content, or another send still in flight.
func (c *Controller) SendMessage(ctx context.Context, content string, appendUserMessage bool) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return false
	}
	conversationID, ok := c.begin(trimmed, appendUserMessage)
	if !ok {
		c.logger.Debug("send rejected, request in flight")
		return false
	}
	defer c.store.SetLoading(false)

	log := c.logger.With(zap.String("conversation_id", conversationID))
	log.Debug("send admitted", zap.Bool("append_user_message", appendUserMessage))

	resp, err := c.retriever.Retrieve(ctx, trimmed)
	switch {
	case err != nil:
		log.Warn("retrieval failed", zap.Error(err))
		c.store.SetError(UnreachableNotice)
		c.store.AddMessage(conversationID, c.assistantMessage(FailureText, domain.StatusError, nil))
	case resp == nil || strings.TrimSpace(resp.Answer) == "":
		log.Warn("retrieval returned no usable answer", zap.Bool("null", resp == nil))
		c.store.SetError(NoResponseNotice)
		c.store.AddMessage(conversationID, c.assistantMessage(NoUsableResponseText, domain.StatusError, nil))
	default:
		log.Info("retrieval settled", zap.Int("citations", len(resp.Citations)))
		c.store.AddMessage(conversationID, c.assistantMessage(resp.Answer, domain.StatusOK, resp.Citations))
	}
	return true
}

func (c *Controller) begin(content string, appendUserMessage bool) (string, bool) {
	c.admit.Lock()
	defer c.admit.Unlock()

	st := c.store.Snapshot()
	if st.IsLoading {
		return "", false
	}
	conversationID := st.ActiveConversationID
	if _, exists := st.ConversationsByID[conversationID]; !exists {
		conversationID = c.store.CreateConversation()
	}
	if appendUserMessage {
		c.store.AddMessage(conversationID, c.userMessage(content))
		if conv, ok := c.store.Conversation(conversationID); ok && len(conv.Messages) == 1 {
			title := BuildConversationTitle(content)
			c.store.UpdateConversation(conversationID, store.ConversationUpdate{Title: &title})
		}
	}
	c.store.SetLoading(true)
	c.store.SetError("")
	c.store.SetLastUserMessage(&store.LastUserMessage{ConversationID: conversationID, Content: content})
	return conversationID, true
}

// RetryLastMessage resends the last recorded user message without appending
// a second user turn.
func (c *Controller) RetryLastMessage(ctx context.Context) bool {
	st := c.store.Snapshot()
	if st.LastUserMessage == nil || st.IsLoading {
		return false
	}
	return c.SendMessage(ctx, st.LastUserMessage.Content, false)
}

// NewChat creates and activates an empty conversation and clears the error.
func (c *Controller) NewChat() string {
	id := c.store.CreateConversation()
	c.store.SetError("")
	return id
}

func (c *Controller) SwitchConversation(id string) {
	c.store.SetActiveConversation(id)
}

// OpenCitation opens the viewer on the citations of one message with
// citation selected.
func (c *Controller) OpenCitation(citation domain.Citation, citationsForMessage []domain.Citation) {
	c.store.OpenViewer(citationsForMessage, citation.ID)
}

func (c *Controller) CloseViewer() { c.store.CloseViewer() }

func (c *Controller) SelectCitation(id string) { c.store.SelectCitation(id) }

func (c *Controller) userMessage(content string) domain.Message {
	return domain.Message{
		ID:        ids.New("msg"),
		Role:      domain.RoleUser,
		Content:   content,
		CreatedAt: c.now(),
		Status:    domain.StatusOK,
	}
}

func (c *Controller) assistantMessage(content string, status domain.Status, citations []domain.Citation) domain.Message {
	return domain.Message{
		ID:        ids.New("msg"),
		Role:      domain.RoleAssistant,
		Content:   content,
		CreatedAt: c.now(),
		Citations: citations,
		Status:    status,
	}
}
