package store

import (
	"maps"
	"slices"
	"sync"
	"time"

	"ragchat/internal/domain"
	"ragchat/internal/ids"
)

// DefaultTitle is the placeholder title of a conversation without messages.
const DefaultTitle = "New chat"

// LastUserMessage remembers the most recent send so it can be retried.
type LastUserMessage struct {
	ConversationID string
	Content        string
}

// ViewerState tracks which citation's source page is being inspected.
// When IsOpen is true Citations is non-empty and SelectedCitationID is
// either one of their ids or empty (consumers fall back to the first).
type ViewerState struct {
	IsOpen             bool
	Citations          []domain.Citation
	SelectedCitationID string
}

// State is an immutable snapshot of the whole store. Values reachable from
// a State are never modified after it is published; treat them as read-only.
type State struct {
	ConversationsByID    map[string]domain.Conversation
	ConversationOrder    []string
	ActiveConversationID string
	IsLoading            bool
	Error                string
	LastUserMessage      *LastUserMessage
	Viewer               ViewerState
}

// ActiveConversation returns the conversation the active pointer refers to.
func (s State) ActiveConversation() (domain.Conversation, bool) {
	c, ok := s.ConversationsByID[s.ActiveConversationID]
	return c, ok
}

// ConversationUpdate lists the fields UpdateConversation may overwrite.
// Nil fields are left untouched.
type ConversationUpdate struct {
	Title *string
}

// Store owns conversation, message and viewer state. Every mutation builds
// a new State and swaps it in under the lock, so readers holding an older
// snapshot never observe a partial update.
type Store struct {
	mu    sync.RWMutex
	state State
	now   func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a store holding a single empty, active conversation.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.state = s.initialState()
	return s
}

func (s *Store) initialState() State {
	conv := s.newConversation()
	return State{
		ConversationsByID:    map[string]domain.Conversation{conv.ID: conv},
		ConversationOrder:    []string{conv.ID},
		ActiveConversationID: conv.ID,
	}
}

func (s *Store) newConversation() domain.Conversation {
	now := s.now()
	return domain.Conversation{
		ID:        ids.New("conv"),
		Title:     DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []domain.Message{},
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Conversation looks up a conversation in the current state.
func (s *Store) Conversation(id string) (domain.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.ConversationsByID[id]
	return c, ok
}

// Reset discards everything and restores the initial state.
func (s *Store) Reset() {
	next := s.initialState()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next
}

func (s *Store) update(fn func(next *State) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	if fn(&next) {
		s.state = next
	}
}

func withConversation(st *State, c domain.Conversation) {
	byID := maps.Clone(st.ConversationsByID)
	byID[c.ID] = c
	st.ConversationsByID = byID
}

// CreateConversation adds an empty conversation at the front of the order,
// makes it active and returns its id.
func (s *Store) CreateConversation() string {
	conv := s.newConversation()
	s.update(func(next *State) bool {
		withConversation(next, conv)
		next.ConversationOrder = append([]string{conv.ID}, next.ConversationOrder...)
		next.ActiveConversationID = conv.ID
		return true
	})
	return conv.ID
}

// SetActiveConversation switches the active conversation and clears any
// surfaced error. Unknown ids are ignored.
func (s *Store) SetActiveConversation(id string) {
	s.update(func(next *State) bool {
		if _, ok := next.ConversationsByID[id]; !ok {
			return false
		}
		next.ActiveConversationID = id
		next.Error = ""
		return true
	})
}

// AddMessage appends msg to a conversation and refreshes its UpdatedAt.
// Unknown conversation ids are ignored.
func (s *Store) AddMessage(conversationID string, msg domain.Message) {
	now := s.now()
	s.update(func(next *State) bool {
		conv, ok := next.ConversationsByID[conversationID]
		if !ok {
			return false
		}
		conv.Messages = append(slices.Clip(conv.Messages), msg)
		conv.UpdatedAt = now
		withConversation(next, conv)
		return true
	})
}

// UpdateConversation merges the non-nil fields of upd into a conversation
// and refreshes its UpdatedAt. Unknown conversation ids are ignored.
func (s *Store) UpdateConversation(conversationID string, upd ConversationUpdate) {
	now := s.now()
	s.update(func(next *State) bool {
		conv, ok := next.ConversationsByID[conversationID]
		if !ok {
			return false
		}
		if upd.Title != nil {
			conv.Title = *upd.Title
		}
		conv.UpdatedAt = now
		withConversation(next, conv)
		return true
	})
}

func (s *Store) SetLoading(loading bool) {
	s.update(func(next *State) bool {
		next.IsLoading = loading
		return true
	})
}

// SetError surfaces msg to the user; an empty msg clears the error.
func (s *Store) SetError(msg string) {
	s.update(func(next *State) bool {
		next.Error = msg
		return true
	})
}

// SetLastUserMessage records the retry payload; nil clears it.
func (s *Store) SetLastUserMessage(payload *LastUserMessage) {
	var stored *LastUserMessage
	if payload != nil {
		p := *payload
		stored = &p
	}
	s.update(func(next *State) bool {
		next.LastUserMessage = stored
		return true
	})
}

// OpenViewer opens the viewer on citations with selectedID preselected.
// An empty citation list leaves the viewer untouched, and a selectedID that
// is not among citations is stored as no selection.
func (s *Store) OpenViewer(citations []domain.Citation, selectedID string) {
	if len(citations) == 0 {
		return
	}
	cites := slices.Clone(citations)
	if !containsCitation(cites, selectedID) {
		selectedID = ""
	}
	s.update(func(next *State) bool {
		next.Viewer = ViewerState{IsOpen: true, Citations: cites, SelectedCitationID: selectedID}
		return true
	})
}

// CloseViewer closes the viewer and drops its citations and selection.
func (s *Store) CloseViewer() {
	s.update(func(next *State) bool {
		next.Viewer = ViewerState{}
		return true
	})
}

// SelectCitation changes the selected citation of an open viewer. Ids that
// are not among the viewer's citations are ignored.
func (s *Store) SelectCitation(id string) {
	s.update(func(next *State) bool {
		if !next.Viewer.IsOpen || !containsCitation(next.Viewer.Citations, id) {
			return false
		}
		next.Viewer.SelectedCitationID = id
		return true
	})
}

func containsCitation(citations []domain.Citation, id string) bool {
	return slices.ContainsFunc(citations, func(c domain.Citation) bool { return c.ID == id })
}
