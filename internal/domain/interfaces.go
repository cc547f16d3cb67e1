package domain

import (
	"context"
	"time"
)

// PageLabel identifies a page inside a document. Labels are either numeric
// ("1", "2") or free-form ("ADR-014", "2.3").
type PageLabel string

// Page is a single page of a document with its full text.
type Page struct {
	Label   PageLabel
	Content string
}

// Document represents a read-only source document split into pages.
type Document struct {
	ID    string
	Title string
	Pages []Page
}

// Citation points from an assistant answer back to a document page.
type Citation struct {
	ID         string
	DocumentID string
	Title      string
	Page       PageLabel
	Snippet    string
}

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Status marks whether a message is a normal turn or an error surrogate.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Message is a single immutable conversation turn.
type Message struct {
	ID        string
	Role      Role
	Content   string
	CreatedAt time.Time
	Citations []Citation
	Status    Status
}

// Conversation is an ordered, append-only list of messages.
type Conversation struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Messages  []Message
}

// ChatResponse is the payload produced by a successful retrieval.
type ChatResponse struct {
	Answer    string
	Citations []Citation
}

// Corpus is the fixed, read-only set of documents the assistant searches.
type Corpus interface {
	Documents() []Document
	Document(id string) (Document, bool)
}

// Retriever turns a free-text query into an answer with citations.
// A nil response with a nil error means the backend replied with nothing.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (*ChatResponse, error)
}
