package corpus

import (
	"errors"

	"ragchat/internal/domain"
)

var (
	// ErrEmptyCorpus is returned when a loader finds no documents.
	ErrEmptyCorpus = errors.New("corpus has no documents")
	// ErrNoDocuments is returned when text ingest matches no .txt files.
	ErrNoDocuments = errors.New("no .txt documents found")
)

// Static is an immutable in-memory corpus. Documents keep their load order.
type Static struct {
	docs []domain.Document
	byID map[string]int
}

// New builds a corpus from docs. Lookups by id return the first document
// carrying that id.
func New(docs []domain.Document) *Static {
	c := &Static{
		docs: make([]domain.Document, len(docs)),
		byID: make(map[string]int, len(docs)),
	}
	for i, d := range docs {
		pages := make([]domain.Page, len(d.Pages))
		copy(pages, d.Pages)
		d.Pages = pages
		c.docs[i] = d
		if _, ok := c.byID[d.ID]; !ok {
			c.byID[d.ID] = i
		}
	}
	return c
}

// Documents returns the documents in corpus order.
func (c *Static) Documents() []domain.Document { return c.docs }

// Document looks a document up by id.
func (c *Static) Document(id string) (domain.Document, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Document{}, false
	}
	return c.docs[i], true
}

// PageContent returns the content of the page whose label equals label.
func PageContent(doc domain.Document, label domain.PageLabel) (string, bool) {
	for _, p := range doc.Pages {
		if p.Label == label {
			return p.Content, true
		}
	}
	return "", false
}

// Texts flattens every page of the corpus into a slice of page contents.
func Texts(c domain.Corpus) []string {
	var out []string
	for _, d := range c.Documents() {
		for _, p := range d.Pages {
			out = append(out, p.Content)
		}
	}
	return out
}
