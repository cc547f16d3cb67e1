package viewer

import (
	"strings"

	"ragchat/internal/corpus"
	"ragchat/internal/domain"
	"ragchat/internal/store"
)

// Segment is a run of page text, optionally highlighted.
type Segment struct {
	Text        string
	Highlighted bool
}

// Page is what the viewer shows for the selected citation.
type Page struct {
	Citation      domain.Citation
	Index         int
	DocumentTitle string
	Content       string
	Segments      []Segment
}

// Resolve finds the selected citation of v (the first one when nothing is
// selected) and loads its source page from c. It reports false when the
// viewer has no citations.
func Resolve(v store.ViewerState, c domain.Corpus) (Page, bool) {
	if len(v.Citations) == 0 {
		return Page{}, false
	}
	idx := 0
	for i, cite := range v.Citations {
		if cite.ID == v.SelectedCitationID {
			idx = i
			break
		}
	}
	cite := v.Citations[idx]
	page := Page{Citation: cite, Index: idx, DocumentTitle: cite.Title}
	if doc, ok := c.Document(cite.DocumentID); ok {
		page.DocumentTitle = doc.Title
		page.Content, _ = corpus.PageContent(doc, cite.Page)
	}
	page.Segments = Highlight(page.Content, cite.Snippet)
	return page, true
}

// Highlight marks the first literal occurrence of snippet in content. When
// the snippet is empty or does not occur verbatim (for example because it
// was truncated) the whole content is returned unhighlighted.
func Highlight(content, snippet string) []Segment {
	if snippet == "" {
		return []Segment{{Text: content}}
	}
	before, after, found := strings.Cut(content, snippet)
	if !found {
		return []Segment{{Text: content}}
	}
	var segs []Segment
	if before != "" {
		segs = append(segs, Segment{Text: before})
	}
	segs = append(segs, Segment{Text: snippet, Highlighted: true})
	if after != "" {
		segs = append(segs, Segment{Text: after})
	}
	return segs
}
