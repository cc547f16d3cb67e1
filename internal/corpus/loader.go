package corpus

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"ragchat/internal/domain"
)

const maxConcurrentReads = 4

// Chunker splits document text into page-sized pieces.
type Chunker interface {
	Chunk(text string) []string
}

type fileCorpus struct {
	Documents []fileDocument `yaml:"documents"`
}

type fileDocument struct {
	ID    string     `yaml:"id"`
	Title string     `yaml:"title"`
	Pages []filePage `yaml:"pages"`
}

type filePage struct {
	Page    pageLabel `yaml:"page"`
	Content string    `yaml:"content"`
}

// pageLabel accepts both `page: 3` and `page: "ADR-014"`.
type pageLabel string

func (p *pageLabel) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: page label must be a scalar", node.Line)
	}
	*p = pageLabel(node.Value)
	return nil
}

// LoadYAML reads a corpus file of the form
//
//	documents:
//	  - id: sec-policy
//	    title: Security Policy Handbook
//	    pages:
//	      - page: 1
//	        content: ...
func LoadYAML(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc fileCorpus
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}
	if len(fc.Documents) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyCorpus)
	}
	docs := make([]domain.Document, 0, len(fc.Documents))
	for i, fd := range fc.Documents {
		if strings.TrimSpace(fd.ID) == "" {
			return nil, fmt.Errorf("%s: document %d has no id", path, i)
		}
		doc := domain.Document{ID: fd.ID, Title: fd.Title}
		if doc.Title == "" {
			doc.Title = fd.ID
		}
		for _, fp := range fd.Pages {
			doc.Pages = append(doc.Pages, domain.Page{Label: domain.PageLabel(fp.Page), Content: fp.Content})
		}
		docs = append(docs, doc)
	}
	return New(docs), nil
}

// LoadText ingests .txt files. Each path may be a glob pattern. A document's
// id is derived from its path, its title from the file name, and its pages
// are the chunks produced by ch, labelled 1..n. Files are read concurrently
// but documents keep the order of the matched paths.
func LoadText(paths []string, ch Chunker) (*Static, error) {
	var files []string
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if strings.HasSuffix(strings.ToLower(m), ".txt") {
				files = append(files, m)
			}
		}
	}

	slots := make([]*domain.Document, len(files))
	var g errgroup.Group
	g.SetLimit(maxConcurrentReads)
	for i, path := range files {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			chunks := ch.Chunk(string(data))
			if len(chunks) == 0 {
				return nil
			}
			doc := domain.Document{
				ID:    hashString(path),
				Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			}
			for n, text := range chunks {
				doc.Pages = append(doc.Pages, domain.Page{Label: domain.PageLabel(strconv.Itoa(n + 1)), Content: text})
			}
			slots[i] = &doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var docs []domain.Document
	for _, d := range slots {
		if d != nil {
			docs = append(docs, *d)
		}
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	return New(docs), nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
