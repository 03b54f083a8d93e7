// Package index maintains the full-text index fed by the repository access
// layer: a bleve index of path documents plus a YAML state sidecar recording
// the last indexed revision, and the pipeline that keeps both current.
package index

import (
	"fmt"
	"os"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Document is what gets indexed for one repository path. The document ID is
// the repository-absolute path.
type Document struct {
	Path          string    `json:"path"`
	Content       string    `json:"content"`
	Author        string    `json:"author"`
	Timestamp     time.Time `json:"timestamp"`
	RevisionFirst int       `json:"revision_first"`
	RevisionLast  int       `json:"revision_last"`
	Size          int64     `json:"size"`
	IsDirectory   bool      `json:"is_directory"`
}

// SearchResult is one search hit.
type SearchResult struct {
	Path      string
	Author    string
	Revision  int
	Score     float64
	Fragments []string // highlighted content snippets
}

// Store wraps the on-disk bleve index.
type Store struct {
	idx bleve.Index
}

// buildMapping keeps path/author exact-match (keyword) while content goes
// through the standard analyzer.
func buildMapping() *mapping.IndexMappingImpl {
	doc := bleve.NewDocumentMapping()

	doc.AddFieldMappingsAt("path", bleve.NewKeywordFieldMapping())
	doc.AddFieldMappingsAt("author", bleve.NewKeywordFieldMapping())
	doc.AddFieldMappingsAt("content", bleve.NewTextFieldMapping())

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// Open opens the bleve index under dir, creating it on first use.
func Open(dir string) (*Store, error) {
	idx, err := bleve.Open(dir)
	if err == bleve.ErrorIndexPathDoesNotExist {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return nil, fmt.Errorf("index: create dir: %w", mkErr)
		}
		idx, err = bleve.New(dir, buildMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", dir, err)
	}
	return &Store{idx: idx}, nil
}

// OpenMemory creates an in-memory index. Used by tests and dry runs.
func OpenMemory() (*Store, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("index: open in-memory: %w", err)
	}
	return &Store{idx: idx}, nil
}

// Put indexes a document, replacing any previous document for the same path.
func (s *Store) Put(doc Document) error {
	if err := s.idx.Index(doc.Path, doc); err != nil {
		return fmt.Errorf("index: put %s: %w", doc.Path, err)
	}
	return nil
}

// Delete removes the document for path, if present.
func (s *Store) Delete(path string) error {
	if err := s.idx.Delete(path); err != nil {
		return fmt.Errorf("index: delete %s: %w", path, err)
	}
	return nil
}

// DeleteTree removes the document for path and every document underneath it.
// A directory delete in the change log names only the directory; its
// descendants have to be swept out of the index here. Returns the number of
// removed descendants.
func (s *Store) DeleteTree(path string) (int, error) {
	if err := s.Delete(path); err != nil {
		return 0, err
	}

	removed := 0
	for {
		q := bleve.NewPrefixQuery(path + "/")
		q.SetField("path")
		req := bleve.NewSearchRequestOptions(q, 500, 0, false)

		res, err := s.idx.Search(req)
		if err != nil {
			return removed, fmt.Errorf("index: sweep %s: %w", path, err)
		}
		if len(res.Hits) == 0 {
			return removed, nil
		}
		for _, hit := range res.Hits {
			if err := s.idx.Delete(hit.ID); err != nil {
				return removed, fmt.Errorf("index: sweep %s: %w", hit.ID, err)
			}
			removed++
		}
	}
}

// Search runs a query-string search over the index and returns up to limit
// hits with highlighted content fragments.
func (s *Store) Search(query string, limit int) ([]SearchResult, uint64, error) {
	if limit <= 0 {
		limit = 10
	}

	q := bleve.NewQueryStringQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"path", "author", "revision_last"}
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Highlight.AddField("content")

	res, err := s.idx.Search(req)
	if err != nil {
		return nil, 0, fmt.Errorf("index: search %q: %w", query, err)
	}

	results := make([]SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := SearchResult{Path: hit.ID, Score: hit.Score}
		if v, ok := hit.Fields["author"].(string); ok {
			r.Author = v
		}
		if v, ok := hit.Fields["revision_last"].(float64); ok {
			r.Revision = int(v)
		}
		r.Fragments = append(r.Fragments, hit.Fragments["content"]...)
		results = append(results, r)
	}
	return results, res.Total, nil
}

// DocCount returns the number of indexed documents.
func (s *Store) DocCount() (uint64, error) {
	return s.idx.DocCount()
}

// Close releases the underlying index.
func (s *Store) Close() error {
	return s.idx.Close()
}
