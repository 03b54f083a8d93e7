// Package svnquery provides a thin Go SDK for programmatic access to
// repository indexing and search. It wraps the internal packages with a
// stable API.
package svnquery

import (
	"context"

	"github.com/svnquery/svnquery/internal/config"
	"github.com/svnquery/svnquery/internal/index"
	"github.com/svnquery/svnquery/internal/svn"
)

// IndexResult contains the output of an indexing run.
type IndexResult struct {
	FromRevision int
	ToRevision   int
	Indexed      int
	Deleted      int
	Skipped      int
	Errors       int
}

// Result is a single search hit.
type Result struct {
	Path      string
	Author    string
	Revision  int
	Score     float64
	Fragments []string
}

// Index brings the index described by the config file up to the repository
// head, creating it on first use.
func Index(ctx context.Context, configPath string) (*IndexResult, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	user, pass, err := cfg.ResolveCredentials()
	if err != nil {
		return nil, err
	}
	repo := svn.NewRepository(cfg.Repository.URL, user, pass)

	state, err := index.LoadState(cfg.Index.Path, cfg.Repository.URL)
	if err != nil {
		return nil, err
	}

	store, err := index.Open(cfg.Index.Path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	result, err := index.Run(ctx, index.Config{
		Source:          repo,
		Store:           store,
		State:           state,
		Filter:          index.NewPathFilter(cfg.Index.Include, cfg.Index.Exclude),
		MaxWorkers:      cfg.Index.MaxWorkers,
		CheckpointEvery: cfg.Index.OptimizeEvery,
	})
	if err != nil {
		return nil, err
	}

	return &IndexResult{
		FromRevision: result.FromRevision,
		ToRevision:   result.ToRevision,
		Indexed:      result.Indexed,
		Deleted:      result.Deleted,
		Skipped:      result.Skipped,
		Errors:       len(result.Errors),
	}, nil
}

// Search queries the index described by the config file.
func Search(configPath, query string, k int) ([]Result, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	store, err := index.Open(cfg.Index.Path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	hits, _, err := store.Search(query, k)
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(hits))
	for _, h := range hits {
		out = append(out, Result{
			Path:      h.Path,
			Author:    h.Author,
			Revision:  h.Revision,
			Score:     h.Score,
			Fragments: h.Fragments,
		})
	}
	return out, nil
}
