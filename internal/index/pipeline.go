package index

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/svnquery/svnquery/internal/svn"
)

// Source is what the pipeline needs from the repository access layer.
// *svn.Repository satisfies it; tests substitute a fake.
type Source interface {
	GetYoungestRevision(ctx context.Context) (int, error)
	ForEachChange(ctx context.Context, first, last int, visit svn.VisitFunc) error
	ForEachChild(ctx context.Context, path string, revision int, visit svn.VisitFunc) error
	GetPathData(ctx context.Context, path string, revision int) (*svn.PathData, error)
}

// Config holds the pipeline's dependencies.
type Config struct {
	Source Source
	Store  *Store
	State  *State
	Filter *PathFilter

	MaxWorkers      int // concurrent path-data fetches
	CheckpointEvery int // revisions per state checkpoint; <=0 disables chunking

	Logger     *zap.Logger                         // optional
	ProgressFn func(phase string, done, total int) // optional
}

// Result summarizes one pipeline run.
type Result struct {
	FromRevision int
	ToRevision   int
	Indexed      int // documents written (adds, modifies, replaces)
	Deleted      int // documents removed, including swept descendants
	Skipped      int // changes dropped by the path filter or gone before fetch
	Errors       []error
}

// Run brings the index up to the repository head. An empty state triggers a
// bootstrap (full tree listing at head); otherwise the change log from the
// last indexed revision is replayed, in checkpoint-sized revision chunks so
// an interrupted run resumes where it left off.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if cfg.Filter == nil {
		cfg.Filter = NewPathFilter(nil, nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	progress := cfg.ProgressFn
	if progress == nil {
		progress = func(string, int, int) {}
	}

	youngest, err := cfg.Source.GetYoungestRevision(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: head revision: %w", err)
	}

	result := &Result{FromRevision: cfg.State.Revision + 1, ToRevision: youngest}

	if cfg.State.IsEmpty() {
		cfg.Logger.Info("bootstrapping index from full tree",
			zap.Int("revision", youngest))

		changes, err := collectTree(ctx, cfg.Source, youngest)
		if err != nil {
			return nil, fmt.Errorf("pipeline: list tree: %w", err)
		}
		result.FromRevision = youngest

		if err := apply(ctx, cfg, changes, result, progress); err != nil {
			return nil, err
		}
		return finishCheckpoint(cfg, youngest, result)
	}

	if cfg.State.Revision >= youngest {
		cfg.Logger.Info("index is up to date", zap.Int("revision", cfg.State.Revision))
		return result, nil
	}

	chunk := cfg.CheckpointEvery
	if chunk <= 0 {
		chunk = youngest - cfg.State.Revision
	}

	for first := cfg.State.Revision + 1; first <= youngest; first += chunk {
		last := first + chunk - 1
		if last > youngest {
			last = youngest
		}
		cfg.Logger.Info("indexing revision range",
			zap.Int("first", first), zap.Int("last", last))

		changes, err := collectChanges(ctx, cfg.Source, first, last)
		if err != nil {
			return nil, fmt.Errorf("pipeline: scan r%d:%d: %w", first, last, err)
		}
		if err := apply(ctx, cfg, changes, result, progress); err != nil {
			return nil, err
		}
		if _, err := finishCheckpoint(cfg, last, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// collectChanges replays the change log for a range, keeping only the last
// change per path (in first-seen order). Intermediate states of a path
// within the range are invisible to the index.
func collectChanges(ctx context.Context, src Source, first, last int) ([]svn.PathChange, error) {
	latest := make(map[string]int)
	var ordered []svn.PathChange

	err := src.ForEachChange(ctx, first, last, func(pc svn.PathChange) error {
		if i, seen := latest[pc.Path]; seen {
			ordered[i] = pc
			return nil
		}
		latest[pc.Path] = len(ordered)
		ordered = append(ordered, pc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ordered, nil
}

// collectTree lists the whole tree at a revision as synthetic adds.
func collectTree(ctx context.Context, src Source, revision int) ([]svn.PathChange, error) {
	var changes []svn.PathChange
	err := src.ForEachChild(ctx, "/", revision, func(pc svn.PathChange) error {
		changes = append(changes, pc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// apply executes a batch of changes against the store: deletes immediately,
// upserts through a bounded worker pool where each fetch borrows its own
// pooled backend client.
func apply(ctx context.Context, cfg Config, changes []svn.PathChange, result *Result, progress func(string, int, int)) error {
	var upserts []svn.PathChange

	for _, pc := range changes {
		if pc.Change == svn.Delete {
			swept, err := cfg.Store.DeleteTree(pc.Path)
			if err != nil {
				return fmt.Errorf("pipeline: %w", err)
			}
			result.Deleted += 1 + swept
			continue
		}
		if !cfg.Filter.Match(pc.Path) {
			result.Skipped++
			continue
		}
		upserts = append(upserts, pc)
	}

	if len(upserts) == 0 {
		return nil
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		done int
	)
	sem := make(chan struct{}, cfg.MaxWorkers)
	progress("fetch", 0, len(upserts))

	for _, pc := range upserts {
		wg.Add(1)
		sem <- struct{}{}

		go func(pc svn.PathChange) {
			defer wg.Done()
			defer func() { <-sem }()

			data, err := cfg.Source.GetPathData(ctx, pc.Path, pc.Revision)

			mu.Lock()
			defer mu.Unlock()
			done++
			progress("fetch", done, len(upserts))

			if err != nil {
				cfg.Logger.Warn("fetch failed",
					zap.String("path", pc.Path),
					zap.Int("revision", pc.Revision),
					zap.Error(err))
				result.Errors = append(result.Errors, fmt.Errorf("fetch %s@%d: %w", pc.Path, pc.Revision, err))
				return
			}
			if data == nil {
				// Gone again later in the log, or never reachable here.
				result.Skipped++
				return
			}

			doc := Document{
				Path:          data.Path,
				Author:        data.Author,
				Timestamp:     data.Timestamp,
				RevisionFirst: data.RevisionFirst,
				RevisionLast:  data.RevisionLast,
				Size:          data.Size,
				IsDirectory:   data.IsDirectory,
			}
			if data.HasText {
				doc.Content = data.Text
			}
			if err := cfg.Store.Put(doc); err != nil {
				result.Errors = append(result.Errors, err)
				return
			}
			result.Indexed++
		}(pc)
	}
	wg.Wait()

	return ctx.Err()
}

// finishCheckpoint records progress in the state sidecar.
func finishCheckpoint(cfg Config, revision int, result *Result) (*Result, error) {
	count, err := cfg.Store.DocCount()
	if err != nil {
		return nil, fmt.Errorf("pipeline: doc count: %w", err)
	}
	cfg.State.Revision = revision
	cfg.State.Documents = int(count)
	if err := cfg.State.Save(); err != nil {
		return nil, fmt.Errorf("pipeline: checkpoint: %w", err)
	}
	return result, nil
}
