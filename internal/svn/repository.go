package svn

import (
	"context"
	"strings"
)

// VisitFunc receives one PathChange per enumerated change. Returning a
// non-nil error aborts the enumeration; the error propagates to the caller.
type VisitFunc func(PathChange) error

// Repository is the pooled facade over one backend URL and credential pair.
// All operations are synchronous and safe for concurrent use from
// caller-managed goroutines; each borrows its own client for the duration of
// the call.
type Repository struct {
	pool *Pool
}

// NewRepository creates a facade for the repository at url. username and
// password may be empty.
func NewRepository(url, username, password string) *Repository {
	return &Repository{pool: NewPool(func() Client {
		return NewClient(url, username, password)
	})}
}

// NewRepositoryWithPool wires the facade to an existing pool. Used to
// substitute backends.
func NewRepositoryWithPool(p *Pool) *Repository {
	return &Repository{pool: p}
}

// GetYoungestRevision returns the repository head revision.
func (r *Repository) GetYoungestRevision(ctx context.Context) (int, error) {
	var rev int
	err := r.pool.With(func(c Client) error {
		var err error
		rev, err = c.Youngest(ctx)
		return err
	})
	return rev, err
}

// ForEachChange visits every path changed in every revision of the inclusive
// range [first, last], in backend-reported order. The change action is mapped
// onto the closed Change set; an unrecognized action aborts the scan with an
// *UnknownActionError naming the offending path and revision, and nothing
// further is visited.
func (r *Repository) ForEachChange(ctx context.Context, first, last int, visit VisitFunc) error {
	return r.pool.With(func(c Client) error {
		return c.Log(ctx, first, last, func(entry LogEntry) error {
			for _, p := range entry.Paths {
				change, err := classifyAction(p.Action, p.Path, entry.Revision)
				if err != nil {
					return err
				}
				pc := PathChange{
					Revision: entry.Revision,
					Path:     p.Path,
					Change:   change,
					IsCopy:   p.CopyFromPath != "",
				}
				if err := visit(pc); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// classifyAction maps a backend-native action code onto the closed Change
// set. Every other value is fatal; the domain model cannot represent it.
func classifyAction(action, path string, revision int) (Change, error) {
	switch action {
	case "A":
		return Add, nil
	case "M":
		return Modify, nil
	case "D":
		return Delete, nil
	case "R":
		return Replace, nil
	}
	return 0, &UnknownActionError{Action: action, Path: path, Revision: revision}
}

// ForEachChild recursively visits every descendant of path at the given
// revision as a synthetic Add. The root itself is skipped. Used to bootstrap
// an index from scratch instead of replaying the full change log.
func (r *Repository) ForEachChild(ctx context.Context, path string, revision int, visit VisitFunc) error {
	return r.pool.With(func(c Client) error {
		return c.List(ctx, path, revision, func(d Dirent) error {
			if d.Path == "" {
				return nil
			}
			return visit(PathChange{
				Revision: revision,
				Path:     joinPath(path, d.Path),
				Change:   Add,
			})
		})
	})
}

// joinPath concatenates a repository-absolute root with a root-relative
// entry path.
func joinPath(root, rel string) string {
	root = strings.TrimSuffix(root, "/")
	return root + "/" + rel
}

// GetPathData materializes metadata, versioned properties and (when the
// size/mime policy allows) the decoded text content of a single path at a
// single revision. A (nil, nil) return means the path does not resolve at
// that revision — a legitimate outcome, not a fault. Any other backend
// failure propagates unchanged.
func (r *Repository) GetPathData(ctx context.Context, path string, revision int) (*PathData, error) {
	var data *PathData
	err := r.pool.With(func(c Client) error {
		st, err := c.Stat(ctx, path, revision)
		if err != nil {
			return err
		}
		props, err := c.PropList(ctx, path, revision)
		if err != nil {
			return err
		}

		data = &PathData{
			Path:          path,
			Size:          st.Size,
			Author:        st.LastAuthor,
			Timestamp:     st.CreatedDate,
			RevisionFirst: st.CreatedRev,
			RevisionLast:  revision,
			IsDirectory:   st.Kind == NodeDir,
			Properties:    props,
		}

		if textEligible(data.IsDirectory, data.Size, props) {
			var sb strings.Builder
			if err := c.Cat(ctx, path, revision, &sb); err != nil {
				return err
			}
			data.Text = sb.String()
			data.HasText = true
		}
		return nil
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
