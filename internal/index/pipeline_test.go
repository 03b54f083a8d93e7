package index

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/svnquery/svnquery/internal/svn"
)

// fakeSource serves canned revisions, changes, and path data.
type fakeSource struct {
	mu       sync.Mutex
	youngest int
	changes  []svn.PathChange            // replayed by ForEachChange, filtered by range
	tree     []svn.PathChange            // returned by ForEachChild
	data     map[string]*svn.PathData    // keyed "path@rev"; missing = nil (gone)
	dataErr  map[string]error            // keyed "path@rev"
	fetched  []string
}

func (f *fakeSource) GetYoungestRevision(ctx context.Context) (int, error) {
	return f.youngest, nil
}

func (f *fakeSource) ForEachChange(ctx context.Context, first, last int, visit svn.VisitFunc) error {
	for _, pc := range f.changes {
		if pc.Revision < first || pc.Revision > last {
			continue
		}
		if err := visit(pc); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeSource) ForEachChild(ctx context.Context, path string, revision int, visit svn.VisitFunc) error {
	for _, pc := range f.tree {
		if err := visit(pc); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeSource) GetPathData(ctx context.Context, path string, revision int) (*svn.PathData, error) {
	key := fmt.Sprintf("%s@%d", path, revision)

	f.mu.Lock()
	f.fetched = append(f.fetched, key)
	f.mu.Unlock()

	if err, ok := f.dataErr[key]; ok {
		return nil, err
	}
	return f.data[key], nil
}

func fileData(path string, rev int, text string) *svn.PathData {
	return &svn.PathData{
		Path:          path,
		Size:          int64(len(text)),
		Author:        "alice",
		Timestamp:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		RevisionFirst: rev,
		RevisionLast:  rev,
		Text:          text,
		HasText:       true,
	}
}

func runPipeline(t *testing.T, src Source, state *State, opts func(*Config)) (*Result, *Store) {
	t.Helper()

	store := testStore(t)
	cfg := Config{
		Source:     src,
		Store:      store,
		State:      state,
		MaxWorkers: 2,
	}
	if opts != nil {
		opts(&cfg)
	}

	res, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res, store
}

func testState(t *testing.T, revision int) *State {
	t.Helper()
	s := NewState(t.TempDir(), "svn://example.com/repo")
	s.Revision = revision
	return s
}

func TestRunBootstrap(t *testing.T) {
	src := &fakeSource{
		youngest: 9,
		tree: []svn.PathChange{
			{Revision: 9, Path: "/trunk/a.txt", Change: svn.Add},
			{Revision: 9, Path: "/trunk/b.txt", Change: svn.Add},
		},
		data: map[string]*svn.PathData{
			"/trunk/a.txt@9": fileData("/trunk/a.txt", 9, "alpha content"),
			"/trunk/b.txt@9": fileData("/trunk/b.txt", 9, "beta content"),
		},
	}
	state := testState(t, 0)

	res, store := runPipeline(t, src, state, nil)

	if res.Indexed != 2 {
		t.Errorf("Indexed = %d, want 2", res.Indexed)
	}
	if len(res.Errors) != 0 {
		t.Errorf("Errors = %v", res.Errors)
	}
	if state.Revision != 9 {
		t.Errorf("state.Revision = %d, want 9", state.Revision)
	}
	if count, _ := store.DocCount(); count != 2 {
		t.Errorf("DocCount = %d, want 2", count)
	}
	if _, total, _ := store.Search("alpha", 10); total != 1 {
		t.Error("bootstrap content not searchable")
	}
}

func TestRunIncremental(t *testing.T) {
	src := &fakeSource{
		youngest: 12,
		changes: []svn.PathChange{
			{Revision: 11, Path: "/trunk/a.txt", Change: svn.Modify},
			{Revision: 12, Path: "/trunk/new.txt", Change: svn.Add},
		},
		data: map[string]*svn.PathData{
			"/trunk/a.txt@11":   fileData("/trunk/a.txt", 11, "updated"),
			"/trunk/new.txt@12": fileData("/trunk/new.txt", 12, "fresh"),
		},
	}
	state := testState(t, 10)

	res, _ := runPipeline(t, src, state, nil)

	if res.FromRevision != 11 || res.ToRevision != 12 {
		t.Errorf("range = %d:%d, want 11:12", res.FromRevision, res.ToRevision)
	}
	if res.Indexed != 2 {
		t.Errorf("Indexed = %d, want 2", res.Indexed)
	}
	if state.Revision != 12 {
		t.Errorf("state.Revision = %d, want 12", state.Revision)
	}
}

func TestRunUpToDate(t *testing.T) {
	src := &fakeSource{youngest: 5}
	state := testState(t, 5)

	res, _ := runPipeline(t, src, state, nil)

	if res.Indexed != 0 || res.Deleted != 0 {
		t.Errorf("up-to-date run did work: %+v", res)
	}
	if state.Revision != 5 {
		t.Errorf("state.Revision = %d, want 5", state.Revision)
	}
}

func TestRunDedupKeepsLastChange(t *testing.T) {
	// Same path touched twice in the range: only the final state is fetched.
	src := &fakeSource{
		youngest: 12,
		changes: []svn.PathChange{
			{Revision: 11, Path: "/trunk/a.txt", Change: svn.Add},
			{Revision: 12, Path: "/trunk/a.txt", Change: svn.Modify},
		},
		data: map[string]*svn.PathData{
			"/trunk/a.txt@12": fileData("/trunk/a.txt", 12, "final"),
		},
	}
	state := testState(t, 10)

	res, _ := runPipeline(t, src, state, nil)

	if res.Indexed != 1 {
		t.Errorf("Indexed = %d, want 1", res.Indexed)
	}
	if len(src.fetched) != 1 || src.fetched[0] != "/trunk/a.txt@12" {
		t.Errorf("fetched = %v, want just /trunk/a.txt@12", src.fetched)
	}
}

func TestRunDeleteSweepsSubtree(t *testing.T) {
	src := &fakeSource{
		youngest: 21,
		changes: []svn.PathChange{
			{Revision: 21, Path: "/trunk/old", Change: svn.Delete},
		},
	}
	state := testState(t, 20)

	store := testStore(t)
	for _, p := range []string{"/trunk/old", "/trunk/old/a.txt", "/trunk/keep.txt"} {
		if err := store.Put(Document{Path: p, Content: "x"}); err != nil {
			t.Fatal(err)
		}
	}

	res, err := Run(context.Background(), Config{
		Source: src,
		Store:  store,
		State:  state,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Deleted != 2 {
		t.Errorf("Deleted = %d, want 2", res.Deleted)
	}
	if count, _ := store.DocCount(); count != 1 {
		t.Errorf("DocCount = %d, want 1", count)
	}
}

func TestRunAppliesFilter(t *testing.T) {
	src := &fakeSource{
		youngest: 11,
		changes: []svn.PathChange{
			{Revision: 11, Path: "/trunk/a.go", Change: svn.Add},
			{Revision: 11, Path: "/trunk/a.o", Change: svn.Add},
		},
		data: map[string]*svn.PathData{
			"/trunk/a.go@11": fileData("/trunk/a.go", 11, "package a"),
		},
	}
	state := testState(t, 10)

	res, _ := runPipeline(t, src, state, func(cfg *Config) {
		cfg.Filter = NewPathFilter(nil, []string{"*.o"})
	})

	if res.Indexed != 1 {
		t.Errorf("Indexed = %d, want 1", res.Indexed)
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
	for _, key := range src.fetched {
		if key == "/trunk/a.o@11" {
			t.Error("filtered path was still fetched")
		}
	}
}

func TestRunGonePathIsSkipped(t *testing.T) {
	// GetPathData returning nil means the path no longer resolves.
	src := &fakeSource{
		youngest: 11,
		changes: []svn.PathChange{
			{Revision: 11, Path: "/trunk/ghost.txt", Change: svn.Add},
		},
		data: map[string]*svn.PathData{},
	}
	state := testState(t, 10)

	res, _ := runPipeline(t, src, state, nil)

	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
	if res.Indexed != 0 || len(res.Errors) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestRunCollectsFetchErrors(t *testing.T) {
	src := &fakeSource{
		youngest: 11,
		changes: []svn.PathChange{
			{Revision: 11, Path: "/trunk/bad.txt", Change: svn.Add},
			{Revision: 11, Path: "/trunk/good.txt", Change: svn.Add},
		},
		data: map[string]*svn.PathData{
			"/trunk/good.txt@11": fileData("/trunk/good.txt", 11, "fine"),
		},
		dataErr: map[string]error{
			"/trunk/bad.txt@11": errors.New("connection reset"),
		},
	}
	state := testState(t, 10)

	res, _ := runPipeline(t, src, state, nil)

	if res.Indexed != 1 {
		t.Errorf("Indexed = %d, want 1", res.Indexed)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("Errors = %v, want one", res.Errors)
	}
	if state.Revision != 11 {
		t.Errorf("fetch error should not block the checkpoint; state.Revision = %d", state.Revision)
	}
}

func TestRunCheckpointsPerChunk(t *testing.T) {
	src := &fakeSource{
		youngest: 14,
		changes: []svn.PathChange{
			{Revision: 11, Path: "/a", Change: svn.Add},
			{Revision: 13, Path: "/b", Change: svn.Add},
		},
		data: map[string]*svn.PathData{
			"/a@11": fileData("/a", 11, "a"),
			"/b@13": fileData("/b", 13, "b"),
		},
	}
	state := testState(t, 10)

	// 2-revision chunks over 11..14 should scan 11:12 then 13:14.
	var ranges [][2]int
	srcSpy := &rangeSpySource{fakeSource: src, ranges: &ranges}

	res, _ := runPipeline(t, srcSpy, state, func(cfg *Config) {
		cfg.CheckpointEvery = 2
	})

	want := [][2]int{{11, 12}, {13, 14}}
	if len(ranges) != len(want) {
		t.Fatalf("scanned ranges %v, want %v", ranges, want)
	}
	for i, r := range want {
		if ranges[i] != r {
			t.Errorf("range[%d] = %v, want %v", i, ranges[i], r)
		}
	}
	if res.Indexed != 2 {
		t.Errorf("Indexed = %d, want 2", res.Indexed)
	}
	if state.Revision != 14 {
		t.Errorf("state.Revision = %d, want 14", state.Revision)
	}
}

type rangeSpySource struct {
	*fakeSource
	ranges *[][2]int
}

func (s *rangeSpySource) ForEachChange(ctx context.Context, first, last int, visit svn.VisitFunc) error {
	*s.ranges = append(*s.ranges, [2]int{first, last})
	return s.fakeSource.ForEachChange(ctx, first, last, visit)
}

func TestRunScanErrorAborts(t *testing.T) {
	src := &errSource{youngest: 11, err: errors.New("E175002: connection refused")}
	state := testState(t, 10)
	store := testStore(t)

	_, err := Run(context.Background(), Config{Source: src, Store: store, State: state})
	if err == nil {
		t.Fatal("expected scan error to abort the run")
	}
	if state.Revision != 10 {
		t.Errorf("state advanced past a failed scan: %d", state.Revision)
	}
}

type errSource struct {
	youngest int
	err      error
}

func (s *errSource) GetYoungestRevision(ctx context.Context) (int, error) { return s.youngest, nil }
func (s *errSource) ForEachChange(ctx context.Context, first, last int, visit svn.VisitFunc) error {
	return s.err
}
func (s *errSource) ForEachChild(ctx context.Context, path string, revision int, visit svn.VisitFunc) error {
	return s.err
}
func (s *errSource) GetPathData(ctx context.Context, path string, revision int) (*svn.PathData, error) {
	return nil, s.err
}
