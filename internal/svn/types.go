// Package svn is the repository access layer: a connection-pooled facade over
// a Subversion backend that turns raw queries (revision info, per-revision
// change logs, recursive listings, path metadata and content) into a
// normalized, revision-stamped change and path-data model for the indexing
// pipeline.
package svn

import "time"

// Change classifies a single path-level change within a revision.
type Change int

const (
	Add Change = iota
	Modify
	Delete
	Replace
)

// String returns the change kind name.
func (c Change) String() string {
	switch c {
	case Add:
		return "add"
	case Modify:
		return "modify"
	case Delete:
		return "delete"
	case Replace:
		return "replace"
	}
	return "unknown"
}

// PathChange is one reported change event: a path touched by a revision.
// It is a value; once produced it is never mutated.
type PathChange struct {
	Revision int
	Path     string
	Change   Change
	IsCopy   bool // true iff the backend reported a copy-from origin
}

// maxTextSize is the content-extraction cap. Files at or above this size
// never get their text materialized.
const maxTextSize = 128 * 1024 * 1024

// mimeTypeProperty is the versioned property gating text extraction.
const mimeTypeProperty = "svn:mime-type"

// PathData is the metadata and optional content snapshot of a path at a
// revision.
//
// Author, Timestamp and RevisionFirst describe the last change of the path's
// own history, which may predate the queried revision. RevisionLast is always
// the queried revision.
type PathData struct {
	Path          string
	Size          int64 // 0 for directories
	Author        string
	Timestamp     time.Time
	RevisionFirst int
	RevisionLast  int
	IsDirectory   bool
	Properties    map[string]string
	Text          string // set only when HasText
	HasText       bool
}

// textEligible reports whether content should be materialized for a path:
// a file below the size cap whose mime-type property is absent, empty, or
// text/-prefixed.
func textEligible(isDir bool, size int64, props map[string]string) bool {
	if isDir || size >= maxTextSize {
		return false
	}
	mime := props[mimeTypeProperty]
	if mime == "" {
		return true
	}
	return len(mime) >= 5 && mime[:5] == "text/"
}
