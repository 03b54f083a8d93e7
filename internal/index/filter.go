package index

import (
	gopath "path"
	"strings"
)

// PathFilter decides which repository paths are indexed. Exclude globs win
// over include globs; an empty include list means everything is included.
// Globs match against the repository-absolute path and against the basename,
// and a trailing "/**" matches a whole subtree.
type PathFilter struct {
	include []string
	exclude []string
}

// NewPathFilter builds a filter from include/exclude glob lists.
func NewPathFilter(include, exclude []string) *PathFilter {
	return &PathFilter{include: include, exclude: exclude}
}

// Match reports whether path should be indexed.
func (f *PathFilter) Match(path string) bool {
	for _, pattern := range f.exclude {
		if matchGlob(pattern, path) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}
	for _, pattern := range f.include {
		if matchGlob(pattern, path) {
			return true
		}
	}
	return false
}

func matchGlob(pattern, path string) bool {
	if ok, _ := gopath.Match(pattern, path); ok {
		return true
	}
	if ok, _ := gopath.Match(pattern, gopath.Base(path)); ok {
		return true
	}
	// "/tags/**" excludes the entire subtree.
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
