package index

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// stateFile is the sidecar name inside the index directory.
const stateFile = "state.yaml"

// State tracks how far the index has caught up with the repository. It is
// the pipeline's resume point: incremental runs start at Revision+1.
type State struct {
	Version       string    `yaml:"version"`
	RepositoryURL string    `yaml:"repository_url"`
	Revision      int       `yaml:"revision"` // last fully indexed revision, 0 = never indexed
	Documents     int       `yaml:"documents"`
	IndexedAt     time.Time `yaml:"indexed_at"`

	path string // on-disk location, not serialized
}

// NewState creates an empty state for an index stored in dir.
func NewState(dir, repositoryURL string) *State {
	return &State{
		Version:       "1",
		RepositoryURL: repositoryURL,
		path:          filepath.Join(dir, stateFile),
	}
}

// LoadState reads the state sidecar from dir. A missing file yields a fresh
// empty state, not an error.
func LoadState(dir, repositoryURL string) (*State, error) {
	p := filepath.Join(dir, stateFile)

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(dir, repositoryURL), nil
		}
		return nil, fmt.Errorf("index: read state: %w", err)
	}

	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("index: unmarshal state: %w", err)
	}
	s.path = p

	if s.RepositoryURL != "" && repositoryURL != "" && s.RepositoryURL != repositoryURL {
		return nil, fmt.Errorf("index: state belongs to %s, not %s", s.RepositoryURL, repositoryURL)
	}
	return &s, nil
}

// IsEmpty reports whether the index has never completed a run.
func (s *State) IsEmpty() bool {
	return s.Revision == 0
}

// Save writes the state sidecar, creating the index directory if needed.
func (s *State) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("index: create state dir: %w", err)
	}

	s.IndexedAt = time.Now()

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("index: marshal state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("index: write state: %w", err)
	}
	return nil
}
