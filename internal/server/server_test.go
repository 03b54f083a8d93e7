package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/svnquery/svnquery/internal/index"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	store, err := index.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	docs := []index.Document{
		{Path: "/trunk/readme.txt", Content: "getting started with the service", Author: "alice", RevisionLast: 3},
		{Path: "/trunk/src/main.go", Content: "package main", Author: "bob", RevisionLast: 7},
	}
	for _, d := range docs {
		if err := store.Put(d); err != nil {
			t.Fatal(err)
		}
	}

	state := index.NewState(t.TempDir(), "svn://example.com/repo")
	state.Revision = 7

	return New(store, state, nil)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, testServer(t), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	rec := get(t, testServer(t), "/api/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Repository != "svn://example.com/repo" {
		t.Errorf("Repository = %q", resp.Repository)
	}
	if resp.Revision != 7 {
		t.Errorf("Revision = %d, want 7", resp.Revision)
	}
	if resp.Documents != 2 {
		t.Errorf("Documents = %d, want 2", resp.Documents)
	}
}

func TestSearch(t *testing.T) {
	rec := get(t, testServer(t), "/api/v1/search?q=getting")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 {
		t.Fatalf("Total = %d, want 1", resp.Total)
	}
	hit := resp.Hits[0]
	if hit.Path != "/trunk/readme.txt" {
		t.Errorf("Path = %q", hit.Path)
	}
	if hit.Author != "alice" {
		t.Errorf("Author = %q", hit.Author)
	}
	if hit.Revision != 3 {
		t.Errorf("Revision = %d, want 3", hit.Revision)
	}
}

func TestSearchValidation(t *testing.T) {
	tests := []struct {
		name string
		path string
		want int
	}{
		{"missing q", "/api/v1/search", http.StatusBadRequest},
		{"bad limit", "/api/v1/search?q=x&limit=zero", http.StatusBadRequest},
		{"negative limit", "/api/v1/search?q=x&limit=-1", http.StatusBadRequest},
		{"valid", "/api/v1/search?q=x&limit=5", http.StatusOK},
	}

	s := testServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.path)
			if rec.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
			}
		})
	}
}
