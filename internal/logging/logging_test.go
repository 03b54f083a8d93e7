package logging

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"console info", "info", "console", false},
		{"json debug", "debug", "json", false},
		{"warn", "warn", "json", false},
		{"bad level", "loud", "json", true},
		{"bad format", "info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q, %q) error = %v, wantErr %v", tt.level, tt.format, err, tt.wantErr)
			}
			if err == nil && logger == nil {
				t.Error("expected a logger")
			}
		})
	}
}
