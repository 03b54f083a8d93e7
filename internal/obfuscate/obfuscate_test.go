package obfuscate

import (
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"plain", "alice", "s3cret"},
		{"empty password", "alice", ""},
		{"empty username", "", "s3cret"},
		{"both empty", "", ""},
		{"unicode", "björn", "pässwörd"},
		{"punctuation", "svc-indexer", "p@ss:word/with=chars"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := Encode(tt.username, tt.password)

			user, pass, err := Decode(token)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if user != tt.username || pass != tt.password {
				t.Errorf("round trip gave (%q, %q), want (%q, %q)", user, pass, tt.username, tt.password)
			}
		})
	}
}

func TestTokenIsNotPlaintext(t *testing.T) {
	token := Encode("alice", "hunter2")
	if strings.Contains(token, "alice") || strings.Contains(token, "hunter2") {
		t.Errorf("token %q leaks the credentials", token)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, _, err := Decode("not!!base64"); err == nil {
		t.Error("expected an error for invalid base64")
	}
}

func TestTokensDifferPerPosition(t *testing.T) {
	// Repeated input bytes must not scramble to repeated output bytes.
	token := Encode("aaaaaaaa", "aaaaaaaa")
	decoded, _, err := Decode(token)
	if err != nil {
		t.Fatal(err)
	}
	if decoded != "aaaaaaaa" {
		t.Fatalf("round trip broken: %q", decoded)
	}
	if strings.Count(token, string(token[0])) == len(token) {
		t.Error("scrambled output repeats a single byte")
	}
}
