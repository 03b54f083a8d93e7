// Package obfuscate stores a username/password pair as a single scrambled
// token, so credentials in config files are not readable at a glance. This is
// reversible byte scrambling, not encryption; anyone with this source can
// decode a token.
package obfuscate

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// pad is the fixed scrambling key. Changing it invalidates existing tokens.
var pad = []byte("svnquery-credential-pad")

// separator joins the two credential halves before scrambling. NUL cannot
// occur in either half.
const separator = "\x00"

// Encode packs a username/password pair into a printable token.
func Encode(username, password string) string {
	plain := []byte(username + separator + password)
	return base64.URLEncoding.EncodeToString(scramble(plain))
}

// Decode reverses Encode. It fails on tokens that are not valid base64 or do
// not contain a scrambled pair.
func Decode(token string) (username, password string, err error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", "", fmt.Errorf("obfuscate: decode token: %w", err)
	}
	plain := string(scramble(raw))
	user, pass, ok := strings.Cut(plain, separator)
	if !ok {
		return "", "", fmt.Errorf("obfuscate: token does not contain a credential pair")
	}
	return user, pass, nil
}

// scramble XORs each byte with the pad and its own position. XOR makes the
// transform its own inverse.
func scramble(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ pad[i%len(pad)] ^ byte(i)
	}
	return out
}
