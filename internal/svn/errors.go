package svn

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Subversion APR error codes this layer cares about. The backend reports
// "path does not resolve at this URL/revision" as one of these, depending on
// which subcommand tripped over it.
const (
	codeIllegalURL   = 170000 // SVN_ERR_RA_ILLEGAL_URL
	codeFSNotFound   = 160013 // SVN_ERR_FS_NOT_FOUND
	codeEntryMissing = 200009 // SVN_ERR_ENTRY_NOT_FOUND (client-side wrapper)
)

// Error is a backend failure carrying the Subversion APR error code.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("svn: E%06d: %s", e.Code, e.Message)
	}
	return "svn: " + e.Message
}

// IsNotFound reports whether err represents the "illegal URL / path does not
// exist at this location" condition. This is the only backend failure the
// access layer recovers from; everything else propagates.
func IsNotFound(err error) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code {
	case codeIllegalURL, codeFSNotFound, codeEntryMissing:
		return true
	}
	return false
}

// UnknownActionError is the fatal classification failure: the backend reported
// a change action outside the closed Add/Modify/Delete/Replace set. The scan
// that hit it aborts immediately.
type UnknownActionError struct {
	Action   string
	Path     string
	Revision int
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("svn: unknown change action %q for %s in revision %d", e.Action, e.Path, e.Revision)
}

// errCodeRe matches the error and warning codes the svn client prints on
// stderr, e.g. "svn: E170000: ..." or "svn: warning: W160013: ...".
var errCodeRe = regexp.MustCompile(`\b[EW](\d{6}):`)

// parseClientError turns the svn client's stderr output into an *Error.
// The first recognizable code wins; output without one becomes a code-less
// Error so the message still reaches the caller.
func parseClientError(stderr string) *Error {
	msg := strings.TrimSpace(stderr)
	if m := errCodeRe.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		return &Error{Code: code, Message: msg}
	}
	return &Error{Message: msg}
}
