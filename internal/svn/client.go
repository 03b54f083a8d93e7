package svn

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Node kinds reported by the backend.
const (
	NodeFile = "file"
	NodeDir  = "dir"
)

// LogPath is one changed path inside a revision's change log.
type LogPath struct {
	Path         string
	Action       string // backend-native action code: A, M, D, R, ...
	CopyFromPath string // non-empty iff the path was copied from somewhere
}

// LogEntry is one revision's changeset as reported by the backend.
type LogEntry struct {
	Revision int
	Author   string
	Date     time.Time
	Message  string
	Paths    []LogPath
}

// Dirent describes a single repository entry at a revision. For recursive
// listings Path is relative to the listed root ("" for the root itself).
type Dirent struct {
	Path        string
	Kind        string // NodeFile or NodeDir
	Size        int64
	CreatedRev  int // revision in which the entry's content last changed
	CreatedDate time.Time
	LastAuthor  string
}

// Client is one opaque, reusable connection context to the Subversion
// backend. A client is used by exactly one operation at a time; the Pool
// hands them out and takes them back.
type Client interface {
	// Youngest returns the repository head revision.
	Youngest(ctx context.Context) (int, error)

	// Log enumerates the change log for the inclusive revision range,
	// invoking fn once per revision in backend order. A non-nil error from
	// fn aborts the enumeration and is returned unchanged.
	Log(ctx context.Context, first, last int, fn func(LogEntry) error) error

	// List recursively enumerates every entry under path at the given
	// revision, including the root itself (with an empty relative path).
	List(ctx context.Context, path string, revision int, fn func(Dirent) error) error

	// Stat returns the entry metadata for a single path at a revision.
	Stat(ctx context.Context, path string, revision int) (*Dirent, error)

	// PropList returns all versioned properties of path at a revision.
	PropList(ctx context.Context, path string, revision int) (map[string]string, error)

	// Cat streams the raw file content of path at a revision into w.
	Cat(ctx context.Context, path string, revision int, w io.Writer) error
}

// execClient talks to the repository through the installed `svn` command-line
// client, requesting --xml output and parsing it as it streams. Credentials
// are bound at construction and attached to every invocation.
type execClient struct {
	url      string
	username string
	password string
	svnBin   string
}

// NewClient returns a Client for the repository at url. username and password
// may be empty for anonymous access.
func NewClient(url, username, password string) Client {
	return &execClient{
		url:      strings.TrimSuffix(url, "/"),
		username: username,
		password: password,
		svnBin:   "svn",
	}
}

func (c *execClient) baseArgs() []string {
	args := []string{"--non-interactive", "--no-auth-cache"}
	if c.username != "" {
		args = append(args, "--username", c.username, "--password", c.password)
	}
	return args
}

// target builds a peg-revision target URL for a repository-absolute path.
func (c *execClient) target(path string, revision int) string {
	t := c.url
	if path != "" {
		if !strings.HasPrefix(path, "/") {
			t += "/"
		}
		t += path
	}
	if revision >= 0 {
		t += "@" + strconv.Itoa(revision)
	}
	return t
}

// run executes one svn subcommand, handing stdout to consume. A consume error
// kills the subprocess and wins; otherwise a non-zero exit is mapped to an
// *Error parsed from stderr.
func (c *execClient) run(ctx context.Context, consume func(io.Reader) error, args ...string) error {
	cmd := exec.CommandContext(ctx, c.svnBin, append(args, c.baseArgs()...)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("svn: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("svn: start %s: %w", c.svnBin, err)
	}

	consumeErr := consume(stdout)
	if consumeErr != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return consumeErr
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return parseClientError(stderr.String())
	}
	return nil
}

func (c *execClient) Youngest(ctx context.Context) (int, error) {
	var rev int
	err := c.run(ctx, func(r io.Reader) error {
		var parseErr error
		rev, parseErr = parseInfoRevision(r)
		return parseErr
	}, "info", "--xml", c.url)
	if err != nil {
		return 0, err
	}
	return rev, nil
}

func (c *execClient) Log(ctx context.Context, first, last int, fn func(LogEntry) error) error {
	return c.run(ctx, func(r io.Reader) error {
		return parseLog(r, fn)
	}, "log", "--xml", "--verbose", "-r", fmt.Sprintf("%d:%d", first, last), c.url)
}

func (c *execClient) List(ctx context.Context, path string, revision int, fn func(Dirent) error) error {
	return c.run(ctx, func(r io.Reader) error {
		return parseList(r, fn)
	}, "list", "--xml", "--depth", "infinity", c.target(path, revision))
}

func (c *execClient) Stat(ctx context.Context, path string, revision int) (*Dirent, error) {
	var found *Dirent
	err := c.run(ctx, func(r io.Reader) error {
		return parseList(r, func(d Dirent) error {
			if found == nil {
				e := d
				found = &e
			}
			return nil
		})
	}, "list", "--xml", "--depth", "empty", c.target(path, revision))
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, &Error{Code: codeFSNotFound, Message: fmt.Sprintf("no entry for %s@%d", path, revision)}
	}
	return found, nil
}

func (c *execClient) PropList(ctx context.Context, path string, revision int) (map[string]string, error) {
	var props map[string]string
	err := c.run(ctx, func(r io.Reader) error {
		var parseErr error
		props, parseErr = parsePropList(r)
		return parseErr
	}, "proplist", "--xml", "--verbose", c.target(path, revision))
	if err != nil {
		return nil, err
	}
	return props, nil
}

func (c *execClient) Cat(ctx context.Context, path string, revision int, w io.Writer) error {
	return c.run(ctx, func(r io.Reader) error {
		if _, err := io.Copy(w, r); err != nil {
			return fmt.Errorf("svn: read content: %w", err)
		}
		return nil
	}, "cat", c.target(path, revision))
}
