package svn

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

// The svn client's --xml output shapes, kept private to the parser.

type xmlLogEntry struct {
	Revision int    `xml:"revision,attr"`
	Author   string `xml:"author"`
	Date     string `xml:"date"`
	Msg      string `xml:"msg"`
	Paths    []struct {
		Action       string `xml:"action,attr"`
		CopyFromPath string `xml:"copyfrom-path,attr"`
		Path         string `xml:",chardata"`
	} `xml:"paths>path"`
}

type xmlListEntry struct {
	Kind   string `xml:"kind,attr"`
	Name   string `xml:"name"`
	Size   int64  `xml:"size"`
	Commit struct {
		Revision int    `xml:"revision,attr"`
		Author   string `xml:"author"`
		Date     string `xml:"date"`
	} `xml:"commit"`
}

type xmlPropTarget struct {
	Path       string `xml:"path,attr"`
	Properties []struct {
		Name  string `xml:"name,attr"`
		Value string `xml:",chardata"`
	} `xml:"property"`
}

type xmlInfoEntry struct {
	Revision int `xml:"revision,attr"`
}

// forEachElement stream-decodes r, invoking fn for every start element with
// the given local name. It never materializes the whole document, so large
// logs and listings are handled entry by entry.
func forEachElement(r io.Reader, name string, fn func(*xml.Decoder, xml.StartElement) error) error {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("svn: parse xml: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != name {
			continue
		}
		if err := fn(dec, se); err != nil {
			return err
		}
	}
}

// parseDate parses the backend's ISO-8601 timestamps
// (e.g. "2026-03-01T10:15:30.123456Z").
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseLog(r io.Reader, fn func(LogEntry) error) error {
	return forEachElement(r, "logentry", func(dec *xml.Decoder, se xml.StartElement) error {
		var raw xmlLogEntry
		if err := dec.DecodeElement(&raw, &se); err != nil {
			return fmt.Errorf("svn: parse logentry: %w", err)
		}
		entry := LogEntry{
			Revision: raw.Revision,
			Author:   raw.Author,
			Date:     parseDate(raw.Date),
			Message:  raw.Msg,
			Paths:    make([]LogPath, len(raw.Paths)),
		}
		for i, p := range raw.Paths {
			entry.Paths[i] = LogPath{
				Path:         p.Path,
				Action:       p.Action,
				CopyFromPath: p.CopyFromPath,
			}
		}
		return fn(entry)
	})
}

func parseList(r io.Reader, fn func(Dirent) error) error {
	return forEachElement(r, "entry", func(dec *xml.Decoder, se xml.StartElement) error {
		var raw xmlListEntry
		if err := dec.DecodeElement(&raw, &se); err != nil {
			return fmt.Errorf("svn: parse list entry: %w", err)
		}
		name := raw.Name
		if name == "." {
			name = ""
		}
		return fn(Dirent{
			Path:        name,
			Kind:        raw.Kind,
			Size:        raw.Size,
			CreatedRev:  raw.Commit.Revision,
			CreatedDate: parseDate(raw.Commit.Date),
			LastAuthor:  raw.Commit.Author,
		})
	})
}

func parsePropList(r io.Reader) (map[string]string, error) {
	props := make(map[string]string)
	err := forEachElement(r, "target", func(dec *xml.Decoder, se xml.StartElement) error {
		var raw xmlPropTarget
		if err := dec.DecodeElement(&raw, &se); err != nil {
			return fmt.Errorf("svn: parse proplist: %w", err)
		}
		for _, p := range raw.Properties {
			props[p.Name] = p.Value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return props, nil
}

func parseInfoRevision(r io.Reader) (int, error) {
	rev := -1
	err := forEachElement(r, "entry", func(dec *xml.Decoder, se xml.StartElement) error {
		var raw xmlInfoEntry
		if err := dec.DecodeElement(&raw, &se); err != nil {
			return fmt.Errorf("svn: parse info: %w", err)
		}
		if rev < 0 {
			rev = raw.Revision
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if rev < 0 {
		return 0, &Error{Message: "info response carried no entry"}
	}
	return rev, nil
}
