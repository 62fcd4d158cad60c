package source

import (
	"context"
	"fmt"
	"os"

	"github.com/gobwas/glob"
)

// Matcher filters entry names by glob patterns.
type Matcher struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewMatcher compiles the include and exclude patterns.
func NewMatcher(include, exclude []string) (*Matcher, error) {
	m := &Matcher{}

	for _, pattern := range include {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern '%s': %w", pattern, err)
		}
		m.include = append(m.include, g)
	}

	for _, pattern := range exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
		m.exclude = append(m.exclude, g)
	}

	return m, nil
}

// Match reports whether name passes the filters. Exclude patterns take
// precedence; no include patterns means everything is included.
func (m *Matcher) Match(name string) bool {
	for _, g := range m.exclude {
		if g.Match(name) {
			return false
		}
	}
	if len(m.include) == 0 {
		return true
	}
	for _, g := range m.include {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Directory lists the entries of a directory. Subdirectories are treated
// like files: a snapshot directory named after its capture time is a record.
type Directory struct {
	path      string
	matcher   *Matcher
	extractor Extractor
}

// NewDirectory returns a source over the entries of path. A nil matcher
// accepts every entry.
func NewDirectory(path string, m *Matcher, x Extractor) *Directory {
	if m == nil {
		m = &Matcher{}
	}
	return &Directory{path: path, matcher: m, extractor: x}
}

// Path returns the scanned directory.
func (d *Directory) Path() string {
	return d.path
}

// Read implements Source. Entries are visited in name order, dot files are
// skipped.
func (d *Directory) Read(ctx context.Context) (*Batch, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, NewSourceError(d.String(), "scan", err)
	}

	batch := &Batch{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if name[0] == '.' || !d.matcher.Match(name) {
			continue
		}
		batch.add(d.extractor, name)
	}
	return batch, nil
}

// String implements Source.
func (d *Directory) String() string {
	return "dir:" + d.path
}
