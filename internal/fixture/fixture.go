// Package fixture discovers and loads compiler test fixtures.
//
// A fixture is a source file that is both the input handed to the
// compiler-under-test and, through embedded annotations or sibling files,
// the source of truth for its expected output. Fixtures are read once at
// scan time and never mutated.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtension is the fixture source extension used when none is configured.
const DefaultExtension = ".c"

// Fixture is a loaded fixture source file.
type Fixture struct {
	// Path is the fixture path as discovered (directory joined with file name).
	Path string

	// Source is the full file contents.
	Source string
}

// Name returns the fixture file name without its directory.
func (f *Fixture) Name() string {
	return filepath.Base(f.Path)
}

// Stem returns the path with its extension removed.
// "tests/006.c" has stem "tests/006".
func (f *Fixture) Stem() string {
	return strings.TrimSuffix(f.Path, filepath.Ext(f.Path))
}

// Lines splits the source into lines, keeping each line's terminator.
// The last line is returned even when it has no trailing newline.
func (f *Fixture) Lines() []string {
	return strings.SplitAfter(f.Source, "\n")
}

// Scan returns the paths of the files directly under dir whose name ends with
// ext, sorted lexicographically. Subdirectories are not searched.
//
// A missing or unreadable directory is an error: no fixture is ever skipped
// silently.
func Scan(dir, ext string) ([]string, error) {
	if ext == "" {
		ext = DefaultExtension
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan fixtures: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	// Run order must be reproducible across invocations and platforms.
	sort.Strings(paths)
	return paths, nil
}

// Load reads a single fixture.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load fixture: %w", err)
	}
	return &Fixture{Path: path, Source: string(data)}, nil
}

// LoadAll scans dir and loads every fixture in sorted order.
func LoadAll(dir, ext string) ([]*Fixture, error) {
	paths, err := Scan(dir, ext)
	if err != nil {
		return nil, err
	}

	fixtures := make([]*Fixture, 0, len(paths))
	for _, path := range paths {
		fx, err := Load(path)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, fx)
	}
	return fixtures, nil
}
