package expect

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/roach88/goldrun/internal/fixture"
)

// Sibling reads expectations from files stored next to the fixture.
type Sibling struct{}

// Path returns the sibling file path of fx for target.
func (Sibling) Path(fx *fixture.Fixture, target Target) string {
	return fx.Stem() + target.Suffix
}

// Exists reports whether the sibling file is present.
func (s Sibling) Exists(fx *fixture.Fixture, target Target) bool {
	info, err := os.Stat(s.Path(fx, target))
	return err == nil && !info.IsDir()
}

// Extract implements Source. The whole file is the expectation.
func (s Sibling) Extract(fx *fixture.Fixture, target Target) (Expectation, error) {
	path := s.Path(fx, target)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Expectation{}, fmt.Errorf("%w: %s", ErrMissingExpectation, path)
	}
	if err != nil {
		return Expectation{}, fmt.Errorf("read expectation %s: %w", path, err)
	}
	return Expectation{Kind: KindText, Origin: OriginSibling, Text: string(data)}, nil
}
