package expect

import (
	"strings"

	"github.com/roach88/goldrun/internal/fixture"
)

// Default comment delimiters for annotation blocks.
const (
	DefaultOpen  = "/*"
	DefaultClose = "*/"
)

// Annotation reads expectation blocks embedded in fixture comments.
//
// A block starts at a line that is exactly Open followed by the target tag,
// and ends at a line that is exactly Close. The lines in between are the
// expectation, kept verbatim. The zero value uses "/*" and "*/".
type Annotation struct {
	Open  string
	Close string
}

func (a Annotation) delimiters() (string, string) {
	opener, closer := a.Open, a.Close
	if opener == "" {
		opener = DefaultOpen
	}
	if closer == "" {
		closer = DefaultClose
	}
	return opener, closer
}

// Find returns the body of the first block tagged tag.
// The second result is false when the fixture has no such block.
// A block left open runs to the end of the file.
func (a Annotation) Find(fx *fixture.Fixture, tag string) (string, bool) {
	opener, closer := a.delimiters()
	header := opener + tag

	var body strings.Builder
	capturing := false
	for _, line := range fx.Lines() {
		bare := strings.TrimRight(line, "\r\n")
		if !capturing {
			if bare == header {
				capturing = true
			}
			continue
		}
		if bare == closer {
			break
		}
		body.WriteString(line)
	}
	return body.String(), capturing
}

// Extract implements Source. A fixture without a block expects empty output.
func (a Annotation) Extract(fx *fixture.Fixture, target Target) (Expectation, error) {
	text, _ := a.Find(fx, target.Tag)
	return Expectation{Kind: KindText, Origin: OriginAnnotation, Text: text}, nil
}
