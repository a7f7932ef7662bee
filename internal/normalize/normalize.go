// Package normalize makes golden comparison insensitive to formatting.
//
// Compiler output and golden text are compared after collapsing every
// whitespace run (spaces, tabs, newlines) into a single space and trimming
// both ends. Token content, order and count still matter.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalizer collapses whitespace before comparison.
//
// The zero value is ready to use. Set NFC to also apply Unicode NFC
// composition so that precomposed and decomposed forms of the same text
// compare equal.
type Normalizer struct {
	NFC bool
}

// Normalize returns s with every whitespace run replaced by one space and
// leading/trailing whitespace removed.
func (n Normalizer) Normalize(s string) string {
	if n.NFC {
		s = norm.NFC.String(s)
	}
	return strings.Join(strings.Fields(s), " ")
}

// Equal reports whether a and b are identical after normalization.
func (n Normalizer) Equal(a, b string) bool {
	return n.Normalize(a) == n.Normalize(b)
}

// Normalize applies the default Normalizer.
func Normalize(s string) string {
	return Normalizer{}.Normalize(s)
}

// Equal compares a and b with the default Normalizer.
func Equal(a, b string) bool {
	return Normalizer{}.Equal(a, b)
}
