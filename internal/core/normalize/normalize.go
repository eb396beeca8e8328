// Package normalize provides a deterministic text normalizer for
// identifiers that arrive from external token issuers.
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKC normalization
// 3 Case folding
// 4 Remove zero-width and format chars
// 5 Width fold fullwidth to ASCII
// 6 Collapse whitespace to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,
		)
	},
}

// Identifier returns the canonical form of s for comparison.
// Roles and handles compare equal iff their Identifier forms are equal
func Identifier(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	return collapseSpaces(ns)
}

// Equal reports whether a and b normalize to the same identifier
func Equal(a, b string) bool {
	return Identifier(a) == Identifier(b)
}

// collapseSpaces converts whitespace runs to a single ASCII space and trims
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			continue
		}
		if inWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inWS = false
		b.WriteRune(r)
	}
	return b.String()
}
