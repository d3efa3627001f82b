// Package labels canonicalizes group keys before they become series ids
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFC normalization
// 3 Remove format chars (ZWJ ZWNJ BOM)
// 4 Width fold fullwidth to ASCII
// 5 Collapse whitespace to single spaces and trim
package labels

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Blank is the key used for rows whose group value is empty
const Blank = "(no value)"

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFC,
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

// Key returns the canonical grouping key for raw
// Keys that normalize to nothing collapse onto Blank
func Key(raw string) string {
	s := strings.ToValidUTF8(raw, "")
	if s == "" {
		return Blank
	}

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		ns = s
	}

	ns = strings.Join(strings.Fields(ns), " ")
	if ns == "" {
		return Blank
	}
	return ns
}
