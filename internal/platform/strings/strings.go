// Package strings provides small string helpers shared by modules
package strings

import (
	std "strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// MustString returns s if it has non whitespace content otherwise panics
// name is used in the panic message so you can tell what was missing
func MustString(s string, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix normalizes a mount path like /summaries to a single leading
// slash and no trailing slash. Panics on an empty or root path
func MustPrefix(s string) string {
	s = "/" + std.Trim(std.TrimSpace(s), " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}

// Or returns s unless it is blank, in which case def
func Or(s, def string) string {
	if std.TrimSpace(s) == "" {
		return def
	}
	return s
}

// foldPool holds transformer chains; a chain is stateful so each call takes its own
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD, // split accents off their base letter
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)),
			width.Fold,
		)
	},
}

// fold lower cases s and strips diacritics, so Zürich becomes zurich
func fold(s string) string {
	tr := foldPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, std.ToValidUTF8(s, ""))
	tr.Reset()
	foldPool.Put(tr)
	if err != nil {
		return std.ToLower(s)
	}
	return out
}

// Measurement turns a free form label into a line protocol safe identifier:
// folded to lower case ASCII, runs of anything outside [a-z0-9] collapsed to one underscore
func Measurement(s string) string {
	var b std.Builder
	underscore := false
	for _, r := range fold(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return std.TrimSuffix(b.String(), "_")
}
