// Package textnorm canonicalizes raw OCR output into a form suitable for matching.
//
// OCR engines emit the same visible text in many encodings: compatibility code points,
// zero-width joiners, detached combining marks, typographic dashes and quotes. Normalize
// folds all of them into lower-case ASCII letters, digits, hyphens and single spaces.
//
// Normalization Steps (in order):
//   - Unicode compatibility composition (NFKC)
//   - Lower-casing
//   - Control, format, zero-width and space-separator runes become a plain space
//   - Typographic dashes, quotes and ellipsis become their ASCII forms
//   - Combining marks are stripped after canonical decomposition (NFD)
//   - Anything outside [a-z0-9 -] becomes a space
//   - Whitespace runs collapse to one space; ends are trimmed
//
// Normalize is pure: the same input always yields the same output, and applying it to
// its own output is a no-op.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Text is the normalized form of a body of OCR text.
type Text struct {
	// Value is the cleaned string: lower-case ASCII letters, digits, hyphens and single spaces.
	Value string

	// Words is Value split on spaces. Empty tokens are never present.
	Words []string
}

// punctuation maps typographic variants to the ASCII characters they stand for.
var punctuation = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"−", "-", // minus sign
	"‘", "'",
	"’", "'",
	"‚", "'",
	"‛", "'",
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"‟", `"`,
	"…", "...",
)

// Normalize runs the full normalization pipeline over raw OCR text.
func Normalize(raw string) Text {
	value := normalizeString(raw)
	return Text{
		Value: value,
		Words: strings.Fields(value),
	}
}

// String normalizes s and returns only the cleaned string.
func String(s string) string {
	return normalizeString(s)
}

// Compact removes every space from an already normalized string.
// "nalla sopara" becomes "nallasopara".
func Compact(normalized string) string {
	return strings.ReplaceAll(normalized, " ", "")
}

func normalizeString(s string) string {
	if s == "" {
		return ""
	}

	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	s = strings.Map(blankInvisible, s)
	s = punctuation.Replace(s)
	s = stripMarks(s)
	s = strings.Map(keepMatchable, s)

	return strings.Join(strings.Fields(s), " ")
}

// blankInvisible replaces controls, format characters (zero-width space and joiners,
// BOM, soft hyphen) and every Unicode space separator with an ASCII space.
func blankInvisible(r rune) rune {
	if unicode.In(r, unicode.Cc, unicode.Cf, unicode.Z) {
		return ' '
	}
	return r
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		// Decomposed input still loses its marks in keepMatchable.
		return norm.NFD.String(s)
	}
	return out
}

func keepMatchable(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z':
		return r
	case r >= '0' && r <= '9':
		return r
	case r == ' ' || r == '-':
		return r
	default:
		return ' '
	}
}
