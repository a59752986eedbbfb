package flexquery

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// decomposer folds compatibility forms (subscript and superscript digits,
// ligatures) into their plain equivalents and strips combining marks left
// over from the decomposition. Chained transformers carry buffers, so one
// is built per call rather than shared.
func decomposer() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// asciiFolds maps the runes NFKD cannot decompose to an ASCII form.
// Covers the signs seen in upstream gas and unit names: the micro sign
// (NFKD turns U+00B5 into Greek mu first), dashes and typographic quotes.
var asciiFolds = map[rune]string{
	'µ': "u",
	'μ': "u",
	'Δ': "Delta",
	'°': "deg",
	'–': "-",
	'—': "-",
	'−': "-",
	'‘': "'",
	'’': "'",
	'“': `"`,
	'”': `"`,
	'×': "x",
	'·': ".",
}

// NormalizeName transliterates a display name to ASCII. It is a pure,
// total function: unmappable runes are dropped rather than reported, so
// the result for any valid input is ASCII-only. The upstream gas name
// "N₂O" becomes "N2O", the unit "µg" becomes "ug".
func NormalizeName(name string) string {
	folded, _, err := transform.String(decomposer(), name)
	if err != nil {
		// transform failures leave the input intact; the rune loop below
		// still guarantees ASCII output.
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII:
			b.WriteRune(r)
		default:
			if repl, ok := asciiFolds[r]; ok {
				b.WriteString(repl)
			}
		}
	}

	return b.String()
}
