package normalize

import (
	"regexp"
	"strings"

	"ugbmonitor/internal/dataset"
)

var (
	// Letters, digits, underscore, whitespace, dot and hyphen survive cleaning.
	textNoise  = regexp.MustCompile(`[^\p{L}\p{N}_\s.\-]`)
	spaceRun   = regexp.MustCompile(`\s+`)
	commaSpace = regexp.MustCompile(`\s*,\s*`)
)

type variantPattern struct {
	variant string
	re      *regexp.Regexp
}

type compiledEntry struct {
	canonical string
	variants  []variantPattern
	exact     map[string]struct{}
}

// Normalizer applies a Dictionary to free text and builds comparison keys.
// A Normalizer is immutable and safe for concurrent use.
type Normalizer struct {
	dict    Dictionary
	entries []compiledEntry
	keyMap  map[string]string
}

// New compiles a Normalizer for dict. The dictionary is copied.
func New(dict Dictionary) *Normalizer {
	d := dict.clone()
	n := &Normalizer{
		dict:    d,
		entries: make([]compiledEntry, len(d)),
		keyMap:  make(map[string]string),
	}

	for i, e := range d {
		ce := compiledEntry{
			canonical: e.Canonical,
			variants:  make([]variantPattern, 0, len(e.Variants)),
			exact:     make(map[string]struct{}, len(e.Variants)),
		}
		for _, v := range e.Variants {
			ce.exact[v] = struct{}{}
			ce.variants = append(ce.variants, variantPattern{
				variant: v,
				re:      regexp.MustCompile(`\b` + regexp.QuoteMeta(v) + `\b`),
			})
		}
		n.entries[i] = ce

		// first entry wins on collisions
		if _, ok := n.keyMap[strings.ToUpper(e.Canonical)]; !ok {
			n.keyMap[strings.ToUpper(e.Canonical)] = e.Canonical
		}
		for _, v := range e.Variants {
			up := strings.ToUpper(v)
			if _, ok := n.keyMap[up]; !ok {
				n.keyMap[up] = e.Canonical
			}
		}
	}
	return n
}

var defaultNormalizer = New(DefaultDictionary())

// Default returns the normalizer built from DefaultDictionary.
func Default() *Normalizer {
	return defaultNormalizer
}

// Dictionary returns a copy of the dictionary this normalizer was built from.
func (n *Normalizer) Dictionary() Dictionary {
	return n.dict.clone()
}

// CleanText uppercases, trims, replaces punctuation other than dot and
// hyphen with a space and collapses whitespace.
func CleanText(text string) string {
	s := strings.ToUpper(strings.TrimSpace(text))
	s = textNoise.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeText maps free text onto its canonical vocabulary.
//
// An exact match of the cleaned text against a canonical form or one of its
// variants returns the canonical form. Otherwise each entry is scanned in
// order: the first variant found as a substring has its whole-word
// occurrences replaced and ends the scan of that entry. Text with no match
// is returned cleaned.
func (n *Normalizer) NormalizeText(text string) string {
	s := CleanText(text)
	if s == "" {
		return ""
	}

	for _, e := range n.entries {
		if s == e.canonical {
			return e.canonical
		}
		if _, ok := e.exact[s]; ok {
			return e.canonical
		}
	}

	for _, e := range n.entries {
		for _, v := range e.variants {
			if v.variant == "" || !strings.Contains(s, v.variant) {
				continue
			}
			if v.re.MatchString(s) {
				s = v.re.ReplaceAllLiteralString(s, e.canonical)
			}
			break
		}
	}
	return s
}

// NormalizeKey builds the comparison form of a single value: uppercase,
// trimmed, single-spaced, no spaces around commas, then mapped through the
// dictionary by exact match. Stored data is never rewritten with it.
func (n *Normalizer) NormalizeKey(value string) string {
	s := strings.ToUpper(strings.TrimSpace(value))
	if s == "" {
		return ""
	}
	s = spaceRun.ReplaceAllString(s, " ")
	s = commaSpace.ReplaceAllString(s, ",")
	if canonical, ok := n.keyMap[s]; ok {
		return canonical
	}
	return s
}

// DedupeKey joins the normalized values of columns in record with "|".
// Columns absent from the record contribute an empty part.
func (n *Normalizer) DedupeKey(record map[string]string, columns []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = n.NormalizeKey(record[c])
	}
	return strings.Join(parts, "|")
}

// DedupeKeys computes one key per row of table. Columns the table does not
// have are skipped; when none of the columns exist the result is empty.
func (n *Normalizer) DedupeKeys(table *dataset.Table, columns []string) []string {
	var idx []int
	for _, c := range columns {
		if i := table.Index(c); i >= 0 {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return []string{}
	}

	keys := make([]string, len(table.Rows))
	parts := make([]string, len(idx))
	for r, row := range table.Rows {
		for j, i := range idx {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			parts[j] = n.NormalizeKey(v)
		}
		keys[r] = strings.Join(parts, "|")
	}
	return keys
}

// NormalizeText normalizes text with the default dictionary.
func NormalizeText(text string) string {
	return defaultNormalizer.NormalizeText(text)
}

// NormalizeKey normalizes a value with the default dictionary.
func NormalizeKey(value string) string {
	return defaultNormalizer.NormalizeKey(value)
}
