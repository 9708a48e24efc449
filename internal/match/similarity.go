package match

import (
	"strings"
	"unicode"
)

// Field name suffixes that carry no meaning for matching.
var noiseSuffixes = []string{"timestamp", "ids", "utc", "id", "at"}

// TokenizeName splits a field name into lowercase tokens on separators
// and CamelCase boundaries. "orderID" and "order_id" both yield
// ["order", "id"].
func TokenizeName(s string) []string {
	var (
		tokens  []string
		current []rune
	)

	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current = append(current, r)
	}

	flush()

	return tokens
}

// NormalizeName folds a field name into a comparable form.
func NormalizeName(s string) string {
	return strings.Join(TokenizeName(s), "")
}

// NormalizeNameStripped is NormalizeName without a trailing noise suffix
// such as "id" or "at".
func NormalizeNameStripped(s string) string {
	normalized := NormalizeName(s)

	for _, suffix := range noiseSuffixes {
		if len(normalized) > len(suffix) && strings.HasSuffix(normalized, suffix) {
			return strings.TrimSuffix(normalized, suffix)
		}
	}

	return normalized
}

// NameSimilarity scores two field names between 0 and 1, taking the
// better of the plain and the suffix-stripped comparison.
func NameSimilarity(a, b string) float64 {
	plain := Similarity(NormalizeName(a), NormalizeName(b))
	stripped := Similarity(NormalizeNameStripped(a), NormalizeNameStripped(b))

	return max(plain, stripped)
}

// Similarity is 1 minus the edit distance over the longer length.
func Similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}

	return 1 - float64(EditDistance(a, b))/float64(longest)
}

// EditDistance returns the Levenshtein distance between a and b in runes.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j

		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(ra)]
}

func isSeparator(r rune) bool {
	switch r {
	case '_', '-', ' ', '.', ':', '/':
		return true
	}

	return false
}

// startsToken reports a lower-to-upper transition, or the last capital of
// an acronym followed by a lowercase letter ("XMLParser" splits before P).
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	if !unicode.IsUpper(prev) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
