package scoring

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/trollornot/troll-analyzer/pkg/models"
)

// boundaryPunct is the punctuation treated as a word boundary in addition
// to whitespace and the start/end of text.
const boundaryPunct = `.,;:!?"'()[]{}<>/-`

func isBoundary(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(boundaryPunct, r)
}

// boundaryBefore reports whether position i in s is preceded by a word
// boundary. The start of text counts as a boundary.
func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isBoundary(r)
}

// boundaryAfter reports whether position i in s is a word boundary. The
// end of text counts as a boundary.
func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isBoundary(r)
}

// findMatches locates every occurrence of the given phrases in text.
// Matching is case-insensitive and an occurrence is rejected unless both
// of its edges sit on word boundaries, so "cope" never matches inside
// "copenhagen". The scan advances one byte past each found index rather
// than past the whole match, so overlapping occurrences of the same
// phrase are still found; cross-phrase overlaps are removed later during
// highlight deduplication.
func findMatches(text string, phrases []string, category models.SignalCategory) (int, []models.Highlight) {
	lower := strings.ToLower(text)

	count := 0
	var highlights []models.Highlight

	for _, phrase := range phrases {
		p := strings.ToLower(phrase)
		if p == "" {
			continue
		}

		for from := 0; ; {
			idx := strings.Index(lower[from:], p)
			if idx < 0 {
				break
			}
			idx += from
			end := idx + len(p)

			if boundaryBefore(lower, idx) && boundaryAfter(lower, end) {
				// Offsets are computed on the lowercased text; take the
				// highlight text from the original where the byte length
				// still lines up.
				matched := lower[idx:end]
				if end <= len(text) {
					matched = text[idx:end]
				}
				count++
				highlights = append(highlights, models.Highlight{
					Start:    idx,
					End:      end,
					Category: category,
					Text:     matched,
				})
			}

			from = idx + 1
		}
	}

	return count, highlights
}
