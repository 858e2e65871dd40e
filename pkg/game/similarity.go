// This file implements the normalized string similarity used to compare a
// typed guess against the canonical track metadata. The measure is edit
// distance based so minor typos still score close to 1.

package game

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// normalize lowercases s and collapses all interior whitespace runs to a
// single space so casing and sloppy spacing never affect the score.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Similarity returns a closeness score in [0,1] for the two strings. The
// comparison is case and whitespace insensitive. Two empty strings are
// considered identical (1); if exactly one side is empty the score is 0.
// Otherwise the score is 1 minus the Levenshtein distance relative to the
// longer string, clamped at 0.
func Similarity(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	maxLen := len([]rune(a))
	if n := len([]rune(b)); n > maxLen {
		maxLen = n
	}
	d := levenshtein.ComputeDistance(a, b)
	score := 1 - float64(d)/float64(maxLen)
	if score < 0 {
		return 0
	}
	return score
}
