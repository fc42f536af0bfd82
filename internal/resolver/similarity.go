package resolver

import (
	"strings"
	"unicode"
)

// Similarity scoring for near-miss column and value references. Scores are
// in [0,1]; 1 means the normalized forms are identical. The score is the
// better of an edit-distance ratio over normalized strings and a token
// overlap ratio, so "KRAS_Status" still scores high against
// "KRAS_mutation_status" even though the edit distance is large.

// Similarity returns the combined similarity score between two references
func Similarity(a, b string) float64 {
	na, nb := normalize(a), normalize(b)
	if na == nb && na != "" {
		return 1.0
	}
	lev := levenshteinRatio(na, nb)
	tok := tokenOverlap(tokenize(a), tokenize(b))
	if tok > lev {
		return tok
	}
	return lev
}

// BestMatch scores value against every candidate and returns the best
// candidate, its score, and the runner-up score for ambiguity checks.
func BestMatch(value string, candidates []string) (best string, bestScore, runnerUp float64) {
	for _, cand := range candidates {
		score := Similarity(value, cand)
		switch {
		case score > bestScore:
			runnerUp = bestScore
			best, bestScore = cand, score
		case score > runnerUp:
			runnerUp = score
		}
	}
	return best, bestScore, runnerUp
}

// normalize lowercases and strips everything but letters and digits
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tokenize splits on underscores, punctuation, and spaces
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// tokenOverlap is the Dice coefficient over token sets
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(b))
	for _, t := range b {
		set[t] = true
	}
	shared := 0
	for _, t := range a {
		if set[t] {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(a)+len(b))
}

// levenshteinRatio is 1 - editDistance/maxLen over normalized strings
func levenshteinRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	dist := levenshtein(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1 - float64(dist)/float64(maxLen)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
