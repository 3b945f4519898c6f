package topictree

import "strings"

// MatchThreshold is the partial-ratio score a segment must exceed to count
// as a filter match.
const MatchThreshold = 80

// partialRatio computes a best-match substring alignment score between 0
// and 100, the way RapidFuzz's partial_ratio does: the shorter of the two
// (lower-cased) strings is slid across every same-length window of the
// longer one, and the score is the best per-window similarity found. No Go
// library exposes this exact algorithm, so it's implemented directly (see
// DESIGN.md).
func partialRatio(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 100
	}
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}
	if len(long) == 0 {
		return 0
	}

	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		window := long[i : i+len(short)]
		d := levenshtein(short, window)
		ratio := int(100 * (1 - float64(d)/float64(len(short))))
		if ratio > best {
			best = ratio
		}
	}
	return best
}

// levenshtein computes the classic single-character edit distance between
// a and b using the standard two-row dynamic-programming table.
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
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
