package resolver

import (
	"strings"

	"github.com/intakehq/intake/engine/entity"
)

const (
	// strictnessThreshold is the largest distance a fuzzy match may have to
	// be kept at all.
	strictnessThreshold = 0.3
	// autoAcceptThreshold auto-accepts a lone fuzzy match below it.
	autoAcceptThreshold = 0.1

	containmentWeight = 0.2
	tokenWeight       = 0.5
)

// Distance scores how far apart two names are, in [0,1] with 0 meaning
// identical after normalization. It takes the best of three views: scaled
// edit distance, substring containment, and word overlap, so that both typos
// ("Marketting" → "Marketing") and partial names ("Sales" → "Sales East")
// land under the strictness threshold.
func Distance(a, b string) float64 {
	na := entity.Normalize(a)
	nb := entity.Normalize(b)
	if na == nb {
		return 0
	}
	if na == "" || nb == "" {
		return 1
	}
	longest := max(len(na), len(nb))
	best := float64(levenshtein(na, nb)) / float64(longest)
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		shortest := min(len(na), len(nb))
		d := containmentWeight * (1 - float64(shortest)/float64(longest))
		best = min(best, d)
	}
	if d := tokenWeight * (1 - tokenOverlap(na, nb)); d < best {
		best = d
	}
	return best
}

// tokenOverlap is the Jaccard index over whitespace-separated words.
func tokenOverlap(a, b string) float64 {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(wordsA))
	for _, w := range wordsA {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(wordsB))
	for _, w := range wordsB {
		setB[w] = struct{}{}
	}
	shared := 0
	union := len(setA)
	for w := range setB {
		if _, ok := setA[w]; ok {
			shared++
		} else {
			union++
		}
	}
	return float64(shared) / float64(union)
}

// levenshtein computes the Levenshtein edit distance between a and b.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	la := len(a)
	lb := len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		ai := a[i-1]
		for j := 1; j <= lb; j++ {
			cost := 0
			if ai != b[j-1] {
				cost = 1
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}
