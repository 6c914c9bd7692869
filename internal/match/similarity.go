package match

import "strings"

// Similarity scores how close two normalized texts are, in [0,1].
// It blends a sequence ratio (70%) with word-set Jaccard overlap (30%):
// the overlap term compensates for the sequence ratio's sensitivity to
// word reordering, which is common in LLM paraphrase.
func Similarity(a, b string) float64 {
	aTokens := strings.Fields(a)
	bTokens := strings.Fields(b)

	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}

	return 0.7*sequenceRatio(aTokens, bTokens) + 0.3*jaccard(aTokens, bTokens)
}

// sequenceRatio is the classic matching-blocks ratio over word tokens:
// 2*M / (len(a)+len(b)) where M is the total size of all matching blocks.
func sequenceRatio(a, b []string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	matched := matchingBlocks(a, 0, len(a), b, 0, len(b))
	return 2 * float64(matched) / float64(total)
}

// matchingBlocks recursively sums matching block sizes around the longest
// common contiguous run, the way difflib's SequenceMatcher does.
func matchingBlocks(a []string, aLo, aHi int, b []string, bLo, bHi int) int {
	bestI, bestJ, bestSize := longestMatch(a, aLo, aHi, b, bLo, bHi)
	if bestSize == 0 {
		return 0
	}

	size := bestSize
	size += matchingBlocks(a, aLo, bestI, b, bLo, bestJ)
	size += matchingBlocks(a, bestI+bestSize, aHi, b, bestJ+bestSize, bHi)
	return size
}

// longestMatch finds the longest contiguous run of equal tokens between
// a[aLo:aHi] and b[bLo:bHi]
func longestMatch(a []string, aLo, aHi int, b []string, bLo, bHi int) (int, int, int) {
	// Index positions of each token in b's window
	positions := make(map[string][]int)
	for j := bLo; j < bHi; j++ {
		positions[b[j]] = append(positions[b[j]], j)
	}

	bestI, bestJ, bestSize := aLo, bLo, 0
	// lengths[j] = length of run ending at a[i-1], b[j-1]
	lengths := make(map[int]int)

	for i := aLo; i < aHi; i++ {
		newLengths := make(map[int]int)
		for _, j := range positions[a[i]] {
			k := lengths[j-1] + 1
			newLengths[j] = k
			if k > bestSize {
				bestI, bestJ, bestSize = i-k+1, j-k+1, k
			}
		}
		lengths = newLengths
	}

	return bestI, bestJ, bestSize
}

// jaccard is word-set intersection over union
func jaccard(a, b []string) float64 {
	aSet := make(map[string]struct{}, len(a))
	for _, t := range a {
		aSet[t] = struct{}{}
	}
	bSet := make(map[string]struct{}, len(b))
	for _, t := range b {
		bSet[t] = struct{}{}
	}

	intersection := 0
	for t := range aSet {
		if _, ok := bSet[t]; ok {
			intersection++
		}
	}

	union := len(aSet) + len(bSet) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
