package search

import (
	"sort"
	"strings"

	"github.com/lacviet-ai/quyche/pkg/types"
)

// DedupOverlapThreshold is the word-overlap ratio above which two chunks
// are treated as near-duplicates. Hand-tuned in the original system;
// kept as-is for behavior parity rather than re-derived.
const DedupOverlapThreshold = 0.6

func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// bigrams forms adjacent word pairs: [a b c] -> ["a b", "b c"].
func bigrams(words []string) map[string]struct{} {
	set := make(map[string]struct{})
	for i := 0; i+1 < len(words); i++ {
		set[words[i]+" "+words[i+1]] = struct{}{}
	}
	return set
}

func overlapCount(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

// contentOverlapRatio is |A∩B| / max(|A|,|B|), the near-duplicate
// measure used during fusion.
func contentOverlapRatio(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return float64(overlapCount(a, b)) / float64(maxLen)
}

// Deduplicate removes near-duplicate chunks, keeping the higher-scored
// copy. Candidates are considered in score order; a candidate whose
// content words overlap an already accepted result by more than
// DedupOverlapThreshold is discarded. Running it twice on its own output
// returns the same list.
func Deduplicate(chunks []types.KnowledgeChunk) []types.KnowledgeChunk {
	if len(chunks) <= 1 {
		return chunks
	}

	sortByScore(chunks)

	accepted := make([]types.KnowledgeChunk, 0, len(chunks))
	acceptedWords := make([]map[string]struct{}, 0, len(chunks))

	for _, chunk := range chunks {
		words := wordSet(tokenize(chunk.Content))
		duplicate := false
		for _, existing := range acceptedWords {
			if contentOverlapRatio(words, existing) > DedupOverlapThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			accepted = append(accepted, chunk)
			acceptedWords = append(acceptedWords, words)
		}
	}

	return accepted
}

// sortByScore orders chunks highest score first. The sort is stable so
// equal-scored chunks keep their strategy order, which keeps retrieval
// output deterministic.
func sortByScore(chunks []types.KnowledgeChunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
