package search

import (
	"strings"

	"github.com/lacviet-ai/quyche/pkg/types"
)

// Weights are the additive relevance-signal weights for chunk scoring.
// The values are hand-tuned constants carried over from the original
// system; behavior parity matters more than re-optimizing them.
type Weights struct {
	TargetSection  float64 // curated section membership, the dominant signal
	MappedDocument float64 // document matched via a curated query phrase
	KeywordMatch   float64 // document matched via a keyword
	TitleBigram    float64 // bigram overlap ratio in the chunk title
	TitleWord      float64 // word overlap ratio in the chunk title
	ContentBigram  float64 // bigram overlap ratio in the chunk body
	ContentWord    float64 // word overlap ratio in the chunk body
	ExactPhrase    float64 // full query appears verbatim in the body
}

// DefaultWeights returns the production scoring weights.
func DefaultWeights() Weights {
	return Weights{
		TargetSection:  0.35,
		MappedDocument: 0.15,
		KeywordMatch:   0.10,
		TitleBigram:    0.10,
		TitleWord:      0.05,
		ContentBigram:  0.10,
		ContentWord:    0.10,
		ExactPhrase:    0.05,
	}
}

// Scorer computes a bounded [0,1] relevance score for a (query, chunk)
// pair. Pure and deterministic: identical inputs yield identical scores.
type Scorer struct {
	weights Weights
}

// NewScorer returns a scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score combines the document-level match signals with n-gram overlap
// between the query and the chunk's title and body, clamped to [0,1].
// A curated target-section hit dominates generic overlap so that two
// otherwise equal chunks rank the curated one strictly higher.
func (s *Scorer) Score(query string, chunk types.Chunk, isMappedDocument, hasKeywordMatch, inTargetSection bool) float64 {
	score := 0.0

	if inTargetSection {
		score += s.weights.TargetSection
	}
	if isMappedDocument {
		score += s.weights.MappedDocument
	}
	if hasKeywordMatch {
		score += s.weights.KeywordMatch
	}

	queryLower := strings.ToLower(query)
	queryTokens := tokenize(query)
	queryWords := wordSet(queryTokens)
	queryBigrams := bigrams(queryTokens)

	titleTokens := tokenize(chunk.Title)
	titleWords := wordSet(titleTokens)
	titleBigrams := bigrams(titleTokens)

	if len(queryBigrams) > 0 {
		if n := overlapCount(queryBigrams, titleBigrams); n > 0 {
			ratio := float64(n) / float64(len(queryBigrams))
			score += min1(ratio) * s.weights.TitleBigram
		}
	}
	if len(queryWords) > 0 {
		ratio := float64(overlapCount(queryWords, titleWords)) / float64(len(queryWords))
		score += ratio * s.weights.TitleWord
	}

	contentLower := strings.ToLower(chunk.Content)
	contentTokens := tokenize(chunk.Content)
	contentWords := wordSet(contentTokens)
	contentBigrams := bigrams(contentTokens)

	if len(queryBigrams) > 0 {
		if n := overlapCount(queryBigrams, contentBigrams); n > 0 {
			ratio := float64(n) / float64(len(queryBigrams))
			score += min1(ratio) * s.weights.ContentBigram
		}
	}
	if len(queryWords) > 0 {
		if n := overlapCount(queryWords, contentWords); n > 0 {
			ratio := float64(n) / float64(len(queryWords))
			score += min1(ratio) * s.weights.ContentWord
		}
	}

	if strings.Contains(contentLower, queryLower) {
		score += s.weights.ExactPhrase
	}

	return clamp01(score)
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
