package search

import (
	"sort"
	"strings"

	"github.com/lacviet-ai/quyche/pkg/types"
)

// Entity scoring constants. Hand-tuned in the original system.
const (
	entityTextWeight     = 0.3
	entityAttrWeight     = 0.15
	entityAttrCap        = 0.4
	entitySynonymBonus   = 0.3
	EntityScoreThreshold = 0.3
)

// ruleTypeSynonyms maps common query phrases to the rule-type tags they
// imply. A query containing the phrase boosts entities tagged with any
// of the mapped types.
var ruleTypeSynonyms = map[string][]string{
	"phép":       {"leave", "annual_leave", "prorated_leave", "leave_accrual", "leave_credit", "leave_advance"},
	"thử việc":   {"probation"},
	"chính thức": {"probation"},
	"thai sản":   {"maternity", "paternity"},
	"kết hôn":    {"special_leave", "wedding"},
	"giờ làm":    {"working_hours", "working_days"},
	"đi muộn":    {"lateness", "late_threshold"},
	"kỷ luật":    {"disciplinary", "termination"},
	"vay":        {"loan", "financial"},
}

// EntityIndex holds pre-extracted structured rule records grouped by
// document. Pure in-memory matching; it never calls an external service.
type EntityIndex struct {
	entities map[string][]types.Entity
	docIDs   []string
}

// NewEntityIndex builds the index from per-document entity lists.
// Documents with no entities are omitted.
func NewEntityIndex(entities map[string][]types.Entity) *EntityIndex {
	idx := &EntityIndex{entities: make(map[string][]types.Entity, len(entities))}
	for docID, list := range entities {
		if len(list) == 0 {
			continue
		}
		idx.entities[docID] = list
		idx.docIDs = append(idx.docIDs, docID)
	}
	sort.Strings(idx.docIDs)
	return idx
}

// Empty reports whether any entities are loaded.
func (idx *EntityIndex) Empty() bool {
	return len(idx.entities) == 0
}

// Count returns the total number of loaded entities.
func (idx *EntityIndex) Count() int {
	n := 0
	for _, list := range idx.entities {
		n += len(list)
	}
	return n
}

// Lookup scores every loaded entity against the query and returns those
// above the inclusion threshold as rendered knowledge chunks.
func (idx *EntityIndex) Lookup(query string, filters *types.Filters) []types.KnowledgeChunk {
	queryLower := strings.ToLower(query)
	queryWords := wordSet(strings.Fields(queryLower))

	var chunks []types.KnowledgeChunk
	for _, docID := range idx.docIDs {
		if !filters.Match(docID) {
			continue
		}
		for _, entity := range idx.entities[docID] {
			score := scoreEntity(queryLower, queryWords, entity)
			if score <= EntityScoreThreshold {
				continue
			}
			class := entity.Class
			if class == "" {
				class = "Rule"
			}
			chunks = append(chunks, types.KnowledgeChunk{
				Content: entity.Render(),
				Source:  "Quy định (structured) - " + class,
				Metadata: map[string]any{
					"doc_id":       docID,
					"entity_class": entity.Class,
					"rule_type":    entity.Attributes["rule_type"],
					"source_type":  string(types.StrategyEntityLookup),
				},
				Score: score,
			})
		}
	}
	return chunks
}

// scoreEntity combines verbatim-text word overlap, attribute key/value
// hits, and the domain synonym bonus, clamped to [0,1].
func scoreEntity(queryLower string, queryWords map[string]struct{}, entity types.Entity) float64 {
	score := 0.0

	entityWords := wordSet(tokenize(entity.Text))
	if n := overlapCount(queryWords, entityWords); n > 0 {
		denom := len(queryWords)
		if denom == 0 {
			denom = 1
		}
		score += min1(float64(n)/float64(denom)) * entityTextWeight
	}

	attrHits := 0
	for key, value := range entity.Attributes {
		keyLower := strings.ToLower(key)
		valueLower := strings.ToLower(value)
		for w := range queryWords {
			if strings.Contains(valueLower, w) {
				attrHits++
				break
			}
		}
		for w := range queryWords {
			if strings.Contains(keyLower, w) {
				attrHits++
				break
			}
		}
	}
	if attrHits > 0 {
		bonus := float64(attrHits) * entityAttrWeight
		if bonus > entityAttrCap {
			bonus = entityAttrCap
		}
		score += bonus
	}

	ruleType := entity.RuleType()
	for phrase, ruleTypes := range ruleTypeSynonyms {
		if !strings.Contains(queryLower, phrase) {
			continue
		}
		for _, rt := range ruleTypes {
			if strings.Contains(ruleType, rt) {
				score += entitySynonymBonus
				break
			}
		}
	}

	return clamp01(score)
}
