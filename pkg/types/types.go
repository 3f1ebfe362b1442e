package types

import (
	"sort"
	"strings"
)

// RetrievalStrategy identifies which retrieval strategy produced a chunk.
type RetrievalStrategy string

const (
	StrategyEntityLookup  RetrievalStrategy = "entity_lookup"
	StrategyTreeReasoning RetrievalStrategy = "tree_reasoning"
	StrategyKeyword       RetrievalStrategy = "keyword"
)

// Section declares which articles of a document a curated query phrase
// resolves to. Article identifiers are matched against chunk titles.
type Section struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	Articles []string `json:"articles" yaml:"articles"`
}

// Chunk is a contiguous passage of a document bounded by its structural
// headers. Chunks are produced once at load time and never mutated.
type Chunk struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Parent    string `json:"parent"`
	StartLine int    `json:"line_start"`
	EndLine   int    `json:"line_end"`
}

// Document is a fully loaded policy document with its declared sections
// and derived chunks. Immutable after load; reloading replaces the whole
// value.
type Document struct {
	ID            string
	File          string
	Title         string
	Description   string
	Keywords      []string
	Sections      []Section
	EffectiveDate string
	Content       string
	Chunks        []Chunk
}

// Entity is a pre-extracted structured fact record produced by the
// offline extraction pipeline. Read-only at runtime.
type Entity struct {
	Class      string            `json:"class"`
	Text       string            `json:"text"`
	Attributes map[string]string `json:"attributes"`
}

// RuleType returns the entity's rule_type attribute, lower-cased.
func (e Entity) RuleType() string {
	return strings.ToLower(e.Attributes["rule_type"])
}

// ImportantAttributeKeys is the fixed rendering order for well-known
// entity attributes. Remaining keys are appended alphabetically.
var ImportantAttributeKeys = []string{
	"rule_type", "condition", "duration", "amount",
	"calculation_method", "mechanism", "pay_status",
	"legal_reference", "restriction", "example",
}

// Render formats an entity as readable context: class and verbatim text
// first, then important attributes in their fixed order, then the rest.
func (e Entity) Render() string {
	class := e.Class
	if class == "" {
		class = "Rule"
	}
	lines := []string{"**[" + class + "]** " + e.Text}

	seen := make(map[string]bool, len(e.Attributes))
	for _, key := range ImportantAttributeKeys {
		if value, ok := e.Attributes[key]; ok {
			lines = append(lines, "  - "+key+": "+value)
			seen[key] = true
		}
	}

	rest := make([]string, 0, len(e.Attributes))
	for key := range e.Attributes {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		lines = append(lines, "  - "+key+": "+e.Attributes[key])
	}

	return strings.Join(lines, "\n")
}

// TreeNode is one node of a per-document hierarchical outline. The
// forest for a document is read-only at runtime.
type TreeNode struct {
	Title      string      `json:"title"`
	NodeID     string      `json:"node_id"`
	Summary    string      `json:"summary"`
	StartIndex int         `json:"start_index,omitempty"`
	EndIndex   int         `json:"end_index,omitempty"`
	Text       string      `json:"text,omitempty"`
	Nodes      []*TreeNode `json:"nodes,omitempty"`
}

// DocumentTree is the precomputed outline for a single document as
// produced by the offline tree-building pipeline.
type DocumentTree struct {
	DocName        string      `json:"doc_name"`
	DocDescription string      `json:"doc_description"`
	Structure      []*TreeNode `json:"structure"`
}

// CountNodes returns the total number of nodes in the forest.
func CountNodes(nodes []*TreeNode) int {
	count := len(nodes)
	for _, n := range nodes {
		count += CountNodes(n.Nodes)
	}
	return count
}

// KnowledgeChunk is a single retrieval result unit.
type KnowledgeChunk struct {
	Content  string         `json:"content"`
	Source   string         `json:"source"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// RetrievalResult is the ranked outcome of one retrieval call.
// TotalFound counts accepted candidates before top-K truncation.
type RetrievalResult struct {
	Chunks     []KnowledgeChunk `json:"chunks"`
	Query      string           `json:"query"`
	TotalFound int              `json:"total_found"`
}

// BestChunk returns the highest scoring chunk, or nil when empty.
func (r *RetrievalResult) BestChunk() *KnowledgeChunk {
	if len(r.Chunks) == 0 {
		return nil
	}
	best := &r.Chunks[0]
	for i := range r.Chunks {
		if r.Chunks[i].Score > best.Score {
			best = &r.Chunks[i]
		}
	}
	return best
}

// Filters narrows retrieval to a single document when DocumentID is set.
type Filters struct {
	DocumentID string `json:"doc_id,omitempty"`
}

// Match reports whether a document passes the filter.
func (f *Filters) Match(docID string) bool {
	return f == nil || f.DocumentID == "" || f.DocumentID == docID
}
