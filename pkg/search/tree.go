package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/lacviet-ai/quyche/pkg/types"
)

// Tree-strategy constants: the compact view is truncated before being
// sent out to protect the downstream context window, and selected nodes
// score by reported relevance.
const (
	CompactViewMaxChars  = 8000
	maxSelectedNodes     = 3
	scoreHighRelevance   = 0.95
	scoreMediumRelevance = 0.80
)

// NodeRef is one node selected by the external reasoning capability.
type NodeRef struct {
	DocID     string `json:"doc_id"`
	NodeID    string `json:"node_id"`
	Relevance string `json:"relevance"`
}

// NodeSelector is the narrow boundary to the external reasoning
// capability: it receives the compact tree view plus the query and
// names up to three relevant nodes. Implementations live outside this
// package; tests inject deterministic fakes.
type NodeSelector interface {
	SelectNodes(ctx context.Context, compactView, query string) ([]NodeRef, error)
}

// NodeSelectorFunc adapts a function to the NodeSelector interface.
type NodeSelectorFunc func(ctx context.Context, compactView, query string) ([]NodeRef, error)

func (f NodeSelectorFunc) SelectNodes(ctx context.Context, compactView, query string) ([]NodeRef, error) {
	return f(ctx, compactView, query)
}

// compactNode is a TreeNode with its full text stripped.
type compactNode struct {
	Title   string        `json:"title"`
	NodeID  string        `json:"node_id"`
	Summary string        `json:"summary"`
	Nodes   []compactNode `json:"nodes,omitempty"`
}

type compactTree struct {
	Description string        `json:"description"`
	Structure   []compactNode `json:"structure"`
}

// TreeIndex holds one precomputed outline forest per document.
// Read-only after load; node selection is delegated to a NodeSelector.
type TreeIndex struct {
	trees  map[string]*types.DocumentTree
	docIDs []string
}

// NewTreeIndex builds the index from per-document trees.
func NewTreeIndex(trees map[string]*types.DocumentTree) *TreeIndex {
	idx := &TreeIndex{trees: make(map[string]*types.DocumentTree, len(trees))}
	for docID, tree := range trees {
		if tree == nil || len(tree.Structure) == 0 {
			continue
		}
		idx.trees[docID] = tree
		idx.docIDs = append(idx.docIDs, docID)
	}
	sort.Strings(idx.docIDs)
	return idx
}

// Empty reports whether any trees are loaded.
func (idx *TreeIndex) Empty() bool {
	return len(idx.trees) == 0
}

// TreeCount returns the number of loaded document trees.
func (idx *TreeIndex) TreeCount() int {
	return len(idx.trees)
}

// NodeCount returns the total node count across all trees.
func (idx *TreeIndex) NodeCount() int {
	n := 0
	for _, tree := range idx.trees {
		n += types.CountNodes(tree.Structure)
	}
	return n
}

// CompactView serializes the filtered forest with text stripped,
// truncating beyond CompactViewMaxChars. Returns "" when no document
// passes the filter.
func (idx *TreeIndex) CompactView(filters *types.Filters) string {
	compact := make(map[string]compactTree)
	for _, docID := range idx.docIDs {
		if !filters.Match(docID) {
			continue
		}
		tree := idx.trees[docID]
		stripped := stripText(tree.Structure)
		if len(stripped) == 0 {
			continue
		}
		compact[docID] = compactTree{
			Description: tree.DocDescription,
			Structure:   stripped,
		}
	}
	if len(compact) == 0 {
		return ""
	}

	data, err := json.MarshalIndent(compact, "", "  ")
	if err != nil {
		slog.Warn("failed to serialize compact tree view", "error", err)
		return ""
	}
	view := string(data)
	if len(view) > CompactViewMaxChars {
		view = view[:CompactViewMaxChars] + "\n... (truncated)"
	}
	return view
}

// FindNode resolves a node id back to its full node, depth-first.
func (idx *TreeIndex) FindNode(docID, nodeID string) *types.TreeNode {
	tree, ok := idx.trees[docID]
	if !ok {
		return nil
	}
	return findNode(tree.Structure, nodeID)
}

// Lookup runs the external node selection over the compact view and
// resolves the returned refs to full-text chunks. Any selector error or
// unresolvable ref contributes nothing; the error is surfaced to the
// orchestrator, which logs and swallows it.
func (idx *TreeIndex) Lookup(ctx context.Context, selector NodeSelector, query string, filters *types.Filters) ([]types.KnowledgeChunk, error) {
	if idx.Empty() || selector == nil {
		return nil, nil
	}

	view := idx.CompactView(filters)
	if view == "" {
		return nil, nil
	}

	refs, err := selector.SelectNodes(ctx, view, query)
	if err != nil {
		return nil, err
	}
	if len(refs) > maxSelectedNodes {
		refs = refs[:maxSelectedNodes]
	}

	var chunks []types.KnowledgeChunk
	for _, ref := range refs {
		node := idx.FindNode(ref.DocID, ref.NodeID)
		if node == nil || node.Text == "" {
			continue
		}
		score := scoreMediumRelevance
		if ref.Relevance == "high" {
			score = scoreHighRelevance
		}
		docName := ref.DocID
		if tree := idx.trees[ref.DocID]; tree != nil && tree.DocName != "" {
			docName = tree.DocName
		}
		chunks = append(chunks, types.KnowledgeChunk{
			Content: node.Text,
			Source:  docName + " - " + node.Title,
			Metadata: map[string]any{
				"doc_id":      ref.DocID,
				"node_id":     ref.NodeID,
				"source_type": string(types.StrategyTreeReasoning),
			},
			Score: score,
		})
	}
	return chunks, nil
}

func stripText(nodes []*types.TreeNode) []compactNode {
	compact := make([]compactNode, 0, len(nodes))
	for _, n := range nodes {
		compact = append(compact, compactNode{
			Title:   n.Title,
			NodeID:  n.NodeID,
			Summary: n.Summary,
			Nodes:   stripText(n.Nodes),
		})
	}
	return compact
}

func findNode(nodes []*types.TreeNode, nodeID string) *types.TreeNode {
	for _, n := range nodes {
		if n.NodeID == nodeID {
			return n
		}
		if found := findNode(n.Nodes, nodeID); found != nil {
			return found
		}
	}
	return nil
}
