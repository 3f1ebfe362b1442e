package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lacviet-ai/quyche/pkg/prompts"
	"github.com/lacviet-ai/quyche/pkg/search"
)

// TreeNavigator asks the model which outline nodes answer a query. It
// is the production search.NodeSelector.
type TreeNavigator struct {
	client Client
	logger *slog.Logger
}

// NewTreeNavigator builds a navigator over the given chat client.
func NewTreeNavigator(client Client, logger *slog.Logger) *TreeNavigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &TreeNavigator{client: client, logger: logger}
}

// SelectNodes implements search.NodeSelector. It sends the compact view
// and query to the model and parses the returned node references,
// tolerating the usual JSON sloppiness. Refs with empty ids are
// dropped; unknown relevance values are normalized to "medium".
func (n *TreeNavigator) SelectNodes(ctx context.Context, compactView, query string) ([]search.NodeRef, error) {
	prompt := prompts.SelectNodes(compactView, query)

	resp, err := n.client.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("node selection chat: %w", err)
	}

	var refs []search.NodeRef
	if err := UnmarshalTolerant(resp.Content, &refs); err != nil {
		n.logger.Debug("unparsable node selection response", "response", resp.Content)
		return nil, fmt.Errorf("node selection response: %w", err)
	}

	out := refs[:0]
	for _, ref := range refs {
		if ref.DocID == "" || ref.NodeID == "" {
			continue
		}
		if ref.Relevance != "high" && ref.Relevance != "medium" {
			ref.Relevance = "medium"
		}
		out = append(out, ref)
	}
	return out, nil
}
