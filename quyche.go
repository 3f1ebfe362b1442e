package quyche

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lacviet-ai/quyche/pkg/corpus"
	"github.com/lacviet-ai/quyche/pkg/llm"
	"github.com/lacviet-ai/quyche/pkg/search"
	"github.com/lacviet-ai/quyche/pkg/telemetry"
	"github.com/lacviet-ai/quyche/pkg/types"
)

var (
	// ErrNotInitialized is returned when the corpus has not been loaded yet.
	ErrNotInitialized = errors.New("retrieval engine not initialized")
	// ErrDocumentNotFound is returned when a document id is unknown.
	ErrDocumentNotFound = errors.New("document not found")
)

// Config holds configuration for the retrieval client.
type Config struct {
	// Corpus names the on-disk inputs.
	Corpus corpus.Paths
	// LLM configures the chat model behind tree reasoning. Zero value
	// disables the tree strategy unless a Selector is injected.
	LLM llm.Config
	// Breaker wraps the chat client; zero value uses defaults.
	Breaker llm.BreakerConfig
	// Selector overrides the LLM-backed node selector. Tests inject
	// deterministic fakes here.
	Selector search.NodeSelector
	// TopK is the default result count; <= 0 means 5.
	TopK int
	// SelectorTimeout bounds the tree reasoning call per query.
	SelectorTimeout time.Duration
	// Weights overrides the chunk relevance weights when non-nil.
	Weights *search.Weights
	// Telemetry records per-query parquet telemetry when non-nil.
	Telemetry *telemetry.Recorder
}

// engine is one immutable generation of loaded corpus plus the indexes
// built over it. Reload builds a fresh engine and publishes it whole.
type engine struct {
	store    *corpus.Store
	searcher *search.Searcher
}

// Client answers questions against the loaded policy corpus. All
// methods are safe for concurrent use; Reload swaps the corpus without
// disturbing in-flight queries.
type Client struct {
	config   Config
	logger   *slog.Logger
	selector search.NodeSelector
	engine   atomic.Pointer[engine]
}

// New creates a client. The corpus is not loaded until Initialize.
func New(config Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	selector := config.Selector
	if selector == nil && config.LLM.APIKey != "" {
		chat := llm.NewBreakerClient(llm.NewOpenAIClient(config.LLM), breakerConfig(config.Breaker), logger)
		selector = llm.NewTreeNavigator(chat, logger)
	}

	return &Client{
		config:   config,
		logger:   logger,
		selector: selector,
	}
}

func breakerConfig(cfg llm.BreakerConfig) llm.BreakerConfig {
	if cfg == (llm.BreakerConfig{}) {
		return llm.DefaultBreakerConfig()
	}
	return cfg
}

// Initialize loads the corpus and builds the retrieval indexes.
func (c *Client) Initialize(ctx context.Context) error {
	return c.Reload(ctx)
}

// Reload performs a full load pass and atomically publishes the new
// corpus generation. On error the previous generation stays live.
func (c *Client) Reload(_ context.Context) error {
	store, err := corpus.Load(c.config.Corpus, c.logger)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	searcher := search.NewSearcher(store.Documents(), store.QueryMappings(), store.Entities(), store.Trees())
	searcher.SetLogger(c.logger)
	if c.selector != nil {
		searcher.SetNodeSelector(c.selector)
	}
	if c.config.Weights != nil {
		searcher.SetWeights(*c.config.Weights)
	}
	if c.config.SelectorTimeout > 0 {
		searcher.SetSelectorTimeout(c.config.SelectorTimeout)
	}

	c.engine.Store(&engine{store: store, searcher: searcher})
	return nil
}

// Retrieve answers a query with the top-k ranked chunks. topK <= 0
// falls back to the configured default.
func (c *Client) Retrieve(ctx context.Context, query string, topK int, filters *types.Filters) (*types.RetrievalResult, error) {
	eng := c.engine.Load()
	if eng == nil {
		return nil, ErrNotInitialized
	}
	if topK <= 0 {
		topK = c.config.TopK
	}

	start := time.Now()
	result, err := eng.searcher.Retrieve(ctx, query, topK, filters)
	if err != nil {
		return nil, err
	}
	c.record(query, topK, filters, result, time.Since(start))
	return result, nil
}

// fullDocContextLimit bounds the full-document shortcut in
// ContextForQuery; larger documents always render as chunks.
const fullDocContextLimit = 15000

// ContextForQuery retrieves and renders the top chunks as one prompt
// context block, sources labeled and ordered by relevance. With
// includeFullDoc set, a result whose chunks all come from one document
// shorter than fullDocContextLimit renders that document whole instead.
func (c *Client) ContextForQuery(ctx context.Context, query string, topK int, includeFullDoc bool) (string, error) {
	result, err := c.Retrieve(ctx, query, topK, nil)
	if err != nil {
		return "", err
	}

	if includeFullDoc {
		if doc := c.singleSourceDocument(result); doc != nil && len(doc.Content) < fullDocContextLimit {
			return doc.Content, nil
		}
	}

	blocks := make([]string, 0, len(result.Chunks))
	for i, chunk := range result.Chunks {
		blocks = append(blocks, fmt.Sprintf("[%d] %s\n%s", i+1, chunk.Source, chunk.Content))
	}
	return strings.Join(blocks, "\n\n---\n\n"), nil
}

// singleSourceDocument returns the one document every result chunk came
// from, or nil when the chunks span documents or lack a doc id.
func (c *Client) singleSourceDocument(result *types.RetrievalResult) *types.Document {
	eng := c.engine.Load()
	if eng == nil || len(result.Chunks) == 0 {
		return nil
	}
	docID := ""
	for _, chunk := range result.Chunks {
		id, _ := chunk.Metadata["doc_id"].(string)
		if id == "" {
			return nil
		}
		if docID == "" {
			docID = id
			continue
		}
		if id != docID {
			return nil
		}
	}
	return eng.store.Document(docID)
}

// Documents returns the loaded documents in manifest order.
func (c *Client) Documents() []*types.Document {
	eng := c.engine.Load()
	if eng == nil {
		return nil
	}
	return eng.store.Documents()
}

// Document returns one document by id.
func (c *Client) Document(id string) (*types.Document, error) {
	eng := c.engine.Load()
	if eng == nil {
		return nil, ErrNotInitialized
	}
	doc := eng.store.Document(id)
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return doc, nil
}

// FullContent returns the raw markdown of one document.
func (c *Client) FullContent(id string) (string, error) {
	doc, err := c.Document(id)
	if err != nil {
		return "", err
	}
	return doc.Content, nil
}

// Retrieval modes reported by Status, by how much enhancement data the
// loaded corpus carries.
const (
	ModeLegacy   = "legacy"
	ModePartial  = "partial"
	ModeEnhanced = "enhanced"
)

// Status describes the currently published corpus generation.
type Status struct {
	Initialized bool   `json:"initialized"`
	Mode        string `json:"mode"`
	Documents   int    `json:"documents"`
	Chunks      int    `json:"chunks"`
	Entities    int    `json:"entities"`
	Trees       int    `json:"trees"`
	TreeNodes   int    `json:"tree_nodes"`
}

// Status reports what is loaded and which strategies are live.
func (c *Client) Status() Status {
	eng := c.engine.Load()
	if eng == nil {
		return Status{}
	}

	mode := ModeLegacy
	switch {
	case eng.searcher.HasEntities() && eng.searcher.HasTrees():
		mode = ModeEnhanced
	case eng.searcher.HasEntities() || eng.searcher.HasTrees():
		mode = ModePartial
	}

	return Status{
		Initialized: true,
		Mode:        mode,
		Documents:   eng.store.DocumentCount(),
		Chunks:      eng.store.ChunkCount(),
		Entities:    eng.searcher.EntityCount(),
		Trees:       eng.searcher.TreeCount(),
		TreeNodes:   eng.searcher.TreeNodeCount(),
	}
}

// Close flushes telemetry.
func (c *Client) Close() error {
	if c.config.Telemetry != nil {
		return c.config.Telemetry.Close()
	}
	return nil
}

func (c *Client) record(query string, topK int, filters *types.Filters, result *types.RetrievalResult, elapsed time.Duration) {
	if c.config.Telemetry == nil {
		return
	}
	rec := telemetry.QueryRecord{
		Query:       query,
		TopK:        topK,
		ResultCount: len(result.Chunks),
		TotalFound:  result.TotalFound,
		DurationMs:  elapsed.Milliseconds(),
	}
	if filters != nil {
		rec.DocumentFilter = filters.DocumentID
	}
	if best := result.BestChunk(); best != nil {
		rec.BestScore = best.Score
	}
	c.config.Telemetry.Record(rec)
}
