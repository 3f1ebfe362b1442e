package quyche

import (
	"context"

	"github.com/lacviet-ai/quyche/pkg/types"
)

// This file defines focused interfaces so consumers can depend on the
// smallest surface that meets their needs.

// Retriever answers queries against the loaded corpus.
type Retriever interface {
	// Retrieve returns the top-k ranked chunks for a query.
	Retrieve(ctx context.Context, query string, topK int, filters *types.Filters) (*types.RetrievalResult, error)

	// ContextForQuery renders the top chunks as one prompt context
	// block, optionally collapsing to the full source document.
	ContextForQuery(ctx context.Context, query string, topK int, includeFullDoc bool) (string, error)
}

// CorpusBrowser exposes the loaded documents.
type CorpusBrowser interface {
	// Documents returns the loaded documents in manifest order.
	Documents() []*types.Document

	// Document returns one document by id.
	Document(id string) (*types.Document, error)

	// FullContent returns the raw markdown of one document.
	FullContent(id string) (string, error)
}

// Lifecycle manages corpus loading and shutdown.
type Lifecycle interface {
	// Initialize loads the corpus and builds the retrieval indexes.
	Initialize(ctx context.Context) error

	// Reload atomically publishes a freshly loaded corpus generation.
	Reload(ctx context.Context) error

	// Status reports what is loaded.
	Status() Status

	// Close flushes telemetry.
	Close() error
}

// Compile-time check that Client covers every focused interface.
var _ interface {
	Retriever
	CorpusBrowser
	Lifecycle
} = (*Client)(nil)
