// Package types defines the shared data model for the quyche retrieval
// engine: loaded documents and their chunks, pre-extracted entities,
// per-document outline trees, and the KnowledgeChunk/RetrievalResult
// units returned by every retrieval strategy.
//
// All values in this package are immutable after corpus load. A reload
// builds a fresh set of values and publishes them atomically; nothing
// here is mutated during retrieval.
package types
