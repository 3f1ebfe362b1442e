// Package quyche is a hybrid retrieval engine for answering questions
// against a corpus of internal policy documents.
//
// A query fans out over three strategies: a structured entity lookup
// over pre-extracted rules, reasoning over precomputed document outline
// trees via an external language model, and a weighted keyword/chunk
// scorer over the raw markdown. Candidates are fused, deduplicated by
// content overlap, and ranked; when the richer strategies produce
// anything, the keyword path is capped and damped so it supplements
// rather than dominates.
//
// The corpus is loaded once into immutable in-memory indexes; Reload
// builds a fresh generation and publishes it atomically. The tree
// strategy degrades to nothing when the model is unreachable, so the
// engine keeps answering from the other two paths.
package quyche
