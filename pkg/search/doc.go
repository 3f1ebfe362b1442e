// Package search implements the hybrid retrieval core: the keyword and
// curated query-mapping index, the weighted chunk relevance scorer, the
// structured entity index, the hierarchical tree index with its external
// node-selection boundary, and the Searcher that fans a query out over
// all three strategies and fuses their candidates.
//
// Every index is built once from loaded corpus data and read-only
// afterward, so concurrent Retrieve calls need no locking. Strategy
// failures degrade the result instead of surfacing as errors.
package search
