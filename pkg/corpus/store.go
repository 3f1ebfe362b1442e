package corpus

import (
	"github.com/lacviet-ai/quyche/pkg/types"
)

// Store holds everything loaded for one corpus generation: documents
// with their chunks, the curated query mappings, and the optional
// entity and tree enhancement data. A Store is immutable once built;
// reloading builds a new Store that the owner publishes atomically.
type Store struct {
	docs          []*types.Document
	docsByID      map[string]*types.Document
	queryMappings map[string][]string
	entities      map[string][]types.Entity
	trees         map[string]*types.DocumentTree
}

// Documents returns the loaded documents in manifest order.
func (s *Store) Documents() []*types.Document {
	return s.docs
}

// Document returns a document by id, or nil.
func (s *Store) Document(id string) *types.Document {
	return s.docsByID[id]
}

// QueryMappings returns the curated phrase -> document/section refs.
func (s *Store) QueryMappings() map[string][]string {
	return s.queryMappings
}

// Entities returns pre-extracted entities grouped by document id.
func (s *Store) Entities() map[string][]types.Entity {
	return s.entities
}

// Trees returns precomputed outline trees grouped by document id.
func (s *Store) Trees() map[string]*types.DocumentTree {
	return s.trees
}

// DocumentCount returns the number of loaded documents.
func (s *Store) DocumentCount() int {
	return len(s.docs)
}

// ChunkCount returns the total chunk count across all documents.
func (s *Store) ChunkCount() int {
	n := 0
	for _, doc := range s.docs {
		n += len(doc.Chunks)
	}
	return n
}
