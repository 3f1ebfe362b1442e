package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/lacviet-ai/quyche/pkg/types"
	"github.com/lacviet-ai/quyche/pkg/utils"
)

// Fusion constants. The legacy keyword path is capped and damped once a
// higher-precision strategy has produced anything, so curated and
// tree-selected passages outrank generic overlap hits.
const (
	LegacyResultCap        = 2
	LegacyScoreDamping     = 0.7
	DefaultSelectorTimeout = 20 * time.Second
)

// Searcher fans a query out over the available retrieval strategies and
// fuses their candidates into a single ranked, deduplicated result.
// All referenced indexes are immutable after construction, so concurrent
// Retrieve calls share them without locking.
type Searcher struct {
	docs     map[string]*types.Document
	docOrder []string

	keywords *KeywordIndex
	entities *EntityIndex
	trees    *TreeIndex
	scorer   *Scorer

	selector        NodeSelector
	selectorTimeout time.Duration
	logger          *slog.Logger
}

// NewSearcher builds a searcher over a loaded corpus. Entities and trees
// may be empty; the keyword/chunk path works with documents alone.
func NewSearcher(
	docs []*types.Document,
	queryMappings map[string][]string,
	entities map[string][]types.Entity,
	trees map[string]*types.DocumentTree,
) *Searcher {
	s := &Searcher{
		docs:            make(map[string]*types.Document, len(docs)),
		keywords:        NewKeywordIndex(docs, queryMappings),
		entities:        NewEntityIndex(entities),
		trees:           NewTreeIndex(trees),
		scorer:          NewScorer(DefaultWeights()),
		selectorTimeout: DefaultSelectorTimeout,
		logger:          slog.Default(),
	}
	for _, doc := range docs {
		s.docs[doc.ID] = doc
		s.docOrder = append(s.docOrder, doc.ID)
	}
	return s
}

// SetNodeSelector installs the external reasoning boundary used by the
// tree strategy. Without a selector the tree strategy contributes
// nothing.
func (s *Searcher) SetNodeSelector(selector NodeSelector) {
	s.selector = selector
}

// SetWeights overrides the chunk scoring weights.
func (s *Searcher) SetWeights(w Weights) {
	s.scorer = NewScorer(w)
}

// SetSelectorTimeout bounds the external reasoning call. Expiry counts
// as a normal strategy failure.
func (s *Searcher) SetSelectorTimeout(d time.Duration) {
	if d > 0 {
		s.selectorTimeout = d
	}
}

// SetLogger replaces the default logger.
func (s *Searcher) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// HasEntities reports whether the entity index holds any data.
func (s *Searcher) HasEntities() bool { return !s.entities.Empty() }

// HasTrees reports whether the tree index holds any data.
func (s *Searcher) HasTrees() bool { return !s.trees.Empty() }

// EntityCount returns the number of loaded entities.
func (s *Searcher) EntityCount() int { return s.entities.Count() }

// TreeCount returns the number of loaded document trees.
func (s *Searcher) TreeCount() int { return s.trees.TreeCount() }

// TreeNodeCount returns the total node count across loaded trees.
func (s *Searcher) TreeNodeCount() int { return s.trees.NodeCount() }

// Retrieve answers a query with the top-K fused candidates.
//
// With no enhancement data loaded it runs the keyword/chunk scorer
// alone. Otherwise the entity lookup, the tree-reasoning lookup, and a
// capped legacy pass run concurrently; per-strategy failures are logged
// and contribute nothing. An empty result is a valid answer, never an
// error.
func (s *Searcher) Retrieve(ctx context.Context, query string, topK int, filters *types.Filters) (*types.RetrievalResult, error) {
	if topK <= 0 {
		topK = 5
	}

	if s.entities.Empty() && s.trees.Empty() {
		chunks, total := s.keywordRetrieve(query, filters)
		if len(chunks) > topK {
			chunks = chunks[:topK]
		}
		return &types.RetrievalResult{Chunks: chunks, Query: query, TotalFound: total}, nil
	}

	var (
		entityChunks []types.KnowledgeChunk
		treeChunks   []types.KnowledgeChunk
		legacyChunks []types.KnowledgeChunk
	)

	errs := utils.Gather(ctx,
		func() error {
			entityChunks = s.entities.Lookup(query, filters)
			return nil
		},
		func() error {
			selectCtx, cancel := context.WithTimeout(ctx, s.selectorTimeout)
			defer cancel()
			chunks, err := s.trees.Lookup(selectCtx, s.selector, query, filters)
			if err != nil {
				return err
			}
			treeChunks = chunks
			return nil
		},
		func() error {
			chunks, _ := s.keywordRetrieve(query, filters)
			if len(chunks) > LegacyResultCap {
				chunks = chunks[:LegacyResultCap]
			}
			legacyChunks = chunks
			return nil
		},
	)
	for _, err := range errs {
		if err != nil {
			s.logger.Warn("retrieval strategy failed, skipping", "error", err)
		}
	}

	// Damp the generic fallback only once a higher-precision strategy
	// produced something.
	if len(entityChunks)+len(treeChunks) > 0 {
		for i := range legacyChunks {
			legacyChunks[i].Score *= LegacyScoreDamping
		}
	}

	all := make([]types.KnowledgeChunk, 0, len(entityChunks)+len(treeChunks)+len(legacyChunks))
	all = append(all, entityChunks...)
	all = append(all, treeChunks...)
	all = append(all, legacyChunks...)

	all = Deduplicate(all)
	sortByScore(all)

	total := len(all)
	if len(all) > topK {
		all = all[:topK]
	}

	return &types.RetrievalResult{Chunks: all, Query: query, TotalFound: total}, nil
}

// keywordRetrieve is the keyword/chunk scoring path: curated query
// mappings and keyword hits narrow the candidate documents, every chunk
// of those documents is scored, and zero-scored chunks drop out. It
// returns the full sorted candidate list and its length.
func (s *Searcher) keywordRetrieve(query string, filters *types.Filters) ([]types.KnowledgeChunk, int) {
	mappedSections := s.keywords.MappedSections(query)
	keywordDocs := wordSet(s.keywords.MatchedDocuments(query))

	hits := make(map[string]struct{})
	for docID := range mappedSections {
		if _, ok := s.docs[docID]; ok {
			hits[docID] = struct{}{}
		}
	}
	for docID := range keywordDocs {
		if _, ok := s.docs[docID]; ok {
			hits[docID] = struct{}{}
		}
	}

	var scored []types.KnowledgeChunk
	for _, docID := range s.docOrder {
		// No keyword or mapping hit anywhere: scan the whole corpus.
		if len(hits) > 0 {
			if _, ok := hits[docID]; !ok {
				continue
			}
		}
		if !filters.Match(docID) {
			continue
		}
		doc := s.docs[docID]
		_, isMapped := mappedSections[docID]
		_, hasKeyword := keywordDocs[docID]
		targetSections := mappedSections[docID]

		for _, chunk := range doc.Chunks {
			inSection := ChunkInSection(chunk, doc, targetSections)
			score := s.scorer.Score(query, chunk, isMapped, hasKeyword, inSection)
			if score <= 0 {
				continue
			}
			scored = append(scored, types.KnowledgeChunk{
				Content: chunk.Content,
				Source:  doc.Title + " - " + chunk.Title,
				Metadata: map[string]any{
					"doc_id":         docID,
					"chunk_id":       chunk.ID,
					"title":          chunk.Title,
					"parent":         chunk.Parent,
					"effective_date": doc.EffectiveDate,
					"source_type":    string(types.StrategyKeyword),
				},
				Score: score,
			})
		}
	}

	sortByScore(scored)
	return scored, len(scored)
}
