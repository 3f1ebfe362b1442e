package search

import (
	"regexp"
	"strings"

	"github.com/lacviet-ai/quyche/pkg/types"
)

// articleRe pulls the article number out of a chunk title, e.g.
// "Điều 11: Nghỉ phép năm" -> "11".
var articleRe = regexp.MustCompile(`Điều\s+(\d+)`)

// KeywordIndex maps document keywords and curated query phrases to
// candidate documents and sections. Built once at load time, read-only
// afterward.
type KeywordIndex struct {
	// keyword (lower-cased) -> document ids carrying it
	keywords map[string][]string
	// curated phrase (lower-cased) -> "doc" or "doc#section" refs
	queryMappings map[string][]string
}

// NewKeywordIndex builds the index from per-document keyword lists and
// the corpus-wide curated query mappings.
func NewKeywordIndex(docs []*types.Document, queryMappings map[string][]string) *KeywordIndex {
	idx := &KeywordIndex{
		keywords:      make(map[string][]string),
		queryMappings: make(map[string][]string, len(queryMappings)),
	}
	for _, doc := range docs {
		for _, kw := range doc.Keywords {
			key := strings.ToLower(kw)
			idx.keywords[key] = append(idx.keywords[key], doc.ID)
		}
	}
	for phrase, refs := range queryMappings {
		idx.queryMappings[strings.ToLower(phrase)] = refs
	}
	return idx
}

// MatchedDocuments returns every document whose keyword appears as a
// substring of the lower-cased query or of any individual query token.
func (idx *KeywordIndex) MatchedDocuments(query string) []string {
	query = strings.ToLower(query)
	tokens := strings.Fields(query)

	seen := make(map[string]struct{})
	var matched []string
	for keyword, docIDs := range idx.keywords {
		hit := strings.Contains(query, keyword)
		if !hit {
			for _, tok := range tokens {
				if strings.Contains(tok, keyword) {
					hit = true
					break
				}
			}
		}
		if !hit {
			continue
		}
		for _, id := range docIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				matched = append(matched, id)
			}
		}
	}
	return matched
}

// MappedSections returns, per matched document, the section ids whose
// curated phrase is contained in the query. Containment is substring
// based, so a short curated phrase matches inside a longer question.
func (idx *KeywordIndex) MappedSections(query string) map[string][]string {
	query = strings.ToLower(query)

	matched := make(map[string][]string)
	for phrase, refs := range idx.queryMappings {
		if !strings.Contains(query, phrase) {
			continue
		}
		for _, ref := range refs {
			docID, sectionID, hasSection := strings.Cut(ref, "#")
			if _, ok := matched[docID]; !ok {
				matched[docID] = []string{}
			}
			if hasSection && !containsString(matched[docID], sectionID) {
				matched[docID] = append(matched[docID], sectionID)
			}
		}
	}
	return matched
}

// ChunkInSection reports whether the chunk's title names an article that
// one of the target sections declares as a member.
func ChunkInSection(chunk types.Chunk, doc *types.Document, targetSections []string) bool {
	if len(targetSections) == 0 {
		return false
	}
	m := articleRe.FindStringSubmatch(chunk.Title)
	if m == nil {
		return false
	}
	article := m[1]

	for _, sectionID := range targetSections {
		for _, sec := range doc.Sections {
			if sec.ID != sectionID {
				continue
			}
			if containsString(sec.Articles, article) {
				return true
			}
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
