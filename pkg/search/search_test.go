package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacviet-ai/quyche/pkg/chunker"
	"github.com/lacviet-ai/quyche/pkg/types"
)

const policyDoc = `# Nội quy lao động

## Điều 10: Thời gian làm việc

Giờ làm việc từ 8h00 đến 17h30 các ngày trong tuần.

## Điều 11: Nghỉ phép năm

Nhân viên được nghỉ phép năm 12 ngày làm việc mỗi năm.

## Điều 12: Nghỉ không lương

Nhân viên có thể xin nghỉ không lương khi hết phép.`

func searchFixtureDocs() []*types.Document {
	doc := &types.Document{
		ID:       "noi_quy",
		Title:    "Nội quy lao động",
		Keywords: []string{"nghỉ phép", "giờ làm"},
		Sections: []types.Section{
			{ID: "nghi_phep", Articles: []string{"11", "12"}},
		},
		Content: policyDoc,
	}
	doc.Chunks = chunker.Split(doc.Content, doc.ID)
	return []*types.Document{doc}
}

func searchFixtureMappings() map[string][]string {
	return map[string][]string{
		"nghỉ phép": {"noi_quy#nghi_phep"},
	}
}

func TestRetrieveLegacyOnlyWithoutEnhancements(t *testing.T) {
	s := NewSearcher(searchFixtureDocs(), searchFixtureMappings(), nil, nil)

	result, err := s.Retrieve(context.Background(), "nghỉ phép năm", 5, nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)

	// The curated section chunk must rank first.
	best := result.Chunks[0]
	assert.Contains(t, best.Content, "Điều 11")
	assert.Equal(t, "Nội quy lao động - Điều 11: Nghỉ phép năm", best.Source)
	assert.Equal(t, string(types.StrategyKeyword), best.Metadata["source_type"])
}

func TestRetrieveTopKContract(t *testing.T) {
	s := NewSearcher(searchFixtureDocs(), searchFixtureMappings(), nil, nil)

	result, err := s.Retrieve(context.Background(), "nghỉ phép", 1, nil)
	require.NoError(t, err)
	assert.Len(t, result.Chunks, 1)
	assert.GreaterOrEqual(t, result.TotalFound, len(result.Chunks))

	// topK <= 0 falls back to the default of 5.
	result, err = s.Retrieve(context.Background(), "nghỉ phép", 0, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Chunks), 5)
}

func TestRetrieveEmptyResultIsNotError(t *testing.T) {
	s := NewSearcher(searchFixtureDocs(), searchFixtureMappings(), nil, nil)

	result, err := s.Retrieve(context.Background(), "zzz qqq xxx", 5, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Chunks)
	assert.Zero(t, result.TotalFound)
}

func TestRetrieveRankingDescending(t *testing.T) {
	s := NewSearcher(searchFixtureDocs(), searchFixtureMappings(), nil, nil)

	result, err := s.Retrieve(context.Background(), "nghỉ phép năm", 5, nil)
	require.NoError(t, err)
	for i := 1; i < len(result.Chunks); i++ {
		assert.GreaterOrEqual(t, result.Chunks[i-1].Score, result.Chunks[i].Score)
	}
}

func TestRetrieveFusedDampsLegacy(t *testing.T) {
	entities := map[string][]types.Entity{
		"noi_quy": {
			{
				Class: "LeavePolicy",
				Text:  "Quy định về số ngày phép hàng năm của công ty",
				Attributes: map[string]string{
					"rule_type": "annual_leave",
				},
			},
		},
	}

	plain := NewSearcher(searchFixtureDocs(), searchFixtureMappings(), nil, nil)
	fused := NewSearcher(searchFixtureDocs(), searchFixtureMappings(), entities, nil)

	query := "tôi còn bao nhiêu ngày phép"

	plainResult, err := plain.Retrieve(context.Background(), query, 10, nil)
	require.NoError(t, err)
	fusedResult, err := fused.Retrieve(context.Background(), query, 10, nil)
	require.NoError(t, err)

	plainBestLegacy := 0.0
	for _, c := range plainResult.Chunks {
		if c.Metadata["source_type"] == string(types.StrategyKeyword) {
			if c.Score > plainBestLegacy {
				plainBestLegacy = c.Score
			}
		}
	}
	require.Greater(t, plainBestLegacy, 0.0)

	for _, c := range fusedResult.Chunks {
		if c.Metadata["source_type"] == string(types.StrategyKeyword) {
			assert.LessOrEqual(t, c.Score, plainBestLegacy*LegacyScoreDamping+1e-9)
		}
	}
}

func TestRetrieveLegacyCappedWhenFused(t *testing.T) {
	entities := map[string][]types.Entity{
		"noi_quy": {
			{Class: "LeavePolicy", Text: "ngày phép năm", Attributes: map[string]string{"rule_type": "annual_leave"}},
		},
	}
	s := NewSearcher(searchFixtureDocs(), searchFixtureMappings(), entities, nil)

	result, err := s.Retrieve(context.Background(), "nghỉ phép năm còn lại", 10, nil)
	require.NoError(t, err)

	legacy := 0
	for _, c := range result.Chunks {
		if c.Metadata["source_type"] == string(types.StrategyKeyword) {
			legacy++
		}
	}
	assert.LessOrEqual(t, legacy, LegacyResultCap)
}

func TestRetrieveTreeStrategyContributes(t *testing.T) {
	trees := map[string]*types.DocumentTree{
		"noi_quy": {
			DocName: "Nội quy lao động",
			Structure: []*types.TreeNode{
				{
					Title:  "Điều 15: Chế độ thai sản",
					NodeID: "d15",
					Text:   "Lao động nữ được nghỉ thai sản 6 tháng theo luật bảo hiểm xã hội.",
				},
			},
		},
	}
	s := NewSearcher(searchFixtureDocs(), searchFixtureMappings(), nil, trees)
	s.SetNodeSelector(NodeSelectorFunc(func(ctx context.Context, view, query string) ([]NodeRef, error) {
		return []NodeRef{{DocID: "noi_quy", NodeID: "d15", Relevance: "high"}}, nil
	}))

	result, err := s.Retrieve(context.Background(), "chế độ thai sản", 5, nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)

	best := result.Chunks[0]
	assert.Equal(t, 0.95, best.Score)
	assert.Equal(t, "Nội quy lao động - Điều 15: Chế độ thai sản", best.Source)
}

func TestRetrieveDegradesWhenSelectorFails(t *testing.T) {
	trees := map[string]*types.DocumentTree{
		"noi_quy": {
			Structure: []*types.TreeNode{
				{Title: "Điều 11", NodeID: "d11", Text: "Nhân viên được nghỉ phép năm."},
			},
		},
	}
	s := NewSearcher(searchFixtureDocs(), searchFixtureMappings(), nil, trees)
	s.SetNodeSelector(NodeSelectorFunc(func(ctx context.Context, view, query string) ([]NodeRef, error) {
		return nil, errors.New("model unavailable")
	}))

	result, err := s.Retrieve(context.Background(), "nghỉ phép năm", 5, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Chunks)
	for _, c := range result.Chunks {
		assert.Equal(t, string(types.StrategyKeyword), c.Metadata["source_type"])
	}
}

func TestRetrieveDegradesWhenSelectorPanics(t *testing.T) {
	trees := map[string]*types.DocumentTree{
		"noi_quy": {
			Structure: []*types.TreeNode{
				{Title: "Điều 11", NodeID: "d11", Text: "Nhân viên được nghỉ phép năm."},
			},
		},
	}
	s := NewSearcher(searchFixtureDocs(), searchFixtureMappings(), nil, trees)
	s.SetNodeSelector(NodeSelectorFunc(func(ctx context.Context, view, query string) ([]NodeRef, error) {
		panic("boom")
	}))

	result, err := s.Retrieve(context.Background(), "nghỉ phép năm", 5, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Chunks)
}

func TestRetrieveDocumentFilter(t *testing.T) {
	docs := searchFixtureDocs()
	other := &types.Document{
		ID:       "luong",
		Title:    "Quy chế lương",
		Keywords: []string{"nghỉ phép"},
		Content:  "# Quy chế lương\n\n## Điều 1: Phép và lương\n\nNgày nghỉ phép năm vẫn được hưởng nguyên lương.",
	}
	other.Chunks = chunker.Split(other.Content, other.ID)
	docs = append(docs, other)

	s := NewSearcher(docs, searchFixtureMappings(), nil, nil)

	result, err := s.Retrieve(context.Background(), "nghỉ phép năm", 10, &types.Filters{DocumentID: "luong"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)
	for _, c := range result.Chunks {
		assert.Equal(t, "luong", c.Metadata["doc_id"])
	}
}

func TestRetrieveTotalFoundCountsPreTruncation(t *testing.T) {
	s := NewSearcher(searchFixtureDocs(), searchFixtureMappings(), nil, nil)

	full, err := s.Retrieve(context.Background(), "nghỉ phép", 10, nil)
	require.NoError(t, err)
	truncated, err := s.Retrieve(context.Background(), "nghỉ phép", 1, nil)
	require.NoError(t, err)

	assert.Equal(t, full.TotalFound, truncated.TotalFound)
	assert.Len(t, truncated.Chunks, 1)
}
