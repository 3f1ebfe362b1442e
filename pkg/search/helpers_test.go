package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacviet-ai/quyche/pkg/types"
)

func TestDeduplicateKeepsHigherScored(t *testing.T) {
	chunks := []types.KnowledgeChunk{
		{Content: "nhân viên được nghỉ phép năm mười hai ngày", Score: 0.5},
		{Content: "nhân viên được nghỉ phép năm mười hai ngày làm việc", Score: 0.9},
	}

	out := Deduplicate(chunks)
	require.Len(t, out, 1)
	assert.Equal(t, 0.9, out[0].Score)
}

func TestDeduplicateKeepsDistinctContent(t *testing.T) {
	chunks := []types.KnowledgeChunk{
		{Content: "nhân viên được nghỉ phép năm mười hai ngày", Score: 0.9},
		{Content: "giờ làm việc bắt đầu từ tám giờ sáng mỗi ngày", Score: 0.5},
	}

	out := Deduplicate(chunks)
	assert.Len(t, out, 2)
}

func TestDeduplicateIdempotent(t *testing.T) {
	chunks := []types.KnowledgeChunk{
		{Content: "nhân viên được nghỉ phép năm mười hai ngày", Score: 0.9},
		{Content: "nhân viên được nghỉ phép năm mười hai ngày làm việc", Score: 0.5},
		{Content: "giờ làm việc bắt đầu từ tám giờ sáng", Score: 0.4},
	}

	once := Deduplicate(chunks)
	twice := Deduplicate(append([]types.KnowledgeChunk(nil), once...))
	assert.Equal(t, once, twice)
}

func TestDeduplicateEmptyAndSingle(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))

	single := []types.KnowledgeChunk{{Content: "một đoạn duy nhất", Score: 0.3}}
	assert.Len(t, Deduplicate(single), 1)
}

func TestContentOverlapRatio(t *testing.T) {
	a := wordSet([]string{"a", "b", "c", "d"})
	b := wordSet([]string{"a", "b", "c", "d", "e"})
	// 4 shared over max size 5.
	assert.InDelta(t, 0.8, contentOverlapRatio(a, b), 1e-9)

	assert.Zero(t, contentOverlapRatio(nil, b))
	assert.Zero(t, contentOverlapRatio(a, nil))
}

func TestBigrams(t *testing.T) {
	set := bigrams([]string{"a", "b", "c"})
	assert.Len(t, set, 2)
	_, ok := set["a b"]
	assert.True(t, ok)
	_, ok = set["b c"]
	assert.True(t, ok)

	assert.Empty(t, bigrams([]string{"one"}))
}
