package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFromResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code fence",
			input:    "Here is the result:\n```json\n[{\"doc_id\": \"a\"}]\n```",
			expected: `[{"doc_id": "a"}]`,
		},
		{
			name:     "plain code fence",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "object with surrounding prose",
			input:    `The answer is {"key": "value"} as requested.`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "array with surrounding prose",
			input:    `Kết quả: [{"doc_id": "noi_quy", "node_id": "c1"}] là các nút phù hợp.`,
			expected: `[{"doc_id": "noi_quy", "node_id": "c1"}]`,
		},
		{
			name:     "bare json unchanged",
			input:    `[{"doc_id": "a"}]`,
			expected: `[{"doc_id": "a"}]`,
		},
		{
			name:     "no json at all",
			input:    "no structured content here",
			expected: "no structured content here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractJSONFromResponse(tt.input))
		})
	}
}

func TestUnmarshalTolerantStrict(t *testing.T) {
	var out []map[string]string
	err := UnmarshalTolerant(`[{"doc_id": "a", "node_id": "b"}]`, &out)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0]["doc_id"])
}

func TestUnmarshalTolerantRepairsSloppyJSON(t *testing.T) {
	// Trailing comma and single quotes, the usual model output defects.
	var out []map[string]string
	err := UnmarshalTolerant(`[{'doc_id': 'a', 'relevance': 'high',},]`, &out)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "high", out[0]["relevance"])
}

func TestUnmarshalTolerantFenced(t *testing.T) {
	var out map[string]int
	err := UnmarshalTolerant("```json\n{\"count\": 3}\n```", &out)
	require.NoError(t, err)
	assert.Equal(t, 3, out["count"])
}

func TestUnmarshalTolerantGarbage(t *testing.T) {
	var out []map[string]string
	err := UnmarshalTolerant("hoàn toàn không phải JSON", &out)
	assert.Error(t, err)
}
