package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestUnwrap(t *testing.T) {
	rows := []any{map[string]any{"id": 1.0}}

	cases := []struct {
		name    string
		payload any
		want    any
	}{
		{"success response", map[string]any{"success": true, "response": rows}, rows},
		{"data", map[string]any{"data": rows}, rows},
		{"results", map[string]any{"results": rows}, rows},
		{"data preferred over results", map[string]any{"data": rows, "results": "x"}, rows},
		{"value sibling blocks data", map[string]any{"value": 4.0, "data": rows}, map[string]any{"value": 4.0, "data": rows}},
		{"plain object", map[string]any{"count": 3.0}, map[string]any{"count": 3.0}},
		{"array", rows, rows},
		{"scalar", 12.0, 12.0},
		{"null", nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Unwrap(tc.payload))
		})
	}
}

func TestUnwrapOnlyOneLevel(t *testing.T) {
	inner := map[string]any{"data": []any{1.0}}
	assert.Equal(t, inner, Unwrap(map[string]any{"data": inner}))
}

// A payload with none of the envelope keys is returned as is.
func TestUnwrapIdentityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfDistinct(
			rapid.StringMatching(`[a-z]{1,8}`).Filter(func(s string) bool {
				return s != "data" && s != "results" && s != "response"
			}),
			rapid.ID[string],
		).Draw(t, "keys")
		payload := map[string]any{}
		for i, k := range keys {
			payload[k] = float64(i)
		}
		require.Equal(t, payload, Unwrap(payload))
	})
}

func TestBusinessFailure(t *testing.T) {
	msg, failed := businessFailure(map[string]any{"success": false, "message": "Unknown column"})
	assert.True(t, failed)
	assert.Equal(t, "Unknown column", msg)

	msg, failed = businessFailure(map[string]any{"success": false, "error": map[string]any{"message": "rate limit exceeded"}})
	assert.True(t, failed)
	assert.Equal(t, "rate limit exceeded", msg)

	_, failed = businessFailure(map[string]any{"success": true, "response": 1.0})
	assert.False(t, failed)

	_, failed = businessFailure([]any{})
	assert.False(t, failed)
}
