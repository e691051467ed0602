// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/projectx/pkg/types"
)

func sampleSummary() types.Summary {
	return types.Summary{
		ID:       7,
		Title:    "Working Memory and Visual Aids",
		Topic:    types.StringPtr("cognition"),
		Keywords: []string{"alpha", "beta", "gamma"},
		Lines:    []string{"alpha seen", "beta seen", "gamma seen"},
		Expanded: [][]string{
			{"a1", "a2", "a3"},
			{"b1", "b2", "b3"},
			{"c1", "c2", "c3"},
		},
	}
}

func TestDecode_RoundTripReturnsFirstSummary(t *testing.T) {
	first := sampleSummary()
	second := sampleSummary()
	second.ID = 8
	second.Title = "ignored"

	data, err := json.Marshal(types.ResponsePayload{Summaries: []types.Summary{first, second}})
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestDecode_NullTopic(t *testing.T) {
	body := `{"summaries":[{"id":1,"title":"t","topic":null,"keywords":["k"],"lines":["k line"],"expanded":[["x","y","z"]]}]}`

	got, err := Decode([]byte(body))
	require.NoError(t, err)
	assert.Nil(t, got.Topic)
	assert.Equal(t, "", got.TopicOrEmpty())
	assert.Equal(t, []string{"k"}, got.Keywords)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"empty summaries", `{"summaries": []}`, ErrNoSummary},
		{"missing summaries key", `{"results": []}`, ErrMalformed},
		{"null summaries", `{"summaries": null}`, ErrMalformed},
		{"summaries is an object", `{"summaries": {"id": 1}}`, ErrMalformed},
		{"summaries is a string", `{"summaries": "nope"}`, ErrMalformed},
		{"not json", `<html>502 Bad Gateway</html>`, ErrMalformed},
		{"empty body", ``, ErrMalformed},
		{"top-level array", `[{"id":1}]`, ErrMalformed},
		{"flat expanded", `{"summaries":[{"id":1,"title":"t","keywords":["k"],"lines":["l"],"expanded":["a","b","c"]}]}`, ErrMalformed},
		{"keywords wrong type", `{"summaries":[{"id":1,"keywords":"k"}]}`, ErrMalformed},
		{"null summary", `{"summaries": [null]}`, ErrMalformed},
		{"empty summary object", `{"summaries": [{}]}`, ErrMalformed},
		{"historical field names", `{"summaries":[{"id":0,"title":"t","subtitle":"s","keywords":[],"highLevel":[],"expanded":[]}]}`, ErrMalformed},
		{"missing id", `{"summaries":[{"title":"t","keywords":[],"lines":[],"expanded":[]}]}`, ErrMalformed},
		{"missing title", `{"summaries":[{"id":1,"keywords":[],"lines":[],"expanded":[]}]}`, ErrMalformed},
		{"null keywords", `{"summaries":[{"id":1,"title":"t","keywords":null,"lines":[],"expanded":[]}]}`, ErrMalformed},
		{"missing expanded", `{"summaries":[{"id":1,"title":"t","keywords":[],"lines":[]}]}`, ErrMalformed},
		{"summary is a number", `{"summaries": [3]}`, ErrMalformed},
		{"later summary malformed", `{"summaries":[{"id":1,"title":"t","keywords":[],"lines":[],"expanded":[]},{}]}`, ErrMalformed},
		{"lines shorter than keywords", `{"summaries":[{"id":1,"title":"t","keywords":["a","b"],"lines":["a"],"expanded":[["1","2","3"],["1","2","3"]]}]}`, ErrInconsistent},
		{"missing expanded group", `{"summaries":[{"id":1,"title":"t","keywords":["a","b"],"lines":["a","b"],"expanded":[["1","2","3"]]}]}`, ErrInconsistent},
		{"short detail group", `{"summaries":[{"id":1,"title":"t","keywords":["a"],"lines":["a"],"expanded":[["1","2"]]}]}`, ErrInconsistent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, got.IsZero(), "no partial summary on error")
		})
	}
}

func TestDecodeUnchecked_SkipsAlignment(t *testing.T) {
	body := `{"summaries":[{"id":1,"title":"t","topic":null,
		"keywords":["summary","visual representation","attention","working memory","cognitive load"],
		"lines":["one","two","three"],
		"expanded":[["a","b","c"],["d","e","f"],["g","h","i"]]}]}`

	got, err := DecodeUnchecked([]byte(body))
	require.NoError(t, err)
	assert.Len(t, got.Keywords, 5)
	assert.Len(t, got.Lines, 3)

	_, err = Decode([]byte(body))
	assert.ErrorIs(t, err, ErrInconsistent)
}

func TestDecodeUnchecked_StillRejectsEmptyAndMalformed(t *testing.T) {
	_, err := DecodeUnchecked([]byte(`{"summaries": []}`))
	assert.ErrorIs(t, err, ErrNoSummary)

	for _, body := range []string{`{"summaries": {}}`, `{"summaries": [null]}`, `{"summaries": [{}]}`} {
		got, err := DecodeUnchecked([]byte(body))
		assert.ErrorIs(t, err, ErrMalformed, body)
		assert.True(t, got.IsZero(), body)
	}
}

func TestDecode_EmptySummaryIsValid(t *testing.T) {
	got, err := Decode([]byte(`{"summaries":[{"id":0,"title":"","keywords":[],"lines":[],"expanded":[]}]}`))
	require.NoError(t, err)
	assert.Equal(t, types.Summary{Keywords: []string{}, Lines: []string{}, Expanded: [][]string{}}, got)
}

func TestValidate_EmptySummaryIsAligned(t *testing.T) {
	assert.NoError(t, Validate(types.Summary{Title: "nothing highlighted"}))
}
