// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/projectx/internal/session"
	"github.com/pdiddy/projectx/pkg/types"
)

func sample() types.Summary {
	return types.Summary{
		ID:       3,
		Title:    "Visual Aids",
		Topic:    types.StringPtr("learning"),
		Keywords: []string{"alpha", "beta", "gamma"},
		Lines:    []string{"alpha seen", "we saw beta", "no match here"},
		Expanded: [][]string{{"a1", "a2", "a3"}, {"b1", "b2", "b3"}, {"c1", "c2", "c3"}},
	}
}

func TestSummary_PlainText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, false).Summary(sample()))

	want := strings.Join([]string{
		"Visual Aids",
		"learning",
		strings.Repeat("-", 40),
		"# alpha  # beta  # gamma",
		"",
		"[1] alpha seen",
		"[2] we saw beta",
		"[3] no match here",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestSummary_NoTopicNoTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, false).Summary(types.Summary{}))
	assert.Equal(t, "(untitled)\n"+strings.Repeat("-", 40)+"\n", buf.String())
}

func TestSummary_ColorEmphasisesKeyword(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, true).Summary(sample()))
	out := buf.String()

	// The emphasised keyword is wrapped in escape codes; the rest of the
	// gist is untouched.
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "[2] we saw \x1b[")
	assert.Contains(t, out, "[3] no match here\n")
}

func TestPanel(t *testing.T) {
	var buf bytes.Buffer
	p := session.Panel{Index: 1, Keyword: "beta", Line: "beta seen", Details: []string{"b1", "b2", "b3"}}
	require.NoError(t, New(&buf, false).Panel(p))
	assert.Equal(t, "\n\"beta seen\"\n  - b1\n  - b2\n  - b3\n", buf.String())
}

func TestWrite_Formats(t *testing.T) {
	s := sample()

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, types.OutputJSON, s, false, nil))
		var got types.Summary
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, s, got)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, types.OutputYAML, s, false, nil))
		var got types.Summary
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, s, got)
	})

	t.Run("text with panel", func(t *testing.T) {
		var buf bytes.Buffer
		p := session.Panel{Line: "we saw beta", Details: []string{"b1"}}
		require.NoError(t, Write(&buf, types.OutputText, s, false, &p))
		assert.True(t, strings.HasSuffix(buf.String(), "\"we saw beta\"\n  - b1\n"))
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, Write(&bytes.Buffer{}, "xml", s, false, nil))
	})
}
