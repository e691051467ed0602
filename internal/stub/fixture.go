// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stub

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/projectx/internal/decode"
	"github.com/pdiddy/projectx/pkg/types"
)

// DefaultFixture returns the summary served when no fixture file is given.
func DefaultFixture() types.Summary {
	return types.Summary{
		ID:       1,
		Title:    "Pictures help students remember",
		Keywords: []string{"visual representation", "working memory", "cognitive load"},
		Lines: []string{
			"A visual representation turns a word problem into a shape you can see.",
			"Drawing the problem frees up working memory for the actual math.",
			"Too many details at once raise cognitive load and slow learning.",
		},
		Expanded: [][]string{
			{
				"Students who sketched the problem solved more items correctly.",
				"Simple diagrams worked better than detailed pictures.",
				"The benefit was largest on multi-step problems.",
			},
			{
				"Working memory holds only a few pieces of information at a time.",
				"Writing steps down moves them out of your head and onto paper.",
				"That leaves room for reasoning about the next step.",
			},
			{
				"Extra decorations in a diagram compete for attention.",
				"Instructors can lower the load by introducing one idea at a time.",
				"Practice makes each step cheaper to hold in mind.",
			},
		},
	}
}

// LoadFixture reads a summary from a YAML file. The summary must pass the
// same alignment checks the client applies.
func LoadFixture(path string) (types.Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Summary{}, fmt.Errorf("reading fixture: %w", err)
	}
	var s types.Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return types.Summary{}, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	if err := decode.Validate(s); err != nil {
		return types.Summary{}, fmt.Errorf("fixture %s: %w", path, err)
	}
	// Omitted lists must still go out as [] since clients reject null.
	if s.Keywords == nil {
		s.Keywords = []string{}
	}
	if s.Lines == nil {
		s.Lines = []string{}
	}
	if s.Expanded == nil {
		s.Expanded = [][]string{}
	}
	return s, nil
}
