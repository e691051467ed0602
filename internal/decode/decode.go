// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package decode turns a summarization service response body into a Summary.
//
// The service answers with {"summaries": [...]}; only the first summary is
// used. Decode additionally checks that keywords, gist lines and expanded
// detail groups are position-aligned so that a presentation layer can index
// them without bounds surprises.
package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pdiddy/projectx/pkg/types"
)

var (
	// ErrMalformed means the body does not match the response schema.
	ErrMalformed = errors.New("malformed summary response")

	// ErrNoSummary means the envelope is well formed but holds no summaries.
	ErrNoSummary = errors.New("response contains no summary")

	// ErrInconsistent means the summary fields are not position-aligned.
	ErrInconsistent = errors.New("summary fields are misaligned")
)

// envelope mirrors types.ResponsePayload but keeps the summaries field raw
// so a missing or null key can be told apart from an empty array.
type envelope struct {
	Summaries json.RawMessage `json:"summaries"`
}

// wireSummary is the strict wire form of one summary. Pointer fields tell an
// absent or null key apart from an empty value; only topic may be missing.
type wireSummary struct {
	ID       *int        `json:"id"`
	Title    *string     `json:"title"`
	Topic    *string     `json:"topic"`
	Keywords *[]string   `json:"keywords"`
	Lines    *[]string   `json:"lines"`
	Expanded *[][]string `json:"expanded"`
}

func (w wireSummary) missing() string {
	switch {
	case w.ID == nil:
		return "id"
	case w.Title == nil:
		return "title"
	case w.Keywords == nil:
		return "keywords"
	case w.Lines == nil:
		return "lines"
	case w.Expanded == nil:
		return "expanded"
	}
	return ""
}

func (w wireSummary) summary() types.Summary {
	return types.Summary{
		ID:       *w.ID,
		Title:    *w.Title,
		Topic:    w.Topic,
		Keywords: *w.Keywords,
		Lines:    *w.Lines,
		Expanded: *w.Expanded,
	}
}

// Decode parses data as a response payload and returns its first summary
// after checking field alignment.
func Decode(data []byte) (types.Summary, error) {
	s, err := DecodeUnchecked(data)
	if err != nil {
		return types.Summary{}, err
	}
	if err := Validate(s); err != nil {
		return types.Summary{}, err
	}
	return s, nil
}

// DecodeUnchecked parses data as a response payload and returns its first
// summary exactly as sent, without checking field alignment.
func DecodeUnchecked(data []byte) (types.Summary, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return types.Summary{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	raw := bytes.TrimSpace(env.Summaries)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return types.Summary{}, fmt.Errorf("%w: missing \"summaries\"", ErrMalformed)
	}
	if raw[0] != '[' {
		return types.Summary{}, fmt.Errorf("%w: \"summaries\" is not an array", ErrMalformed)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return types.Summary{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(elems) == 0 {
		return types.Summary{}, ErrNoSummary
	}

	// Every element must match the schema even though only the first is used.
	var first types.Summary
	for i, elem := range elems {
		s, err := decodeSummary(elem)
		if err != nil {
			return types.Summary{}, fmt.Errorf("%w: summary %d: %v", ErrMalformed, i, err)
		}
		if i == 0 {
			first = s
		}
	}
	return first, nil
}

func decodeSummary(raw json.RawMessage) (types.Summary, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return types.Summary{}, errors.New("not an object")
	}
	var w wireSummary
	if err := json.Unmarshal(raw, &w); err != nil {
		return types.Summary{}, err
	}
	if field := w.missing(); field != "" {
		return types.Summary{}, fmt.Errorf("missing or null %q", field)
	}
	return w.summary(), nil
}

// Validate checks that every keyword has exactly one gist line and one group
// of types.DetailsPerKeyword details.
func Validate(s types.Summary) error {
	n := len(s.Keywords)
	if len(s.Lines) != n {
		return fmt.Errorf("%w: %d keywords but %d lines", ErrInconsistent, n, len(s.Lines))
	}
	if len(s.Expanded) != n {
		return fmt.Errorf("%w: %d keywords but %d expanded groups", ErrInconsistent, n, len(s.Expanded))
	}
	for i, group := range s.Expanded {
		if len(group) != types.DetailsPerKeyword {
			return fmt.Errorf("%w: expanded group %d has %d details, want %d",
				ErrInconsistent, i, len(group), types.DetailsPerKeyword)
		}
	}
	return nil
}
