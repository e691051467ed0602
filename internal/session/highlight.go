// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import "strings"

// Span is a half-open byte range [Start, End) within a gist line.
type Span struct {
	Start int
	End   int
}

// Empty reports whether the span covers nothing.
func (sp Span) Empty() bool { return sp.End <= sp.Start }

// Highlight locates the first occurrence of keyword in line. It reports
// false, with an empty span, when the keyword is empty or absent.
func Highlight(line, keyword string) (Span, bool) {
	if keyword == "" {
		return Span{}, false
	}
	i := strings.Index(line, keyword)
	if i < 0 {
		return Span{}, false
	}
	return Span{Start: i, End: i + len(keyword)}, true
}
