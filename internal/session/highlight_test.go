// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import "testing"

func TestHighlight(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		keyword string
		want    Span
		wantOK  bool
	}{
		{"keyword at start", "attention is limited", "attention", Span{0, 9}, true},
		{"keyword in middle", "reduce cognitive load early", "cognitive load", Span{7, 21}, true},
		{"first of several", "one and one make two", "one", Span{0, 3}, true},
		{"case sensitive", "Attention is limited", "attention", Span{}, false},
		{"absent", "nothing here", "memory", Span{}, false},
		{"empty keyword", "anything", "", Span{}, false},
		{"multibyte prefix", "café attention", "attention", Span{6, 15}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Highlight(tt.line, tt.keyword)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Highlight(%q, %q) = %v, %v; want %v, %v", tt.line, tt.keyword, got, ok, tt.want, tt.wantOK)
			}
			if ok && tt.line[got.Start:got.End] != tt.keyword {
				t.Errorf("span %v does not cover %q", got, tt.keyword)
			}
		})
	}
}
