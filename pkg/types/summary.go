// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DetailsPerKeyword is the number of expanded detail lines the service
// produces for each keyword.
const DetailsPerKeyword = 3

// Summary is the decoded result of one PDF summarization request.
// Keywords, Lines and Expanded are position-aligned: entry i of each
// describes the same section of the document.
type Summary struct {
	// ID is assigned by the service and carries no uniqueness guarantee.
	ID int `json:"id" yaml:"id"`

	// Title is the document title inferred by the service.
	Title string `json:"title" yaml:"title"`

	// Topic is an optional one-line descriptor of the document's subject.
	Topic *string `json:"topic,omitempty" yaml:"topic,omitempty"`

	// Keywords holds one short label per highlighted section, in section order.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Lines holds one gist per section. Each gist is meant to contain its
	// keyword as a substring.
	Lines []string `json:"lines" yaml:"lines"`

	// Expanded holds one group of DetailsPerKeyword detail strings per keyword.
	Expanded [][]string `json:"expanded" yaml:"expanded"`
}

// TopicOrEmpty returns the topic, or "" when the service sent none.
func (s Summary) TopicOrEmpty() string {
	if s.Topic == nil {
		return ""
	}
	return *s.Topic
}

// Sections returns the number of keyword sections in the summary.
func (s Summary) Sections() int {
	return len(s.Keywords)
}

// IsZero reports whether the summary carries no content at all.
func (s Summary) IsZero() bool {
	return s.ID == 0 && s.Title == "" && s.Topic == nil &&
		len(s.Keywords) == 0 && len(s.Lines) == 0 && len(s.Expanded) == 0
}

// ResponsePayload is the wire envelope returned by the summarization
// service. Clients consume only the first summary.
type ResponsePayload struct {
	Summaries []Summary `json:"summaries" yaml:"summaries"`
}

// StringPtr returns a pointer to s. Convenient for building summaries with a topic.
func StringPtr(s string) *string {
	return &s
}
