// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "projectx/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// UploadConfig holds settings for talking to the summarization service.
type UploadConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the base URL of the summarization service
	// (e.g. "http://localhost:8000"). The upload path is appended to it.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Token is an optional bearer token sent with every upload.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// Lenient skips the keyword/line/detail alignment check on decode.
	Lenient bool `json:"lenient" yaml:"lenient"`
}

// SourceConfig holds settings for resolving a document reference to PDF bytes.
type SourceConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxBytes caps the size of a resolved document (default 50 MiB).
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes"`

	// RequestsPerSecond limits remote downloads (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// HistoryConfig holds settings for the local summary archive.
type HistoryConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`

	// MaxResults is the default number of entries listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ServeConfig holds settings for the stand-in summarization service.
type ServeConfig struct {
	// Addr is the listen address (e.g. ":8000").
	Addr string `json:"addr" yaml:"addr"`

	// FixturePath is an optional YAML file holding the Summary to answer with.
	FixturePath string `json:"fixture_path,omitempty" yaml:"fixture_path,omitempty"`

	// MaxUploadBytes caps accepted request bodies (default 50 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// OutputFormat selects how a summary is printed.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// Valid reports whether f is a known output format.
func (f OutputFormat) Valid() bool {
	switch f {
	case OutputText, OutputJSON, OutputYAML:
		return true
	}
	return false
}
