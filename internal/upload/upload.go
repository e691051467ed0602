// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package upload posts a PDF to the summarization service and decodes the
// summary it returns.
//
// Each call builds one multipart/form-data request with a single part named
// "file" (filename doc.pdf, Content-Type application/pdf) holding the PDF
// bytes verbatim. Uploads are never retried: a failed upload is terminal
// for the attempt and the caller decides what to do next.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/projectx/internal/decode"
	"github.com/pdiddy/projectx/pkg/types"
)

// Path is the summarization endpoint, relative to the configured base URL.
const Path = "/api/simplify_pdf"

const (
	// FieldName is the multipart form field carrying the document.
	FieldName = "file"
	// FileName is the filename reported for every uploaded document.
	FileName = "doc.pdf"
	// ContentType is the media type of the uploaded part.
	ContentType = "application/pdf"
)

const (
	defaultTimeout   = 120 * time.Second
	maxResponseBytes = 8 << 20
	maxDetailLen     = 200
)

var (
	// ErrTransport means the request never produced a response: bad
	// endpoint configuration, DNS failure, refused connection, or timeout.
	ErrTransport = errors.New("summarization service unreachable")

	// ErrStatus means the service answered with a non-2xx status.
	ErrStatus = errors.New("summarization service returned an error")

	// ErrEmptyDocument means Upload was called with no bytes.
	ErrEmptyDocument = errors.New("empty document")
)

// StatusError carries the HTTP status and the service's error detail.
// It matches ErrStatus with errors.Is.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("summarization service returned HTTP %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("summarization service returned HTTP %d", e.Code)
}

// Is reports whether target is ErrStatus.
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// Uploader sends documents to one summarization service.
type Uploader struct {
	client   *http.Client
	endpoint string
	cfg      types.UploadConfig
	logger   *zap.Logger

	// newBoundary is swapped in tests that need a predictable body.
	newBoundary func() string
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(u *Uploader) { u.client = c }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(u *Uploader) { u.logger = l }
}

// New returns an Uploader for cfg.Endpoint. An invalid endpoint is not
// reported here; it surfaces as ErrTransport on the first Upload so that
// misconfiguration and network failure look the same to callers.
func New(cfg types.UploadConfig, opts ...Option) *Uploader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	u := &Uploader{
		client:      &http.Client{Timeout: timeout},
		endpoint:    strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/") + Path,
		cfg:         cfg,
		logger:      zap.NewNop(),
		newBoundary: uuid.NewString,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Endpoint returns the full URL documents are posted to.
func (u *Uploader) Endpoint() string { return u.endpoint }

// Upload posts pdf to the service and returns the first summary in the
// response. Errors match ErrTransport, ErrStatus, ErrEmptyDocument, or one
// of the decode package errors.
func (u *Uploader) Upload(ctx context.Context, pdf []byte) (types.Summary, error) {
	if len(pdf) == 0 {
		return types.Summary{}, ErrEmptyDocument
	}

	if err := validateEndpoint(u.endpoint); err != nil {
		return types.Summary{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	body, contentType, err := u.buildBody(pdf)
	if err != nil {
		return types.Summary{}, fmt.Errorf("building request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, bytes.NewReader(body))
	if err != nil {
		return types.Summary{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if u.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", u.cfg.UserAgent)
	}
	if u.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+u.cfg.Token)
	}

	start := time.Now()
	u.logger.Debug("uploading document",
		zap.String("endpoint", u.endpoint),
		zap.Int("pdf_bytes", len(pdf)),
		zap.Int("body_bytes", len(body)),
	)

	resp, err := u.client.Do(req)
	if err != nil {
		return types.Summary{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return types.Summary{}, fmt.Errorf("%w: reading response: %w", ErrTransport, err)
	}

	u.logger.Debug("upload finished",
		zap.Int("status", resp.StatusCode),
		zap.Int("response_bytes", len(data)),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.Summary{}, &StatusError{Code: resp.StatusCode, Detail: errorDetail(data)}
	}

	if u.cfg.Lenient {
		return decode.DecodeUnchecked(data)
	}
	return decode.Decode(data)
}

// buildBody encodes pdf as a single-part multipart/form-data body and
// returns it with the matching Content-Type header value.
func (u *Uploader) buildBody(pdf []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.SetBoundary(u.newBoundary()); err != nil {
		return nil, "", fmt.Errorf("setting boundary: %w", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FieldName, FileName))
	h.Set("Content-Type", ContentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("creating part: %w", err)
	}
	if _, err := part.Write(pdf); err != nil {
		return nil, "", fmt.Errorf("writing part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	return nil
}

// errorDetail extracts the message from a FastAPI-style {"detail": "..."}
// body, falling back to the first line of a plain-text body.
func errorDetail(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil && len(body.Detail) > 0 {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil {
			return s
		}
		return truncate(string(body.Detail))
	}

	text := strings.TrimSpace(string(data))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return truncate(text)
}

// truncate clips s to maxDetailLen runes so multi-byte text is never split.
func truncate(s string) string {
	r := []rune(s)
	if len(r) > maxDetailLen {
		return string(r[:maxDetailLen-3]) + "..."
	}
	return s
}
