// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source turns a user-supplied document reference into PDF bytes.
//
// A reference is a local path, an http(s) URL, an arXiv ID, or a DOI.
// Remote documents are downloaded in full into memory; DOIs are first
// looked up on OpenAlex for an open-access PDF and fall back to the doi.org
// resolver. Whatever the origin, the bytes must start with the PDF magic.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/projectx/internal/httputil"
	"github.com/pdiddy/projectx/pkg/types"
)

const (
	defaultMaxBytes  = 50 << 20
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "projectx/0.1"
)

// pdfMagic opens every PDF file.
var pdfMagic = []byte("%PDF-")

var (
	// ErrEmptyReference means no document was named.
	ErrEmptyReference = errors.New("no document given")

	// ErrNotPDF means the resolved bytes are not a PDF.
	ErrNotPDF = errors.New("not a PDF document")

	// ErrTooLarge means the document exceeds the configured size cap.
	ErrTooLarge = errors.New("document too large")
)

// Document is a resolved PDF held in memory.
type Document struct {
	// Name is a short display name (file base name, arXiv:ID, doi:ID).
	Name string
	// Origin is the path or URL the bytes came from.
	Origin string
	// Kind is how the reference was classified.
	Kind Kind
	// Data holds the PDF bytes.
	Data []byte
}

// Resolver fetches documents. It is safe for concurrent use.
type Resolver struct {
	client  *http.Client
	cfg     types.SourceConfig
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewResolver returns a Resolver. A nil client gets one with cfg.Timeout.
func NewResolver(client *http.Client, cfg types.SourceConfig, logger *zap.Logger) *Resolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  logger,
	}
}

// Resolve classifies ref and loads the document it names.
func (r *Resolver) Resolve(ctx context.Context, ref string) (Document, error) {
	kind, normalized := Classify(ref)
	if kind == KindUnknown {
		return Document{}, ErrEmptyReference
	}

	doc := Document{Name: DisplayName(kind, normalized), Kind: kind}

	var err error
	switch kind {
	case KindFile:
		doc.Origin = normalized
		doc.Data, err = r.readFile(normalized)
	default:
		doc.Origin = PDFURL(kind, normalized)
		if kind == KindDOI {
			if oaURL, oaErr := r.resolveOpenAlex(ctx, normalized); oaErr != nil {
				r.logger.Debug("OpenAlex lookup failed", zap.String("doi", normalized), zap.Error(oaErr))
			} else if oaURL != "" {
				doc.Origin = oaURL
			}
		}
		doc.Data, err = r.download(ctx, doc.Origin)
	}
	if err != nil {
		return Document{}, err
	}

	if !bytes.HasPrefix(doc.Data, pdfMagic) {
		return Document{}, fmt.Errorf("%w: %s", ErrNotPDF, doc.Name)
	}

	r.logger.Debug("document resolved",
		zap.String("kind", kind.String()),
		zap.String("origin", doc.Origin),
		zap.Int("bytes", len(doc.Data)),
	)
	return doc, nil
}

func (r *Resolver) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return r.readCapped(f, path)
}

// download fetches url with retries on 429/503 and returns the body.
func (r *Resolver) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := httputil.DoWithRetry(ctx, r.client, req, 0, r.logger)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: HTTP %d", url, resp.StatusCode)
	}
	return r.readCapped(resp.Body, url)
}

func (r *Resolver) readCapped(src io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(src, r.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if int64(len(data)) > r.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, r.cfg.MaxBytes)
	}
	return data, nil
}
