// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// Kind classifies a document reference.
type Kind int

const (
	KindUnknown Kind = iota
	KindFile
	KindURL
	KindArxiv
	KindDOI
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindURL:
		return "url"
	case KindArxiv:
		return "arxiv"
	case KindDOI:
		return "doi"
	default:
		return "unknown"
	}
}

// Base URLs for identifier resolution. Declared as vars so tests can
// substitute httptest servers.
var (
	arxivPDFBase    = "https://arxiv.org/pdf/"
	doiBase         = "https://doi.org/"
	openAlexAPIBase = "https://api.openalex.org/works/"
)

// arxivPattern matches arXiv IDs: "2301.07041", "arXiv:2301.07041", "2301.07041v2".
var arxivPattern = regexp.MustCompile(`^(?:arXiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

// doiPattern matches DOIs: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/[^\s]+$`)

// Classify determines the reference kind and returns the normalized form.
// Remote identifiers win over local paths only when the reference does not
// look like a path: anything ending in .pdf, or containing a path
// separator without a URL scheme, is treated as a file.
func Classify(ref string) (Kind, string) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return KindUnknown, ref
	}

	if u, err := url.Parse(ref); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return KindURL, ref
	}

	if m := arxivPattern.FindStringSubmatch(ref); m != nil {
		return KindArxiv, m[1]
	}

	if doiPattern.MatchString(ref) && !strings.EqualFold(filepath.Ext(ref), ".pdf") {
		return KindDOI, ref
	}

	if strings.HasPrefix(ref, "file://") {
		return KindFile, strings.TrimPrefix(ref, "file://")
	}

	return KindFile, ref
}

// PDFURL returns the direct download URL for a remote reference. DOIs go
// through the doi.org resolver; the HTTP client follows redirects.
func PDFURL(kind Kind, normalized string) string {
	switch kind {
	case KindArxiv:
		return arxivPDFBase + normalized
	case KindDOI:
		return doiBase + normalized
	case KindURL:
		return normalized
	default:
		return ""
	}
}

// DisplayName returns a short human-readable name for the reference.
func DisplayName(kind Kind, normalized string) string {
	switch kind {
	case KindFile:
		return filepath.Base(normalized)
	case KindURL:
		u, err := url.Parse(normalized)
		if err != nil {
			return normalized
		}
		base := filepath.Base(u.Path)
		if base == "" || base == "." || base == "/" {
			return u.Host
		}
		return base
	case KindArxiv:
		return "arXiv:" + normalized
	case KindDOI:
		return "doi:" + normalized
	default:
		return normalized
	}
}
