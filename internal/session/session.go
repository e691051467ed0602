// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the view state for one summary browser: whether an
// upload is in flight, the summary last loaded, the last error message, and
// which keyword panel is open.
//
// A Session admits one upload at a time. Submit while another upload is
// outstanding returns ErrBusy without touching the network.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/projectx/pkg/types"
)

var (
	// ErrBusy means an upload is already in flight for this session.
	ErrBusy = errors.New("an upload is already in progress")

	// ErrNoSummary means no summary has been loaded yet.
	ErrNoSummary = errors.New("no summary loaded")

	// ErrPanelRange means the requested keyword index does not exist.
	ErrPanelRange = errors.New("keyword index out of range")

	errAborted = errors.New("upload aborted")
)

// Summarizer uploads a document and returns its summary.
type Summarizer interface {
	Upload(ctx context.Context, pdf []byte) (types.Summary, error)
}

// Phase is the coarse state of a session.
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// noPanel marks that no keyword panel is open.
const noPanel = -1

// Session is the controller behind a summary view. The zero value is not
// usable; call New.
type Session struct {
	summarizer Summarizer
	logger     *zap.Logger

	mu      sync.Mutex
	phase   Phase
	summary types.Summary
	lastErr error
	open    int
}

// New returns an idle Session that uploads through s.
func New(s Summarizer, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{summarizer: s, logger: logger, open: noPanel}
}

// Submit uploads pdf and, on success, replaces the loaded summary and closes
// any open panel. Empty input is a no-op. If another upload is in flight
// Submit returns ErrBusy immediately. On failure the session returns to
// Idle, the previous summary is dropped, and the error is both returned and
// kept for Message.
func (s *Session) Submit(ctx context.Context, pdf []byte) error {
	if len(pdf) == 0 {
		s.logger.Debug("ignoring empty document")
		return nil
	}

	s.mu.Lock()
	if s.phase == Loading {
		s.mu.Unlock()
		s.logger.Debug("rejecting upload while busy")
		return ErrBusy
	}
	s.phase = Loading
	s.lastErr = nil
	s.mu.Unlock()

	var (
		summary types.Summary
		err     error
	)
	returned := false
	defer func() {
		if returned {
			return
		}
		// The summarizer panicked; release the busy flag before unwinding.
		s.mu.Lock()
		s.phase = Idle
		s.summary = types.Summary{}
		s.open = noPanel
		s.lastErr = errAborted
		s.mu.Unlock()
	}()
	summary, err = s.summarizer.Upload(ctx, pdf)
	returned = true

	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = noPanel
	if err != nil {
		s.phase = Idle
		s.summary = types.Summary{}
		s.lastErr = err
		s.logger.Warn("upload failed", zap.Error(err))
		return err
	}
	s.phase = Loaded
	s.summary = summary
	s.logger.Debug("summary loaded",
		zap.String("title", summary.Title),
		zap.Int("sections", summary.Sections()),
	)
	return nil
}

// Busy reports whether an upload is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == Loading
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Summary returns the loaded summary and whether one is loaded.
func (s *Session) Summary() (types.Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary, s.phase == Loaded
}

// Err returns the error from the last failed upload, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Message returns a short human-readable line for the last failure, or ""
// when the last upload succeeded.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastErr == nil {
		return ""
	}
	return "Error: " + firstLine(s.lastErr.Error())
}

// Panel is the detail view for one keyword.
type Panel struct {
	Index   int
	Keyword string
	Line    string
	Details []string
	Span    Span
}

// Open selects the keyword panel at index i and returns it.
func (s *Session) Open(i int) (Panel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.panelLocked(i)
	if err != nil {
		return Panel{}, err
	}
	s.open = i
	return p, nil
}

// Toggle opens panel i, or closes it if it is already open. The returned
// bool reports whether the panel is open afterwards.
func (s *Session) Toggle(i int) (Panel, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.panelLocked(i)
	if err != nil {
		return Panel{}, false, err
	}
	if s.open == i {
		s.open = noPanel
		return p, false, nil
	}
	s.open = i
	return p, true, nil
}

// Close closes the open panel, if any.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = noPanel
}

// OpenPanel returns the currently open panel, if any.
func (s *Session) OpenPanel() (Panel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == noPanel {
		return Panel{}, false
	}
	p, err := s.panelLocked(s.open)
	if err != nil {
		return Panel{}, false
	}
	return p, true
}

func (s *Session) panelLocked(i int) (Panel, error) {
	if s.phase != Loaded {
		return Panel{}, ErrNoSummary
	}
	return PanelAt(s.summary, i)
}

// PanelAt returns the detail view for keyword i of sum. It bounds-checks
// every field, so summaries decoded without alignment checks are safe.
func PanelAt(sum types.Summary, i int) (Panel, error) {
	n := sum.Sections()
	if i < 0 || i >= n || i >= len(sum.Lines) {
		return Panel{}, fmt.Errorf("%w: %d (have %d)", ErrPanelRange, i, n)
	}
	p := Panel{
		Index:   i,
		Keyword: sum.Keywords[i],
		Line:    sum.Lines[i],
	}
	if i < len(sum.Expanded) {
		p.Details = append([]string(nil), sum.Expanded[i]...)
	}
	p.Span, _ = Highlight(p.Line, p.Keyword)
	return p, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
