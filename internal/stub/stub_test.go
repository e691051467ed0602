// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stub

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/projectx/internal/decode"
	"github.com/pdiddy/projectx/internal/session"
	"github.com/pdiddy/projectx/internal/upload"
	"github.com/pdiddy/projectx/pkg/types"
)

var samplePDF = []byte("%PDF-1.4\n%stub\n%%EOF\n")

func newTestServer(t *testing.T, cfg types.ServeConfig) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(DefaultFixture(), cfg, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "doc.pdf")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func post(t *testing.T, url, contentType string, body io.Reader) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url+upload.Path, contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestDefaultFixture_IsAligned(t *testing.T) {
	require.NoError(t, decode.Validate(DefaultFixture()))
	for i, line := range DefaultFixture().Lines {
		_, ok := session.Highlight(line, DefaultFixture().Keywords[i])
		assert.True(t, ok, "line %d should contain its keyword", i)
	}
}

func TestLoadFixture(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`id: 7
title: Tides
topic: Oceans
keywords: [moon]
lines: ["The moon pulls the sea."]
expanded:
  - ["one", "two", "three"]
`), 0o644))
	s, err := LoadFixture(good)
	require.NoError(t, err)
	assert.Equal(t, 7, s.ID)
	assert.Equal(t, "Oceans", s.TopicOrEmpty())
	assert.Equal(t, []string{"moon"}, s.Keywords)

	misaligned := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(misaligned, []byte("title: x\nkeywords: [a, b]\nlines: [a]\nexpanded: []\n"), 0o644))
	_, err = LoadFixture(misaligned)
	assert.ErrorIs(t, err, decode.ErrInconsistent)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("keywords: [unterminated"), 0o644))
	_, err = LoadFixture(broken)
	assert.ErrorContains(t, err, "parsing fixture")

	bare := filepath.Join(dir, "bare.yaml")
	require.NoError(t, os.WriteFile(bare, []byte("id: 2\ntitle: Nothing yet\n"), 0o644))
	s, err = LoadFixture(bare)
	require.NoError(t, err)
	data, err := json.Marshal(types.ResponsePayload{Summaries: []types.Summary{s}})
	require.NoError(t, err)
	decoded, err := decode.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "Nothing yet", decoded.Title)

	_, err = LoadFixture(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, types.ServeConfig{})
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestSimplify_ReturnsFixture(t *testing.T) {
	ts := newTestServer(t, types.ServeConfig{})
	body, ct := multipartBody(t, upload.FieldName, samplePDF)

	resp, err := http.Post(ts.URL+upload.Path, ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	got, err := decode.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultFixture(), got)
}

func TestSimplify_Errors(t *testing.T) {
	ts := newTestServer(t, types.ServeConfig{MaxUploadBytes: 1024})

	t.Run("missing file part", func(t *testing.T) {
		body, ct := multipartBody(t, "document", samplePDF)
		status, out := post(t, ts.URL, ct, body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, out["detail"], "file")
	})

	t.Run("not multipart", func(t *testing.T) {
		status, out := post(t, ts.URL, "application/pdf", bytes.NewReader(samplePDF))
		assert.Equal(t, http.StatusBadRequest, status)
		assert.NotEmpty(t, out["detail"])
	})

	t.Run("not a PDF", func(t *testing.T) {
		body, ct := multipartBody(t, upload.FieldName, []byte("hello, world"))
		status, out := post(t, ts.URL, ct, body)
		assert.Equal(t, http.StatusUnsupportedMediaType, status)
		assert.Equal(t, "Uploaded file is not a PDF.", out["detail"])
	})

	t.Run("empty file", func(t *testing.T) {
		body, ct := multipartBody(t, upload.FieldName, nil)
		status, _ := post(t, ts.URL, ct, body)
		assert.Equal(t, http.StatusUnsupportedMediaType, status)
	})

	t.Run("too large", func(t *testing.T) {
		big := append(append([]byte{}, samplePDF...), bytes.Repeat([]byte("x"), 4096)...)
		body, ct := multipartBody(t, upload.FieldName, big)
		status, out := post(t, ts.URL, ct, body)
		assert.Equal(t, http.StatusRequestEntityTooLarge, status)
		assert.NotEmpty(t, out["detail"])
	})
}

func TestSimplify_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, types.ServeConfig{})
	resp, err := http.Get(ts.URL + upload.Path)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRequestLogger_OneLinePerRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ts := httptest.NewServer(New(DefaultFixture(), types.ServeConfig{}, zap.New(core)).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/healthz", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal server error."}`, rec.Body.String())
}

func TestUploaderAgainstStub(t *testing.T) {
	ts := newTestServer(t, types.ServeConfig{})
	u := upload.New(types.UploadConfig{Endpoint: ts.URL + "/"})

	got, err := u.Upload(context.Background(), samplePDF)
	require.NoError(t, err)
	assert.Equal(t, DefaultFixture(), got)

	_, err = u.Upload(context.Background(), []byte("not a pdf"))
	var se *upload.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnsupportedMediaType, se.Code)
	assert.Equal(t, "Uploaded file is not a PDF.", se.Detail)
}

func TestSessionAgainstStub(t *testing.T) {
	ts := newTestServer(t, types.ServeConfig{})
	s := session.New(upload.New(types.UploadConfig{Endpoint: ts.URL}), nil)

	require.NoError(t, s.Submit(context.Background(), samplePDF))
	assert.Equal(t, session.Loaded, s.Phase())

	p, err := s.Open(1)
	require.NoError(t, err)
	assert.Equal(t, "working memory", p.Keyword)
	assert.Len(t, p.Details, types.DetailsPerKeyword)
	assert.False(t, p.Span.Empty())
}

func TestListenAndServe_GracefulShutdown(t *testing.T) {
	srv := New(DefaultFixture(), types.ServeConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	addrCh := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, func(addr string) { addrCh <- addr }) }()

	addr := <-addrCh
	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenAndServe_BadAddr(t *testing.T) {
	srv := New(DefaultFixture(), types.ServeConfig{Addr: "127.0.0.1:-1"}, nil)
	assert.Error(t, srv.ListenAndServe(context.Background(), nil))
}
