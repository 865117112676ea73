package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpetrovs/archivegate/internal/archive"
	"github.com/dpetrovs/archivegate/internal/common"
	"github.com/dpetrovs/archivegate/internal/logging"
	"github.com/dpetrovs/archivegate/internal/server/auth"
	"github.com/dpetrovs/archivegate/internal/upload"
)

type fakeProcessor struct {
	path   string
	result upload.Result
	err    error
}

func (p *fakeProcessor) ProcessChangesFile(ctx context.Context, path string) (upload.Result, error) {
	p.path = path
	return p.result, p.err
}

type fakeReviewer struct {
	items      []*archive.QueueItem
	approved   []string
	rejected   []string
	reasons    []string
	approveErr error
}

func (r *fakeReviewer) List(ctx context.Context, status archive.QueueStatus) ([]*archive.QueueItem, error) {
	return r.items, nil
}

func (r *fakeReviewer) Approve(ctx context.Context, id string) error {
	if r.approveErr != nil {
		return r.approveErr
	}
	r.approved = append(r.approved, id)
	return nil
}

func (r *fakeReviewer) Reject(ctx context.Context, id, reason string) error {
	r.rejected = append(r.rejected, id)
	r.reasons = append(r.reasons, reason)
	return nil
}

var testSecret = []byte("test-secret")

func newTestServer(t *testing.T, processor *fakeProcessor, reviewer *fakeReviewer) *Server {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewServer(":0", testSecret, t.TempDir(), logger, processor, reviewer)
}

func operatorToken(t *testing.T) string {
	t.Helper()
	tok, err := auth.GenerateToken("op-1", testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{}, &fakeReviewer{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func multipartUpload(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUpload_SpoolsAndProcesses(t *testing.T) {
	processor := &fakeProcessor{result: upload.ResultAccepted}
	s := newTestServer(t, processor, &fakeReviewer{})

	body, contentType := multipartUpload(t, map[string]string{
		"hello_1.0-1_source.changes": "Format: 1.8\n",
		"hello_1.0-1.dsc":            "Source: hello\n",
	})

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp["result"])

	// The changes file and its payload were spooled next to each other.
	require.NotEmpty(t, processor.path)
	_, err := os.Stat(processor.path)
	require.NoError(t, err)
}

func TestUpload_NoChangesFile(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{}, &fakeReviewer{})

	body, contentType := multipartUpload(t, map[string]string{
		"hello_1.0-1.dsc": "Source: hello\n",
	})

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueue_RequiresToken(t *testing.T) {
	s := newTestServer(t, &fakeProcessor{}, &fakeReviewer{})

	req := httptest.NewRequest(http.MethodGet, "/queue", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestQueue_ListWithToken(t *testing.T) {
	reviewer := &fakeReviewer{items: []*archive.QueueItem{
		{ID: "q1", Package: "hello", Status: archive.QueueNew},
	}}
	s := newTestServer(t, &fakeProcessor{}, reviewer)

	req := httptest.NewRequest(http.MethodGet, "/queue?status=new", nil)
	req.Header.Set("Authorization", "Bearer "+operatorToken(t))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello")
}

func TestQueue_Accept(t *testing.T) {
	reviewer := &fakeReviewer{}
	s := newTestServer(t, &fakeProcessor{}, reviewer)

	req := httptest.NewRequest(http.MethodPost, "/queue/q1/accept", nil)
	req.Header.Set("Authorization", "Bearer "+operatorToken(t))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"q1"}, reviewer.approved)
}

func TestQueue_AcceptNotFound(t *testing.T) {
	reviewer := &fakeReviewer{approveErr: common.ErrorNotFound}
	s := newTestServer(t, &fakeProcessor{}, reviewer)

	req := httptest.NewRequest(http.MethodPost, "/queue/q1/accept", nil)
	req.Header.Set("Authorization", "Bearer "+operatorToken(t))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQueue_RejectWithReason(t *testing.T) {
	reviewer := &fakeReviewer{}
	s := newTestServer(t, &fakeProcessor{}, reviewer)

	body := bytes.NewBufferString(`{"reason":"superseded by 2.0"}`)
	req := httptest.NewRequest(http.MethodPost, "/queue/q1/reject", body)
	req.Header.Set("Authorization", "Bearer "+operatorToken(t))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"q1"}, reviewer.rejected)
	assert.Equal(t, []string{"superseded by 2.0"}, reviewer.reasons)
}
