// Package httpapi exposes the intake and review surface over HTTP: a
// dput-style multipart upload endpoint and the operator queue endpoints.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dpetrovs/archivegate/internal/archive"
	"github.com/dpetrovs/archivegate/internal/logging"
	"github.com/dpetrovs/archivegate/internal/upload"
)

// UploadProcessor runs the acceptance pipeline for one spooled .changes
// file.
type UploadProcessor interface {
	ProcessChangesFile(ctx context.Context, path string) (upload.Result, error)
}

// QueueReviewer is the operator side of the queue.
type QueueReviewer interface {
	List(ctx context.Context, status archive.QueueStatus) ([]*archive.QueueItem, error)
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id, reason string) error
}

type Server struct {
	addr        string
	secretKey   []byte
	incomingDir string

	logger    logging.Logger
	processor UploadProcessor
	reviewer  QueueReviewer

	httpServer *http.Server
}

func NewServer(addr string, secretKey []byte, incomingDir string,
	logger logging.Logger, processor UploadProcessor, reviewer QueueReviewer) *Server {

	s := &Server{
		addr:        addr,
		secretKey:   secretKey,
		incomingDir: incomingDir,
		logger:      logger.With("component", "httpapi"),
		processor:   processor,
		reviewer:    reviewer,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)

	q := r.PathPrefix("/queue").Subrouter()
	q.Use(s.authMiddleware)
	q.HandleFunc("", s.handleQueueList).Methods(http.MethodGet)
	q.HandleFunc("/{id}/accept", s.handleQueueAccept).Methods(http.MethodPost)
	q.HandleFunc("/{id}/reject", s.handleQueueReject).Methods(http.MethodPost)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
