package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/dpetrovs/archivegate/internal/archive"
	"github.com/dpetrovs/archivegate/internal/common"
	"github.com/dpetrovs/archivegate/internal/filex"
	"github.com/dpetrovs/archivegate/internal/upload"
)

const maxUploadBytes = 2 << 30

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload receives a dput-style multipart upload: the .changes file
// plus every payload it references, spooled together into a fresh incoming
// directory before processing.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	dir, err := filex.EnsureSubDir(s.incomingDir, uuid.NewString())
	if err != nil {
		s.logger.Error(ctx, "spool dir", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var changesPath string
	for _, headers := range r.MultipartForm.File {
		for _, h := range headers {
			name := filepath.Base(h.Filename)
			if name == "." || name == "/" || strings.Contains(h.Filename, "..") {
				s.writeError(w, http.StatusBadRequest, "bad filename in upload")
				return
			}

			dst := filepath.Join(dir, name)
			if err := saveUploadedPart(h, dst); err != nil {
				s.logger.Error(ctx, "spooling upload", "file", name, "error", err)
				s.writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			if strings.HasSuffix(name, ".changes") {
				changesPath = dst
			}
		}
	}

	if changesPath == "" {
		s.writeError(w, http.StatusBadRequest, "upload carries no .changes file")
		return
	}

	result, err := s.processor.ProcessChangesFile(ctx, changesPath)
	if err != nil {
		if errors.Is(err, common.ErrorUnparseableChanges) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error(ctx, "processing upload", "changes", changesPath, "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	switch result {
	case upload.ResultAccepted:
		s.writeJSON(w, http.StatusOK, map[string]string{"result": "accepted"})
	default:
		s.writeJSON(w, http.StatusOK, map[string]string{"result": "rejected"})
	}
}

func saveUploadedPart(h *multipart.FileHeader, dst string) error {
	src, err := h.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

func (s *Server) handleQueueList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = string(archive.QueueNew)
	}

	items, err := s.reviewer.List(r.Context(), archive.QueueStatus(status))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleQueueAccept(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.reviewer.Approve(r.Context(), id); err != nil {
		s.reviewError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"result": "accepted"})
}

func (s *Server) handleQueueReject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.reviewer.Reject(r.Context(), id, body.Reason); err != nil {
		s.reviewError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"result": "rejected"})
}

func (s *Server) reviewError(w http.ResponseWriter, err error) {
	if errors.Is(err, common.ErrorNotFound) {
		s.writeError(w, http.StatusNotFound, "queue item not found")
		return
	}
	s.writeError(w, http.StatusConflict, err.Error())
}
