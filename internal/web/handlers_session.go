package web

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/feedflow/feedflow/internal/feed"
	"github.com/feedflow/feedflow/internal/workflow"
)

// sessionResponse summarizes a session for clients.
type sessionResponse struct {
	ID          string         `json:"id"`
	State       workflow.State `json:"state"`
	FileName    string         `json:"fileName,omitempty"`
	FileType    feed.FileType  `json:"fileType,omitempty"`
	RecordCount int            `json:"recordCount,omitempty"`
}

func (s *Server) sessionSummary(sess *workflow.Session) sessionResponse {
	resp := sessionResponse{ID: sess.ID, State: sess.State()}
	if dataset, err := sess.Dataset(); err == nil {
		resp.FileName = dataset.FileName
		resp.FileType = dataset.FileType
		resp.RecordCount = len(dataset.Rows)
	}
	return resp
}

// sessionFromRequest resolves the {sessionID} route parameter.
func (s *Server) sessionFromRequest(r *http.Request) (*workflow.Session, error) {
	return s.service.Session(chi.URLParam(r, "sessionID"))
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"fields": s.service.Catalog()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.service.CreateSession()
	writeJSON(w, http.StatusCreated, s.sessionSummary(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sessionSummary(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RemoveSession(chi.URLParam(r, "sessionID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpload accepts a multipart feed file and parses it into the
// session.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	maxSize := s.opts.MaxUploadSize
	if maxSize <= 0 {
		maxSize = feed.DefaultMaxFileSize
	}
	// Headroom for the multipart framing around the file part.
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+64*1024)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, fmt.Errorf("file too large or invalid form: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("no file provided: %w", err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}

	dataset, err := sess.Upload(r.Context(), header.Filename, content)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"session":  s.sessionSummary(sess),
		"headers":  dataset.Headers,
		"rowCount": len(dataset.Rows),
	})
}

// handleDataset returns the parsed table, windowed by offset and limit.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	dataset, err := sess.Dataset()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)
	rows := dataset.Rows
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"fileName": dataset.FileName,
		"fileType": dataset.FileType,
		"fileSize": dataset.FileSize,
		"headers":  dataset.Headers,
		"rowCount": len(dataset.Rows),
		"offset":   offset,
		"rows":     rows,
	})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// handleExport streams the normalized feed as a file download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	export, err := sess.Export(r.Context(), format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.Write(export.Data)
}
