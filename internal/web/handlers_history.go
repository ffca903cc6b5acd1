package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.History().ListUploads(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleGetUploadRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.History().GetUpload(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListMappings(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.History().ListMappings(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleGetMappingRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.History().GetMapping(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.History().ListSchemas(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleGetSchemaRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.History().GetSchema(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.History().ListExports(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.service.History().Clear(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Re-hydration endpoints: restore session state from saved snapshots.

func (s *Server) handleLoadUpload(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if _, err := sess.LoadUpload(r.Context(), chi.URLParam(r, "recordID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sessionSummary(sess))
}

func (s *Server) handleLoadMapping(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if _, err := sess.LoadMapping(r.Context(), chi.URLParam(r, "recordID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	state, err := s.mappingStateOf(sess)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleLoadSchema(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	sch, err := sess.LoadSchema(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sch)
}
