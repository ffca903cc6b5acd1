package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/feedflow/feedflow/internal/mapping"
	"github.com/feedflow/feedflow/internal/workflow"
)

// mappingState bundles everything the mapping screen needs.
type mappingState struct {
	Mappings     map[string]string     `json:"mappings"`
	Unmapped     []string              `json:"unmappedFields"`
	CustomFields []mapping.CustomField `json:"customFields"`
}

func (s *Server) mappingStateOf(sess *workflow.Session) (mappingState, error) {
	mappings, err := sess.Mappings()
	if err != nil {
		return mappingState{}, err
	}
	unmapped, err := sess.Unmapped()
	if err != nil {
		return mappingState{}, err
	}
	custom, err := sess.CustomFields()
	if err != nil {
		return mappingState{}, err
	}
	return mappingState{Mappings: mappings, Unmapped: unmapped, CustomFields: custom}, nil
}

func (s *Server) handleGetMappings(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
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

func (s *Server) handleAutoMap(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if _, err := sess.AutoMap(); err != nil {
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

func (s *Server) handleSetMapping(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req struct {
		Target string `json:"target"`
		Source string `json:"source"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Source == "" {
		req.Source = mapping.NotMapped
	}
	if err := sess.SetMapping(req.Target, req.Source); err != nil {
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

func (s *Server) handleValidateMappings(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, r, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}

	rec, err := sess.ValidateMappings(r.Context(), req.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session": s.sessionSummary(sess),
		"record":  rec,
	})
}

func (s *Server) handleAddCustomField(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	cf, err := sess.AddCustomField()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cf)
}

func (s *Server) handleUpdateCustomField(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var patch mapping.CustomFieldPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}
	cf, err := sess.UpdateCustomField(chi.URLParam(r, "fieldID"), patch)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cf)
}

func (s *Server) handleRemoveCustomField(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := sess.RemoveCustomField(chi.URLParam(r, "fieldID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
