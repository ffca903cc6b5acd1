package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/feedflow/feedflow/internal/schema"
)

func (s *Server) handleGenerateSchema(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.respondError(w, r, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}

	sch, err := sess.GenerateSchema(req.Name, req.Description)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sch)
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	sch, err := sess.Schema()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sch)
}

// handleUpdateSchema patches schema metadata and category settings. A
// format or separator change regenerates the category table.
func (s *Server) handleUpdateSchema(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req struct {
		Name              *string `json:"name,omitempty"`
		Description       *string `json:"description,omitempty"`
		CategoryFormat    *string `json:"categoryFormat,omitempty"`
		CategorySeparator *string `json:"categorySeparator,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}

	_, err = sess.EditSchema(func(b *schema.Builder) error {
		if req.Name != nil {
			b.SetName(*req.Name)
		}
		if req.Description != nil {
			b.SetDescription(*req.Description)
		}
		if req.CategoryFormat != nil {
			if err := b.SetCategoryFormat(schema.CategoryFormat(*req.CategoryFormat)); err != nil {
				return err
			}
		}
		if req.CategorySeparator != nil {
			b.SetCategorySeparator(*req.CategorySeparator)
		}
		return nil
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sch, err := sess.Schema()
	if req.CategoryFormat != nil || req.CategorySeparator != nil {
		sch, err = sess.RegenerateCategories()
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sch)
}

// handleAddSchemaField adds a field. A request carrying only sourceField
// quick-adds an unmapped header as a custom field.
func (s *Server) handleAddSchemaField(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req struct {
		schema.Field
		QuickAdd bool `json:"quickAdd,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}

	sch, err := sess.EditSchema(func(b *schema.Builder) error {
		if req.QuickAdd {
			_, err := b.QuickAddField(req.SourceField)
			return err
		}
		return b.AddField(req.Field)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sch)
}

func (s *Server) handleUpdateSchemaField(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var patch schema.FieldPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}

	sch, err := sess.EditSchema(func(b *schema.Builder) error {
		return b.UpdateField(chi.URLParam(r, "fieldName"), patch)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sch)
}

func (s *Server) handleRemoveSchemaField(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	_, err = sess.EditSchema(func(b *schema.Builder) error {
		return b.RemoveField(chi.URLParam(r, "fieldName"))
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	SourceCategory string `json:"sourceCategory"`
	TargetCategory string `json:"targetCategory"`
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}

	sch, err := sess.EditSchema(func(b *schema.Builder) error {
		return b.AddCategoryMapping(req.SourceCategory, req.TargetCategory)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sch)
}

func (s *Server) handleSetCategoryTarget(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}

	sch, err := sess.EditSchema(func(b *schema.Builder) error {
		return b.SetCategoryTarget(req.SourceCategory, req.TargetCategory)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sch)
}

// handleRemoveCategory deletes the mapping named by the source query
// parameter. Source categories can hold characters that do not survive
// path segments, so they travel in the query string.
func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	source := r.URL.Query().Get("source")
	_, err = sess.EditSchema(func(b *schema.Builder) error {
		return b.RemoveCategoryMapping(source)
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegenerateCategories(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	sch, err := sess.RegenerateCategories()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sch)
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
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

	rec, err := sess.Finalize(r.Context(), req.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session": s.sessionSummary(sess),
		"record":  rec,
	})
}
