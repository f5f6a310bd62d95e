package web

import (
	"net/http"

	"github.com/JonMunkholm/scidesk/internal/core"
	"github.com/go-chi/chi/v5"
)

// formsResponse lists the forms the caller may edit together with the
// caller's records of each.
type formsResponse struct {
	Forms   []core.FormInfo          `json:"forms"`
	Records map[string][]core.Record `json:"records"`
}

// handleAllForms returns every editable form with the caller's records.
func (s *Server) handleAllForms(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	records, err := s.service.AllForms(r.Context(), u)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, formsResponse{Forms: s.service.FormInfos(u.Role), Records: records})
}

func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	records, err := s.service.ListForms(r.Context(), u, chi.URLParam(r, "kind"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if records == nil {
		records = []core.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var fields core.Fields
	if err := decodeJSON(w, r, &fields); err != nil {
		s.fail(w, r, err)
		return
	}

	rec, err := s.service.CreateForm(r.Context(), u, chi.URLParam(r, "kind"), fields)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := parseIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var fields core.Fields
	if err := decodeJSON(w, r, &fields); err != nil {
		s.fail(w, r, err)
		return
	}

	rec, err := s.service.UpdateForm(r.Context(), u, chi.URLParam(r, "kind"), id, fields)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := parseIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.service.DeleteForm(r.Context(), u, chi.URLParam(r, "kind"), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
