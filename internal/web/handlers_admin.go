package web

import (
	"net/http"

	"github.com/JonMunkholm/scidesk/internal/core"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleBaseInformation(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.BaseInformation(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if recs == nil {
		recs = []core.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleImportBaseInformation loads registry rows from an uploaded XLSX.
func (s *Server) handleImportBaseInformation(w http.ResponseWriter, r *http.Request) {
	file, err := s.uploadedFile(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer closeFile(file)

	n, err := s.service.ImportBaseInformation(r.Context(), file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"created": n})
}

func (s *Server) handleDeleteBaseInformation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.service.DeleteBaseInformation(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportForms downloads every record of every form as one workbook.
func (s *Server) handleExportForms(w http.ResponseWriter, r *http.Request) {
	f, err := s.service.ExportForms(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondFile(w, f)
}

// handleFormTemplate downloads the header-only workbook of a form.
func (s *Server) handleFormTemplate(w http.ResponseWriter, r *http.Request) {
	f, err := s.service.FormTemplate(chi.URLParam(r, "kind"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondFile(w, f)
}
