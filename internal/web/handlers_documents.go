package web

import (
	"net/http"
)

// handleFAZ builds one FAZ document per professor from a timetable upload.
// ignoreStart and ignoreEnd drop leading and trailing data rows.
func (s *Server) handleFAZ(w http.ResponseWriter, r *http.Request) {
	file, err := s.uploadedFile(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer closeFile(file)

	ignoreStart, err := parseIntForm(r, "ignoreStart")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ignoreEnd, err := parseIntForm(r, "ignoreEnd")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	f, err := s.service.FAZ(r.Context(), file, ignoreStart, ignoreEnd)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondFile(w, f)
}

func (s *Server) handleVerbalProcess(w http.ResponseWriter, r *http.Request) {
	file, err := s.uploadedFile(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer closeFile(file)

	f, err := s.service.VerbalProcess(r.Context(), file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondFile(w, f)
}
