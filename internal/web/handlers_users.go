package web

import (
	"net/http"

	"github.com/JonMunkholm/scidesk/internal/core"
)

type signupRequest struct {
	Identifier       string `json:"identifier"`
	Email            string `json:"email"`
	AlternativeEmail string `json:"alternativeEmail"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
}

// handleSignup registers a visitor whose identifier is in the registry.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	u, err := s.service.Signup(r.Context(), core.User{
		Identifier:       req.Identifier,
		Email:            req.Email,
		AlternativeEmail: req.AlternativeEmail,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// handleMe returns the caller's account and registry entry.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	info, err := s.service.Information(r.Context(), u)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	users, err := s.service.Users(r.Context(), u)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if users == nil {
		users = []core.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.service.DeleteUser(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
