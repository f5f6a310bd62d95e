package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/scidesk/internal/core"
)

// notifyFunc is one of the service notification use-cases.
type notifyFunc func(ctx context.Context, req core.NotificationRequest) ([]core.EmailOutcome, error)

// handleNotify serves a multipart notification upload: file, template,
// subject, from and except. The response lists one outcome per recipient.
func (s *Server) handleNotify(notify notifyFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := s.uploadedFile(w, r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		defer closeFile(file)

		outcomes, err := notify(r.Context(), core.NotificationRequest{
			Template: r.FormValue("template"),
			Subject:  r.FormValue("subject"),
			From:     r.FormValue("from"),
			Exclude:  parseExclusions(r.FormValue("except")),
			File:     file,
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if outcomes == nil {
			outcomes = []core.EmailOutcome{}
		}
		writeJSON(w, http.StatusOK, outcomes)
	}
}
