// This file contains shared request parsing and response helpers.
package web

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/scidesk/internal/core"
	"github.com/go-chi/chi/v5"
)

// maxJSONBody bounds form record bodies.
const maxJSONBody = 1 << 20

// parseIDParam parses the {id} URL parameter.
func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errInvalidID
	}
	return id, nil
}

// parseIntForm parses an optional non-negative integer form value.
func parseIntForm(r *http.Request, name string) (int, error) {
	val := strings.TrimSpace(r.FormValue(name))
	if val == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return 0, core.ValidationError{Field: name, Value: val, Message: "must be a non-negative number"}
	}
	return n, nil
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// uploadedFile parses a multipart form bounded by the configured upload size
// and returns its "file" part. The caller closes the file.
func (s *Server) uploadedFile(w http.ResponseWriter, r *http.Request) (multipart.File, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		if strings.Contains(err.Error(), "too large") {
			return nil, fmt.Errorf("%w: %v", errFileTooLarge, err)
		}
		return nil, fmt.Errorf("%w: %v", core.ErrNoFile, err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, core.ErrNoFile
	}
	return file, nil
}

// parseExclusions accepts the exclusion list as a JSON array or as a
// comma/newline separated list of addresses.
func parseExclusions(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var list []string
	if strings.HasPrefix(raw, "[") && json.Unmarshal([]byte(raw), &list) == nil {
		return compact(list)
	}
	return compact(strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	}))
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// respondFile sends f as an attachment.
func respondFile(w http.ResponseWriter, f core.File) {
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}

// closeFile closes an uploaded part, ignoring errors.
func closeFile(c io.Closer) {
	_ = c.Close()
}
