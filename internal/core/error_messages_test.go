package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/scidesk/internal/mail"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error", nil, ""},
		{"unknown form", fmt.Errorf("list forms: %w", ErrUnknownForm), "FORM001"},
		{"form not allowed", ErrFormNotAllowed, "FORM002"},
		{"unknown layout", &UnknownLayoutError{Name: "faz"}, "FORM003"},
		{"signup conflict", ErrConflict, "USR001"},
		{"not registered", ErrNotRegistered, "USR002"},
		{"invalid email", ValidationErrors{{Field: "email", Message: "invalid email address"}}, "USR003"},
		{"not found", fmt.Errorf("update patent 7: %w", ErrNotFound), "DATA001"},
		{"required field", ValidationErrors{{Field: "title", Message: "required field is empty"}}, "DATA002"},
		{"no file", ErrNoFile, "FILE001"},
		{"bad spreadsheet", fmt.Errorf("%w: zip: not a valid zip file", ErrInvalidSpreadsheet), "FILE002"},
		{"body too large", errors.New("http: request body too large"), "FILE003"},
		{"blank recipient", mail.ErrNoRecipient, "MAIL001"},
		{"limiter", ErrTooManyUploads, "UPL001"},
		{"deadline before timeout", errors.New("context deadline exceeded (timeout)"), "UPL003"},
		{"unauthorized", ErrUnauthorized, "AUTH001"},
		{"expired token", errors.New("Token is expired"), "AUTH001"},
		{"forbidden", ErrForbidden, "AUTH002"},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: users.email"), "DB001"},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), "DB002"},
		{"unknown", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err).Code; got != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrNoFile)
	want := "No file was selected (Code: FILE001). Choose an .xlsx file to upload"
	if got != want {
		t.Errorf("FormatUserError = %q, want %q", got, want)
	}
}

func TestErrorPatternsHaveCodes(t *testing.T) {
	for _, ep := range errorPatterns {
		if ep.msg.Code == "" || ep.msg.Message == "" || ep.msg.Action == "" {
			t.Errorf("pattern %q has an incomplete message: %+v", ep.pattern, ep.msg)
		}
	}
}
