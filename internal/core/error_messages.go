package core

// error_messages.go maps technical errors to messages an administrator can act
// on. Each message carries a code that can be quoted to support.
//
// # Error Codes Reference
//
// Form errors:
//
//	FORM001 - Unknown form kind          (pattern "unknown form")
//	FORM002 - Form not allowed for role  (pattern "form not allowed")
//	FORM003 - Upload layout missing      (pattern "unknown layout")
//
// Account errors:
//
//	USR001 - Identifier or email taken   (pattern "already taken")
//	USR002 - Identifier not registered   (pattern "not registered")
//	USR003 - Invalid email address       (pattern "invalid email")
//	USR004 - Value too long              (pattern "too long")
//
// Record errors:
//
//	DATA001 - Record not found           (pattern "record not found")
//	DATA002 - Required field is empty    (pattern "required field")
//	DATA003 - Invalid date               (pattern "invalid date")
//
// File errors:
//
//	FILE001 - No file provided           (pattern "no file provided")
//	FILE002 - Not a readable XLSX file   (pattern "invalid spreadsheet")
//	FILE003 - File too large             (patterns "file too large", "request body too large")
//
// Mail errors:
//
//	MAIL001 - Recipient address missing  (pattern "no recipient")
//	MAIL002 - Mail provider rejected     (pattern "sendgrid")
//
// Upload errors:
//
//	UPL001 - Too many batches running    (pattern "too many uploads")
//	UPL002 - Request cancelled           (pattern "context canceled")
//	UPL003 - Request timed out           (pattern "context deadline exceeded")
//
// Authentication errors:
//
//	AUTH001 - Missing or invalid token   (patterns "unauthorized", "token is expired")
//	AUTH002 - Role may not do this       (pattern "forbidden")
//
// Database errors:
//
//	DB001 - Duplicate value              (patterns "duplicate key", "unique constraint")
//	DB002 - Database unreachable         (pattern "connection refused")
//	DB003 - Database timeout             (pattern "timeout")
//
// Rate limiting:
//
//	RATE001 - Too many requests          (pattern "rate limit")
//
// ERR000 is the fallback; the technical error is in the server log under the
// same request_id.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Forms
	{"unknown form", UserMessage{"This form does not exist", "Check the form name", "FORM001"}},
	{"form not allowed", UserMessage{"Your role cannot edit this form", "Ask an administrator for access", "FORM002"}},
	{"unknown layout", UserMessage{"This upload type is not configured", "Contact support", "FORM003"}},

	// Accounts
	{"already taken", UserMessage{"The identifier or one of the emails is already used", "Sign in with the existing account", "USR001"}},
	{"not registered", UserMessage{"Your identifier is not in the student registry", "Ask the secretariat to add you", "USR002"}},
	{"invalid email", UserMessage{"An email address is not valid", "Check the email fields", "USR003"}},
	{"too long", UserMessage{"A value is too long", "Shorten the highlighted field", "USR004"}},

	// Records
	{"record not found", UserMessage{"The record was not found", "Refresh the page and try again", "DATA001"}},
	{"required field", UserMessage{"A required field is empty", "Fill in every required field", "DATA002"}},
	{"invalid date", UserMessage{"A date could not be read", "Use DD.MM.YYYY or YYYY-MM-DD", "DATA003"}},

	// Files
	{"no file provided", UserMessage{"No file was selected", "Choose an .xlsx file to upload", "FILE001"}},
	{"invalid spreadsheet", UserMessage{"The file is not a readable spreadsheet", "Save it as .xlsx and upload again", "FILE002"}},
	{"file too large", UserMessage{"The file is too large", "Split it into smaller files", "FILE003"}},
	{"request body too large", UserMessage{"The file is too large", "Split it into smaller files", "FILE003"}},

	// Mail
	{"no recipient", UserMessage{"A row has no email address", "Fill in the Email column", "MAIL001"}},
	{"sendgrid", UserMessage{"The mail provider rejected the message", "Check the sender address and try again", "MAIL002"}},

	// Uploads (before the generic database timeout)
	{"too many uploads", UserMessage{"Other batches are still running", "Wait a moment and try again", "UPL001"}},
	{"context canceled", UserMessage{"The request was cancelled", "Please try again", "UPL002"}},
	{"context deadline exceeded", UserMessage{"The request timed out", "Try a smaller file", "UPL003"}},

	// Authentication
	{"unauthorized", UserMessage{"You are not signed in", "Sign in and try again", "AUTH001"}},
	{"token is expired", UserMessage{"Your session has expired", "Sign in again", "AUTH001"}},
	{"forbidden", UserMessage{"You are not allowed to do this", "Ask an administrator for access", "AUTH002"}},

	// Database
	{"duplicate key", UserMessage{"This value already exists", "Check for duplicate entries", "DB001"}},
	{"unique constraint", UserMessage{"This value already exists", "Check for duplicate entries", "DB001"}},
	{"connection refused", UserMessage{"Unable to connect to the database", "Please try again in a few moments", "DB002"}},
	{"timeout", UserMessage{"The operation timed out", "Please try again later", "DB003"}},

	{"invalid request body", UserMessage{"The request could not be read", "Send the form fields as a JSON object", "REQ001"}},
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns the zero UserMessage for a nil error and ERR000 when nothing matches.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
