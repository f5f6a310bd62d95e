package core

import "errors"

var (
	// ErrNotFound is returned when no record matches the requested id and owner.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned at signup when the identifier or an email is already taken.
	ErrConflict = errors.New("identifier or email already taken")

	// ErrNotRegistered is returned at signup when the identifier is missing
	// from the base information registry.
	ErrNotRegistered = errors.New("identifier not registered in base information")

	// ErrUnknownForm is returned for a form kind the catalog does not define.
	ErrUnknownForm = errors.New("unknown form")

	// ErrFormNotAllowed is returned when a role edits a form kind it does not own.
	ErrFormNotAllowed = errors.New("form not allowed for this role")

	// ErrNoFile is returned when an upload request carries no spreadsheet.
	ErrNoFile = errors.New("no file provided")

	// ErrInvalidSpreadsheet is returned when an upload cannot be read as XLSX.
	ErrInvalidSpreadsheet = errors.New("invalid spreadsheet")

	// ErrUnauthorized is returned for missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller's role may not use an operation.
	ErrForbidden = errors.New("forbidden")
)
