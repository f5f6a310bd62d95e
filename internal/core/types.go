package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/scidesk/internal/mail"
)

// Audience names which role owns the records of a form kind.
type Audience string

const (
	AudienceUser        Audience = "user"
	AudienceCoordinator Audience = "coordinator"
	AudienceAdmin       Audience = "admin"
)

// Role is the role carried by an authenticated user.
type Role string

const (
	RoleUser        Role = "user"
	RoleCoordinator Role = "coordinator"
	RoleAdmin       Role = "admin"
)

// Audience returns the form audience a role may edit.
func (r Role) Audience() Audience {
	switch r {
	case RoleCoordinator:
		return AudienceCoordinator
	case RoleAdmin:
		return AudienceAdmin
	default:
		return AudienceUser
	}
}

// FieldSpec describes one field of a form kind.
type FieldSpec struct {
	Key      string // Record field key, e.g. "publicationDate"
	Header   string // Spreadsheet column label, e.g. "Data Publicarii"
	Required bool   // Must be present and non-empty on create/update
}

// FormInfo contains display information about a form kind.
type FormInfo struct {
	Key      string   // Unique identifier: "patent"
	Label    string   // Display name: "Brevete"
	Sheet    string   // Sheet name used in exports
	Audience Audience // Role that owns records of this kind
	Order    int      // Position in the export workbook
}

// FormDefinition is one entry of the static variant table.
type FormDefinition struct {
	Info   FormInfo
	Fields []FieldSpec
}

// Field returns the field spec for key.
func (d FormDefinition) Field(key string) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// SheetSpec returns the sheet layout of the definition: headers in field
// order, each mapped to its field key.
func (d FormDefinition) SheetSpec() SheetSpec {
	spec := SheetSpec{
		Name:    d.Info.Sheet,
		Headers: make([]string, len(d.Fields)),
		Fields:  make(map[string]string, len(d.Fields)),
	}
	for i, f := range d.Fields {
		spec.Headers[i] = f.Header
		spec.Fields[f.Header] = f.Key
	}
	return spec
}

// SheetSpec is a sheet's fixed header layout plus its header-to-field mapping.
type SheetSpec struct {
	Name    string
	Headers []string          // Column order of the sheet
	Fields  map[string]string // Header label -> record field key
}

// RawRow is one untyped row read from an uploaded spreadsheet,
// keyed by column header.
type RawRow map[string]any

// Fields holds the values of a form record keyed by field key.
type Fields map[string]any

// Record is one persisted form record.
type Record struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Owner     string    `json:"owner"`
	Fields    Fields    `json:"fields"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User is a registered account.
type User struct {
	ID               int64     `json:"id"`
	Identifier       string    `json:"identifier" validate:"required,max=64"`
	Email            string    `json:"email" validate:"required,email"`
	AlternativeEmail string    `json:"alternativeEmail" validate:"required,email"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Role             Role      `json:"role"`
	CreatedAt        time.Time `json:"createdAt"`
}

// RecordFilter selects records by equality. Empty fields do not filter.
type RecordFilter struct {
	Kind  string
	Owner string
}

// Store is the persistent store collaborator. Records of every kind share
// one generic table keyed by (kind, owner, id).
type Store interface {
	ListRecords(ctx context.Context, f RecordFilter) ([]Record, error)
	GetRecord(ctx context.Context, kind, owner string, id int64) (Record, error)
	CreateRecord(ctx context.Context, rec Record) (Record, error)
	// UpdateRecord replaces the fields of the record matching kind, owner
	// and id. An empty owner matches any owner.
	UpdateRecord(ctx context.Context, rec Record) (Record, error)
	DeleteRecord(ctx context.Context, kind, owner string, id int64) error

	CreateUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	// UserExists reports whether any user already uses one of the values
	// as identifier, email or alternative email.
	UserExists(ctx context.Context, identifier, email, alternativeEmail string) (bool, error)
	ListUsers(ctx context.Context, excludeID int64) ([]User, error)
	DeleteUser(ctx context.Context, id int64) error

	Ping(ctx context.Context) error
	Close() error
}

// ArtifactStore keeps copies of generated files.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Metrics receives pipeline counters.
type Metrics interface {
	EmailSent(kind string, success bool)
	RowsImported(kind string, n int)
	FileExported(kind string)
}

type nopMetrics struct{}

func (nopMetrics) EmailSent(string, bool)   {}
func (nopMetrics) RowsImported(string, int) {}
func (nopMetrics) FileExported(string)      {}

// EmailOutcome is the per-recipient result of a notification batch.
type EmailOutcome struct {
	Email   string `json:"email"`
	Success bool   `json:"success"`
}

// Recipient is one addressee of a notification batch.
type Recipient struct {
	Email       string
	Cc          []string
	Values      map[string]string // Token -> replacement
	Attachments []mail.Attachment
}

// Notification is the shared part of every message of a batch.
type Notification struct {
	Kind     string // Metrics label, e.g. "semester_activity"
	Template string
	Subject  string
	From     string
	Exclude  []string
}

// File is a generated download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeZIP  = "application/zip"
)
