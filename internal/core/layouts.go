package core

// Upload layout names registered by the catalog.
const (
	LayoutSemesterActivity   = "semester_activity"
	LayoutReportAnnouncement = "report_announcement"
	LayoutFAZ                = "faz"
	LayoutOrganization       = "organization"
)

// Layout maps the semantic columns of one upload kind to the headers used in
// the uploaded sheet, and names the template tokens the upload fills.
type Layout struct {
	Name     string
	Document string              // Document kind used in archive entry names
	Columns  map[string]string   // Role -> column header
	Lists    map[string][]string // Role -> several column headers
	Tokens   map[string]string   // Role -> template token
}

// Column returns the header for role. A role without a mapping is its own header.
func (l Layout) Column(role string) string {
	if h, ok := l.Columns[role]; ok {
		return h
	}
	return role
}

// Token returns the template token for role, defaulting to the role name.
func (l Layout) Token(role string) string {
	if tok, ok := l.Tokens[role]; ok {
		return tok
	}
	return role
}

// Value reads role from row as text.
func (l Layout) Value(row RawRow, role string) string {
	return CellString(row[l.Column(role)])
}

// Values reads every non-empty column of a list role, in declared order.
func (l Layout) Values(row RawRow, role string) []string {
	var out []string
	for _, h := range l.Lists[role] {
		if v := CellString(row[h]); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func requireLayout(name string) (Layout, error) {
	l, ok := GetLayout(name)
	if !ok {
		return Layout{}, &UnknownLayoutError{Name: name}
	}
	return l, nil
}

// UnknownLayoutError is returned when the catalog lacks an upload layout.
type UnknownLayoutError struct {
	Name string
}

func (e *UnknownLayoutError) Error() string {
	return "unknown layout: " + e.Name
}

// Column roles used by the upload layouts.
const (
	ColEmail            = "email"
	ColActivity         = "activity"
	ColHours            = "hours"
	ColCoordinatorEmail = "coordinatorEmail"
	ColStudentName      = "studentName"
	ColReportType       = "reportType"
	ColReportTitle      = "reportTitle"
	ColPresentationDate = "presentationDate"
	ColCoordinator      = "coordinator"
	ColCommission       = "commission" // list role
	ColProfessor        = "professor"
	ColFunction         = "function"
	ColDay              = "day"
	ColInterval         = "interval"
	ColDiscipline       = "discipline"
	ColActivityType     = "activityType"
	ColRoom             = "room"
)
