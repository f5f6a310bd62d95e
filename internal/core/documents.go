package core

// documents.go fills the fixed document layouts (FAZ timetables and report
// verbal processes) and packs the generated files into one ZIP archive.

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/scidesk/internal/docx"
)

// DocumentItem is one generated document waiting to be archived.
type DocumentItem struct {
	Kind string // e.g. "FAZ", "Proces verbal"
	Role string // e.g. professor function or report type
	Name string // person the document is about
	Doc  *docx.Document
}

// FileName returns "<kind> <role> <name>.docx". Empty parts are skipped and
// path separators are replaced so the name stays a single archive entry.
func (it DocumentItem) FileName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{it.Kind, it.Role, it.Name} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	name := strings.Join(parts, " ")
	if name == "" {
		name = "document"
	}
	return pathReplacer.Replace(name) + ".docx"
}

var pathReplacer = strings.NewReplacer("/", "-", `\`, "-")

// AssembleArchive writes every item as a DOCX entry of a ZIP archive, in item
// order. Repeated entry names get a " (n)" suffix. Zero items produce a valid
// empty archive.
func AssembleArchive(items []DocumentItem) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	used := make(map[string]int, len(items))

	for _, it := range items {
		name := uniqueName(it.FileName(), used)
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("archive: create %q: %w", name, err)
		}
		if _, err := it.Doc.WriteTo(w); err != nil {
			return nil, fmt.Errorf("archive: write %q: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("archive: close: %w", err)
	}
	return buf.Bytes(), nil
}

func uniqueName(name string, used map[string]int) string {
	used[name]++
	n := used[name]
	if n == 1 {
		return name
	}
	base := strings.TrimSuffix(name, ".docx")
	for {
		candidate := fmt.Sprintf("%s (%d).docx", base, n)
		if used[candidate] == 0 {
			used[candidate] = 1
			return candidate
		}
		n++
	}
}

// TrimRows drops skipStart leading and skipEnd trailing rows.
// Negative counts are treated as zero.
func TrimRows(rows []RawRow, skipStart, skipEnd int) []RawRow {
	skipStart = max(skipStart, 0)
	skipEnd = max(skipEnd, 0)
	if skipStart+skipEnd >= len(rows) {
		return nil
	}
	return rows[skipStart : len(rows)-skipEnd]
}

// FAZDocuments builds one daily activity sheet per professor from timetable
// rows. Rows without a professor name are skipped.
func FAZDocuments(layout Layout, rows []RawRow) []DocumentItem {
	var items []DocumentItem
	for _, g := range GroupRows(rows, layout.Column(ColProfessor)) {
		if g.Key == "" {
			continue
		}
		function := layout.Value(g.Rows[0], ColFunction)

		d := docx.New()
		d.Heading("FISA DE ACTIVITATE ZILNICA")
		d.Blank()
		d.Field("Nume si prenume", g.Key)
		d.Field("Functia didactica", function)
		d.Blank()

		var total float64
		table := make([][]string, 0, len(g.Rows))
		for _, row := range g.Rows {
			hours := layout.Value(row, ColHours)
			if h, ok := ParseNumber(row[layout.Column(ColHours)]); ok {
				total += h
			}
			table = append(table, []string{
				layout.Value(row, ColDay),
				layout.Value(row, ColInterval),
				layout.Value(row, ColDiscipline),
				layout.Value(row, ColActivityType),
				layout.Value(row, ColRoom),
				hours,
			})
		}
		d.Table([]string{"Ziua", "Interval orar", "Disciplina", "Tip activitate", "Sala", "Ore"}, table)
		d.Field("Total ore", strconv.FormatFloat(total, 'f', -1, 64))
		d.Blank()
		d.Paragraph("Semnatura,", docx.Style{Align: docx.AlignRight})

		items = append(items, DocumentItem{
			Kind: layout.Document,
			Role: function,
			Name: g.Key,
			Doc:  d,
		})
	}
	return items
}

// VerbalProcessDocuments builds one verbal process per report announcement row.
func VerbalProcessDocuments(layout Layout, rows []RawRow) []DocumentItem {
	items := make([]DocumentItem, 0, len(rows))
	for _, row := range rows {
		student := layout.Value(row, ColStudentName)
		reportType := layout.Value(row, ColReportType)

		d := docx.New()
		d.Heading("PROCES VERBAL")
		d.Paragraph("de sustinere a raportului "+reportType, docx.Style{Align: docx.AlignCenter})
		d.Blank()
		d.Field("Student", student)
		d.Field("Titlul raportului", layout.Value(row, ColReportTitle))
		d.Field("Data prezentarii", DisplayDate(row[layout.Column(ColPresentationDate)]))
		d.Field("Coordonator", layout.Value(row, ColCoordinator))
		d.Blank()

		members := layout.Values(row, ColCommission)
		table := make([][]string, len(members))
		for i, m := range members {
			table[i] = []string{strconv.Itoa(i + 1), m, ""}
		}
		d.Paragraph("Comisia de evaluare", docx.Style{Bold: true})
		d.Table([]string{"Nr.", "Nume si prenume", "Semnatura"}, table)
		d.Field("Calificativ", "")

		items = append(items, DocumentItem{
			Kind: layout.Document,
			Role: reportType,
			Name: student,
			Doc:  d,
		})
	}
	return items
}
