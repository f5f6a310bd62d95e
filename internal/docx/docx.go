// Package docx writes minimal WordprocessingML documents: headings,
// paragraphs and simple bordered tables. The output opens in Word and
// LibreOffice and contains only the three parts a document needs.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`</Types>`

	relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`</Relationships>`

	documentOpen = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

	// A4 portrait, 2cm margins.
	documentClose = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
		`<w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134" w:header="708" w:footer="708" w:gutter="0"/>` +
		`</w:sectPr></w:body></w:document>`
)

// Align is a paragraph justification.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
	AlignBoth   Align = "both"
)

// Style controls the look of a paragraph.
type Style struct {
	Bold  bool
	Size  int // Half-points; 0 keeps the default
	Align Align
}

// Document is a document under construction. The zero value is empty and ready to use.
type Document struct {
	body bytes.Buffer
}

// New creates an empty document.
func New() *Document {
	return &Document{}
}

// Heading adds a bold, centered title line.
func (d *Document) Heading(text string) {
	d.Paragraph(text, Style{Bold: true, Size: 28, Align: AlignCenter})
}

// Paragraph adds one paragraph. Newlines in text become line breaks.
func (d *Document) Paragraph(text string, style Style) {
	d.body.WriteString("<w:p>")
	if style.Align != "" {
		fmt.Fprintf(&d.body, `<w:pPr><w:jc w:val="%s"/></w:pPr>`, style.Align)
	}
	writeRun(&d.body, text, style)
	d.body.WriteString("</w:p>")
}

// Text adds a plain left-aligned paragraph.
func (d *Document) Text(text string) {
	d.Paragraph(text, Style{})
}

// Field adds a "label: value" line with the label in bold.
func (d *Document) Field(label, value string) {
	d.body.WriteString("<w:p>")
	writeRun(&d.body, label+": ", Style{Bold: true})
	writeRun(&d.body, value, Style{})
	d.body.WriteString("</w:p>")
}

// Blank adds an empty paragraph.
func (d *Document) Blank() {
	d.body.WriteString("<w:p/>")
}

// textWidth is the usable width of an A4 page with default margins, in twips.
const textWidth = 9638

// Table adds a bordered table with a bold header row and equal column widths.
// Rows shorter than the header are padded with empty cells. A table without
// columns is not written.
func (d *Document) Table(header []string, rows [][]string) {
	if len(header) == 0 {
		return
	}
	d.body.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/><w:tblBorders>`)
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		fmt.Fprintf(&d.body, `<w:%s w:val="single" w:sz="4" w:space="0" w:color="000000"/>`, side)
	}
	d.body.WriteString(`</w:tblBorders></w:tblPr><w:tblGrid>`)
	for range header {
		fmt.Fprintf(&d.body, `<w:gridCol w:w="%d"/>`, textWidth/len(header))
	}
	d.body.WriteString(`</w:tblGrid>`)

	d.tableRow(header, len(header), true)
	for _, row := range rows {
		d.tableRow(row, len(header), false)
	}
	d.body.WriteString("</w:tbl>")
	// Word requires a paragraph after a table at the end of a body.
	d.Blank()
}

func (d *Document) tableRow(cells []string, width int, bold bool) {
	d.body.WriteString("<w:tr>")
	for i := 0; i < width; i++ {
		var text string
		if i < len(cells) {
			text = cells[i]
		}
		d.body.WriteString("<w:tc><w:p>")
		writeRun(&d.body, text, Style{Bold: bold})
		d.body.WriteString("</w:p></w:tc>")
	}
	d.body.WriteString("</w:tr>")
}

func writeRun(buf *bytes.Buffer, text string, style Style) {
	buf.WriteString("<w:r>")
	if style.Bold || style.Size > 0 {
		buf.WriteString("<w:rPr>")
		if style.Bold {
			buf.WriteString("<w:b/>")
		}
		if style.Size > 0 {
			fmt.Fprintf(buf, `<w:sz w:val="%d"/>`, style.Size)
		}
		buf.WriteString("</w:rPr>")
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			buf.WriteString("<w:br/>")
		}
		buf.WriteString(`<w:t xml:space="preserve">`)
		xml.EscapeText(buf, []byte(line))
		buf.WriteString("</w:t>")
	}
	buf.WriteString("</w:r>")
}

// WriteTo writes the document as a .docx package.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(relsXML)},
		{"word/document.xml", d.documentXML()},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return cw.n, fmt.Errorf("docx: create %s: %w", p.name, err)
		}
		if _, err := f.Write(p.data); err != nil {
			return cw.n, fmt.Errorf("docx: write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("docx: close: %w", err)
	}
	return cw.n, nil
}

// Bytes returns the document as a .docx package.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Document) documentXML() []byte {
	out := make([]byte, 0, len(documentOpen)+d.body.Len()+len(documentClose))
	out = append(out, documentOpen...)
	out = append(out, d.body.Bytes()...)
	return append(out, documentClose...)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
