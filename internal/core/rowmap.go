package core

// MapRow converts a spreadsheet row into record fields using the sheet's
// header-to-field mapping. Headers missing from the row leave the field unset,
// headers the sheet does not declare are ignored, and values are assigned as
// read. MapRow has no side effects.
func MapRow(row RawRow, spec SheetSpec) Fields {
	fields := make(Fields, len(spec.Headers))
	for _, header := range spec.Headers {
		key, ok := spec.Fields[header]
		if !ok {
			continue
		}
		if v, present := row[header]; present {
			fields[key] = v
		}
	}
	return fields
}

// MapRows applies MapRow to every row, keeping order.
func MapRows(rows []RawRow, spec SheetSpec) []Fields {
	out := make([]Fields, len(rows))
	for i, row := range rows {
		out[i] = MapRow(row, spec)
	}
	return out
}
