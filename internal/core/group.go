package core

// Group is one NotificationBatch entry: every row sharing a key, in input order.
type Group struct {
	Key  string
	Rows []RawRow
}

// GroupRows partitions rows by the text of column. Keys keep the order in
// which they are first seen and rows keep their input order within a group.
// Keys are compared exactly, without case folding or trimming.
//
// Rows whose key cell is absent or empty are collected in a single group with
// an empty Key, placed where the first such row appeared, so the sum of group
// sizes always equals len(rows).
func GroupRows(rows []RawRow, column string) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, row := range rows {
		key := CellString(row[column])
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}

	return groups
}
