package core

// convert.go turns spreadsheet cell values into the strings and numbers the
// notification and document pipelines need.
//
// Cells arrive as whatever the spreadsheet reader produced (usually the
// formatted string), or as JSON-decoded values when records come back from
// the store. Dates show up in the usual local spellings (01.02.2024,
// 2024-02-01, 1/2/24) and hours sometimes use a decimal comma.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// DisplayDateLayout is the date format used in messages and documents.
const DisplayDateLayout = "02.01.2006"

var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "01-02-06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006-01-02T15:04:05Z07:00", "2006/01/02", "2006.01.02",
		"02.01.2006", "2.1.2006", "01/02/2006", "1/2/2006", "01-02-2006",
		"Jan 2, 2006", "2 Jan 2006",
	}
)

// CellString renders a cell or field value as text. nil becomes "".
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return fmt.Sprint(x)
	}
}

// ParseDate parses the date spellings found in uploaded sheets.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// DisplayDate formats a date cell as dd.mm.yyyy, or returns it unchanged
// when it is not a recognizable date.
func DisplayDate(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format(DisplayDateLayout)
	}
	s := CellString(v)
	if t, ok := ParseDate(s); ok {
		return t.Format(DisplayDateLayout)
	}
	return s
}

// ParseNumber parses an hour count or similar quantity.
// Accepts a decimal comma ("1,5") when no decimal point is present.
func ParseNumber(v any) (float64, bool) {
	if f, ok := v.(float64); ok {
		return f, true
	}
	s := CleanCell(CellString(v))
	if s == "" {
		return 0, false
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, an Excel formula prefix (="...") and quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}
