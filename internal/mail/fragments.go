package mail

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// ActivityLine is one timetable entry listed in a semester activity email.
type ActivityLine struct {
	Activity string
	Hours    string
}

// ActivityList renders one "<activity> <hours> ore/saptamana <br>" line per entry.
// Cell text is HTML-escaped; the surrounding markup is not.
func ActivityList(lines []ActivityLine) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, l := range lines {
			line := templ.EscapeString(l.Activity) + " " + templ.EscapeString(l.Hours) + " ore/saptamana <br>"
			if _, err := io.WriteString(w, line); err != nil {
				return err
			}
		}
		return nil
	})
}

// NameList renders names separated by <br>.
func NameList(names []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for i, n := range names {
			if i > 0 {
				if _, err := io.WriteString(w, "<br>"); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, templ.EscapeString(n)); err != nil {
				return err
			}
		}
		return nil
	})
}

// RenderFragment renders c to a string.
func RenderFragment(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
