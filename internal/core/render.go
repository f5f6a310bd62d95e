package core

import (
	"sort"
	"strings"
)

// Render replaces every {{token}} in tmpl with its value from values.
// Tokens without a value stay as they are. Values are inserted verbatim and
// are not scanned again, so a value containing "{{x}}" is left alone.
func Render(tmpl string, values map[string]string) string {
	if len(values) == 0 || !strings.Contains(tmpl, "{{") {
		return tmpl
	}

	tokens := make([]string, 0, len(values))
	for tok := range values {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	pairs := make([]string, 0, 2*len(tokens))
	for _, tok := range tokens {
		pairs = append(pairs, "{{"+tok+"}}", values[tok])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
