// Package tables registers the form catalog with the core registry.
// Import this package to ensure all forms and upload layouts are registered.
package tables

import (
	_ "embed"
	"fmt"

	"github.com/JonMunkholm/scidesk/internal/core"
	"gopkg.in/yaml.v2"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalog struct {
	Forms   []formEntry   `yaml:"forms"`
	Layouts []layoutEntry `yaml:"layouts"`
}

type formEntry struct {
	Key      string       `yaml:"key"`
	Label    string       `yaml:"label"`
	Sheet    string       `yaml:"sheet"`
	Audience string       `yaml:"audience"`
	Fields   []fieldEntry `yaml:"fields"`
}

type fieldEntry struct {
	Key      string `yaml:"key"`
	Header   string `yaml:"header"`
	Required bool   `yaml:"required"`
}

type layoutEntry struct {
	Name     string              `yaml:"name"`
	Document string              `yaml:"document"`
	Columns  map[string]string   `yaml:"columns"`
	Lists    map[string][]string `yaml:"lists"`
	Tokens   map[string]string   `yaml:"tokens"`
}

func init() {
	c, err := parseCatalog(catalogYAML)
	if err != nil {
		panic(err)
	}
	register(c)
}

func parseCatalog(data []byte) (*catalog, error) {
	var c catalog
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return nil, fmt.Errorf("form catalog: %w", err)
	}

	for i, f := range c.Forms {
		if f.Key == "" || f.Label == "" {
			return nil, fmt.Errorf("form catalog: entry %d: key and label are required", i)
		}
		switch core.Audience(f.Audience) {
		case core.AudienceUser, core.AudienceCoordinator, core.AudienceAdmin:
		default:
			return nil, fmt.Errorf("form catalog: %s: unknown audience %q", f.Key, f.Audience)
		}
		if len(f.Fields) == 0 {
			return nil, fmt.Errorf("form catalog: %s: no fields", f.Key)
		}
		for _, fld := range f.Fields {
			if fld.Key == "" || fld.Header == "" {
				return nil, fmt.Errorf("form catalog: %s: field key and header are required", f.Key)
			}
		}
	}
	for i, l := range c.Layouts {
		if l.Name == "" {
			return nil, fmt.Errorf("form catalog: layout %d: name is required", i)
		}
	}
	return &c, nil
}

func register(c *catalog) {
	for i, f := range c.Forms {
		fields := make([]core.FieldSpec, len(f.Fields))
		for j, fld := range f.Fields {
			fields[j] = core.FieldSpec{Key: fld.Key, Header: fld.Header, Required: fld.Required}
		}
		core.Register(core.FormDefinition{
			Info: core.FormInfo{
				Key:      f.Key,
				Label:    f.Label,
				Sheet:    f.Sheet,
				Audience: core.Audience(f.Audience),
				Order:    i,
			},
			Fields: fields,
		})
	}

	for _, l := range c.Layouts {
		core.RegisterLayout(core.Layout{
			Name:     l.Name,
			Document: l.Document,
			Columns:  l.Columns,
			Lists:    l.Lists,
			Tokens:   l.Tokens,
		})
	}
}
