package minify

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"fontmin/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Name string // stylesheet file name without extension
	Ext  string // stylesheet file extension including dot
	Dir  string // slash separated directory of stylesheet relative to source root, "." for root
}

func newValues(rel string) Values {
	base := filepath.Base(rel)
	ext := filepath.Ext(base)
	return Values{
		Name: strings.TrimSuffix(base, ext),
		Ext:  ext,
		Dir:  filepath.ToSlash(filepath.Dir(rel)),
	}
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return "", fmt.Errorf("unable to execute template field %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
