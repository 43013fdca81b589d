package generate

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"trigo/config"
)

// Values is a struct that holds variables we make available for header and
// footer expansion.
type Values struct {
	Context string
	Count   int
	Output  string
	Names   []string
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	if len(field) == 0 {
		return "", nil
	}
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values.Context = string(name)

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", fmt.Errorf("unable to expand template field %s: %w", name, err)
	}
	return buf.String(), nil
}

// Assemble joins generated icons, header and footer are added when not empty.
func Assemble(texts []string, header, footer string) string {
	var b bytes.Buffer
	if len(header) > 0 {
		b.WriteString(header)
		b.WriteString(Separator)
	}
	for i, t := range texts {
		if i > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(t)
	}
	if len(footer) > 0 {
		b.WriteString(Separator)
		b.WriteString(footer)
	}
	return b.String()
}
