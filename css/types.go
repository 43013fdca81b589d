package css

import "strings"

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

func (d Declaration) String() string {
	if d.Important {
		return d.Property + ":" + d.Value + "!important"
	}
	return d.Property + ":" + d.Value
}

// Format serializes declarations back into style attribute value.
func Format(decls []Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, ";")
}
