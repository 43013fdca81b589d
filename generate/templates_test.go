package generate

import (
	"strings"
	"testing"

	"trigo/config"
)

func TestExpandTemplate(t *testing.T) {
	values := Values{Count: 2, Output: "out/icons.ts", Names: []string{"close", "arrowUp"}}
	tests := []struct {
		name    string
		field   string
		want    string
		wantErr bool
	}{
		{name: "empty", field: "", want: ""},
		{name: "plain", field: "// generated", want: "// generated"},
		{name: "values", field: "// {{ .Count }} icons in {{ base .Output }}", want: "// 2 icons in icons.ts"},
		{name: "context", field: "{{ .Context }}", want: "header"},
		{name: "sprig", field: `export default { {{ join ", " .Names }} }`, want: "export default { close, arrowUp }"},
		{name: "range", field: "{{ range .Names }}{{ . | upper }};{{ end }}", want: "CLOSE;ARROWUP;"},
		{name: "parse error", field: "{{ .Count ", wantErr: true},
		{name: "exec error", field: "{{ .Missing }}", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandTemplate(config.HeaderTemplateFieldName, tt.field, values)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expandTemplate() expected error, got %q", got)
				}
				if !strings.Contains(err.Error(), "header") {
					t.Errorf("error %q does not name template field", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expandTemplate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name           string
		texts          []string
		header, footer string
		want           string
	}{
		{name: "nothing", want: ""},
		{name: "single", texts: []string{"a"}, want: "a"},
		{name: "joined", texts: []string{"a", "b", "c"}, want: "a\n\nb\n\nc"},
		{name: "header", texts: []string{"a", "b"}, header: "h", want: "h\n\na\n\nb"},
		{name: "footer", texts: []string{"a"}, footer: "f", want: "a\n\nf"},
		{name: "both", texts: []string{"a"}, header: "h", footer: "f", want: "h\n\na\n\nf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Assemble(tt.texts, tt.header, tt.footer); got != tt.want {
				t.Errorf("Assemble() = %q, want %q", got, tt.want)
			}
		})
	}
}
