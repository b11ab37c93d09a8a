package minify

import (
	"path/filepath"
	"testing"
)

func TestBuildOutputPath(t *testing.T) {
	dst := filepath.Join("out", "dir")

	tests := []struct {
		name     string
		rel      string
		template string
		want     string
		wantErr  bool
	}{
		{
			name:     "default template",
			rel:      "site.css",
			template: "{{ .Name }}.min{{ .Ext }}",
			want:     filepath.Join(dst, "site.min.css"),
		},
		{
			name:     "keeps source directories",
			rel:      filepath.Join("themes", "dark", "main.css"),
			template: "{{ .Name }}.min{{ .Ext }}",
			want:     filepath.Join(dst, "themes", "dark", "main.min.css"),
		},
		{
			name:     "subdirectory from template",
			rel:      "site.css",
			template: "fonts/{{ .Name | upper }}{{ .Ext }}",
			want:     filepath.Join(dst, "fonts", "SITE.css"),
		},
		{
			name:     "dir value",
			rel:      filepath.Join("a", "b.css"),
			template: "{{ .Dir | replace \"/\" \"-\" }}-{{ .Name }}{{ .Ext }}",
			want:     filepath.Join(dst, "a", "a-b.css"),
		},
		{
			name:     "parent references dropped",
			rel:      "site.css",
			template: "../../{{ .Name }}{{ .Ext }}",
			want:     filepath.Join(dst, "site.css"),
		},
		{
			name:     "empty expansion",
			rel:      "site.css",
			template: "{{ if false }}x{{ end }}",
			wantErr:  true,
		},
		{
			name:     "bad template",
			rel:      "site.css",
			template: "{{ .Name ",
			wantErr:  true,
		},
		{
			name:     "unknown field",
			rel:      "site.css",
			template: "{{ .Title }}",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildOutputPath(tt.rel, dst, tt.template)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildOutputPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("buildOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewValues(t *testing.T) {
	v := newValues(filepath.Join("x", "y", "style.min.css"))
	if v.Name != "style.min" || v.Ext != ".css" || v.Dir != "x/y" {
		t.Errorf("unexpected values %+v", v)
	}
	if v := newValues("root.css"); v.Dir != "." {
		t.Errorf("Dir = %q, want .", v.Dir)
	}
}
