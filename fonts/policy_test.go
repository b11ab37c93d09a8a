package fonts

import (
	"testing"
)

func src(fragment, format, contentType string) *Source {
	return &Source{Fragment: fragment, Format: format, ContentType: contentType}
}

func fragments(list []*Source) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.Fragment)
	}
	return out
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name       string
		candidates []*Source
		winner     string
		kept       []string
	}{
		{
			name: "woff2 beats truetype",
			candidates: []*Source{
				src("url(a.ttf)", "truetype", ""),
				src("url(a.woff2)", "woff2", ""),
			},
			winner: "url(a.woff2)",
			kept:   []string{"url(a.woff2)"},
		},
		{
			name: "variations first",
			candidates: []*Source{
				src("url(a.woff2)", "woff2", ""),
				src("url(v.woff2)", "woff2-variations", ""),
			},
			winner: "url(v.woff2)",
			kept:   []string{"url(v.woff2)"},
		},
		{
			name: "format before content type",
			candidates: []*Source{
				src("url(blob)", "", "font/woff2"),
				src("url(a.woff)", "woff", ""),
			},
			winner: "url(a.woff)",
			kept:   []string{"url(a.woff)"},
		},
		{
			name: "content type fallback",
			candidates: []*Source{
				src("url(a.eot)", "eot", ""),
				src("url(blob)", "", "application/x-font-woff"),
			},
			winner: "url(blob)",
			kept:   []string{"url(blob)"},
		},
		{
			name: "local kept in order",
			candidates: []*Source{
				src("url(b.otf)", "opentype", ""),
				src(`local("Foo Bold")`, "", ""),
				src("url(b.svg)", "svg", ""),
			},
			winner: "url(b.otf)",
			kept:   []string{"url(b.otf)", `local("Foo Bold")`},
		},
		{
			name: "truetype tier",
			candidates: []*Source{
				src("url(a.otf)", "opentype", ""),
				src("url(a.ttf)", "", "font/ttf"),
			},
			winner: "url(a.ttf)",
			kept:   []string{"url(a.ttf)"},
		},
		{
			name: "empty data never wins",
			candidates: []*Source{
				src("url(data:,)", "woff2", ""),
				src("url(a.ttf)", "truetype", ""),
			},
			winner: "url(a.ttf)",
			kept:   []string{"url(a.ttf)"},
		},
		{
			name: "fail open",
			candidates: []*Source{
				src("url(a.svg)", "svg", "image/svg+xml"),
				src("url(data:,)", "", ""),
			},
			kept: []string{"url(a.svg)", "url(data:,)"},
		},
		{
			name: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, winner := Select(tt.candidates)
			switch {
			case tt.winner == "" && winner != nil:
				t.Errorf("unexpected winner %s", winner)
			case tt.winner != "" && (winner == nil || winner.Fragment != tt.winner):
				t.Errorf("winner = %v, want %s", winner, tt.winner)
			}
			got := fragments(kept)
			if len(got) != len(tt.kept) {
				t.Fatalf("kept = %q, want %q", got, tt.kept)
			}
			for i := range got {
				if got[i] != tt.kept[i] {
					t.Errorf("kept = %q, want %q", got, tt.kept)
					break
				}
			}
		})
	}
}

// Whatever the order of candidates is, woff2 source must win over truetype
// and opentype ones.
func TestSelect_PriorityInvariant(t *testing.T) {
	all := []*Source{
		src("url(a.otf)", "opentype", ""),
		src("url(a.ttf)", "truetype", ""),
		src("url(a.eot)", "embedded-opentype", ""),
		src("url(a.woff2)", "woff2", ""),
	}
	for shift := range all {
		candidates := append(append([]*Source{}, all[shift:]...), all[:shift]...)
		_, winner := Select(candidates)
		if winner == nil || winner.Format != "woff2" {
			t.Errorf("rotation %d: winner = %v, want woff2 source", shift, winner)
		}
	}
}
