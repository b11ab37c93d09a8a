package css

import "testing"

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "single url", input: "url(a.woff2)", want: "url(a.woff2)"},
		{name: "list with hints", input: `local("Foo Bold"),url(b.otf) format("opentype")`, want: `local("Foo Bold"),url(b.otf) format("opentype")`},
		{name: "whitespace collapsed", input: "  url(a.woff)   format('woff')  ", want: "url(a.woff) format('woff')"},
		{name: "comments dropped", input: "url(a.woff) /* note */ format('woff')", want: "url(a.woff) format('woff')"},
		{name: "semicolon inside function", input: "url(data:font/woff2;base64,AAAA)", want: "url(data:font/woff2;base64,AAAA)"},
		{name: "empty", input: "", wantErr: true},
		{name: "only whitespace", input: "   ", wantErr: true},
		{name: "unclosed function", input: `local("Foo"`, wantErr: true},
		{name: "stray closing paren", input: "url(a.woff))", wantErr: true},
		{name: "block", input: "url(a.woff) { }", wantErr: true},
		{name: "statement terminator", input: "url(a.woff); color: red", wantErr: true},
		{name: "bad string", input: "local(\"Foo\n\")", wantErr: true},
		{name: "mismatched brackets", input: "local([x)]", wantErr: true},
		{name: "trailing important", input: "url(a.woff) ! IMPORTANT", want: "url(a.woff) ! IMPORTANT"},
		{name: "dangling bang", input: "url(a.woff) !", wantErr: true},
		{name: "bang without important", input: "url(a.woff) !default", wantErr: true},
		{name: "value after important", input: "url(a.woff) !important url(b.woff)", wantErr: true},
		{name: "bang inside function", input: "local(!important)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseValue(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseValue(%q) expected error, got %q", tt.input, v)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseValue(%q) error = %v", tt.input, err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("ParseValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRuleList_RemoveWhileIterating(t *testing.T) {
	a := NewDeclaration("src", "url(a.woff)")
	b := NewDeclaration("font-family", "Foo")
	c := NewDeclaration("src", "url(c.woff)")
	list := NewRuleList(a, b, c)

	var seen int
	for n := range list.All() {
		seen++
		if n.Property == "src" {
			list.Remove(n)
		}
	}
	if seen != 3 {
		t.Errorf("visited %d nodes, want 3", seen)
	}
	if list.Len() != 1 || list.At(0) != b {
		t.Errorf("expected only font-family to remain, got %d nodes", list.Len())
	}
	if list.Remove(a) {
		t.Error("removing already removed node should report false")
	}
}

func TestNode_LastDeclaration(t *testing.T) {
	rule := NewAtRule("@font-face", "", true,
		NewDeclaration("src", "url(first.woff)"),
		NewDeclaration("SRC", "url(second.woff)"),
	)
	if rule.Name != "font-face" {
		t.Errorf("name = %q, want font-face", rule.Name)
	}
	d := rule.LastDeclaration("src")
	if d == nil || d.Value.String() != "url(second.woff)" {
		t.Errorf("unexpected last declaration %v", d)
	}
	if (&Node{Kind: AtRuleNode, Name: "font-face"}).LastDeclaration("src") != nil {
		t.Error("expected nil for block-less node")
	}
}
