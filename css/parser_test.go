package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"fontmin/css"
)

func parse(t *testing.T, text string) *css.Stylesheet {
	t.Helper()
	return css.NewParser(zap.NewNop()).Parse([]byte(text), t.Name())
}

func TestParser_FontFace(t *testing.T) {
	sheet := parse(t, `@font-face {
  font-family: "Foo";
  src: url(a.woff2) format("woff2"), url(a.ttf) format("truetype");
  font-weight: bold;
}`)

	if sheet.Rules.Len() != 1 {
		t.Fatalf("expected 1 rule, got %d", sheet.Rules.Len())
	}
	rule := sheet.Rules.At(0)
	if !rule.IsAtRule("font-face") {
		t.Fatalf("expected @font-face, got %s %q", rule.Kind, rule.Name)
	}
	if rule.Block.Len() != 3 {
		t.Fatalf("expected 3 declarations, got %d", rule.Block.Len())
	}

	src := rule.LastDeclaration("src")
	if src == nil {
		t.Fatal("expected src declaration")
	}
	want := `url(a.woff2) format("woff2"),url(a.ttf) format("truetype")`
	if got := src.Value.String(); got != want {
		t.Errorf("src = %q, want %q", got, want)
	}
	if got := rule.LastDeclaration("font-family").Value.String(); got != `"Foo"` {
		t.Errorf("font-family = %q, want %q", got, `"Foo"`)
	}
}

func TestParser_LastDeclarationWins(t *testing.T) {
	sheet := parse(t, `@font-face { font-family: A; src: url(a.eot); src: url(a.woff); }`)
	rule := sheet.Rules.At(0)

	if n := len(rule.Block.Declarations("src")); n != 2 {
		t.Fatalf("expected 2 src declarations, got %d", n)
	}
	if got := rule.LastDeclaration("src").Value.String(); got != "url(a.woff)" {
		t.Errorf("last src = %q, want %q", got, "url(a.woff)")
	}
	if rule.LastDeclaration("unicode-range") != nil {
		t.Error("expected no unicode-range declaration")
	}
}

func TestParser_NestedConditionalBlocks(t *testing.T) {
	sheet := parse(t, `
p { color: red; }
@media (min-width: 600px) {
  @supports (display: grid) {
    @font-face { font-family: Inner; src: url(i.woff); }
  }
  .a, .b { margin: 0; }
}
@font-face { font-family: Outer; src: url(o.woff); }
`)

	if sheet.Rules.Len() != 3 {
		t.Fatalf("expected 3 top-level rules, got %d", sheet.Rules.Len())
	}

	media := sheet.Rules.At(1)
	if !media.IsAtRule("media") {
		t.Fatalf("expected @media, got %q", media.Name)
	}
	if media.Prelude != "(min-width:600px)" {
		t.Errorf("media prelude = %q", media.Prelude)
	}
	if media.Block.Len() != 2 {
		t.Fatalf("expected 2 rules inside @media, got %d", media.Block.Len())
	}

	supports := media.Block.At(0)
	if !supports.IsAtRule("supports") || supports.Prelude != "(display:grid)" {
		t.Errorf("unexpected nested rule %q %q", supports.Name, supports.Prelude)
	}

	ruleset := media.Block.At(1)
	if ruleset.Kind != css.RulesetNode || ruleset.Prelude != ".a,.b" {
		t.Errorf("unexpected ruleset %s %q", ruleset.Kind, ruleset.Prelude)
	}

	faces := sheet.FontFaces()
	if len(faces) != 2 {
		t.Fatalf("expected 2 font faces, got %d", len(faces))
	}
	if got := faces[0].LastDeclaration("font-family").Value.String(); got != "Inner" {
		t.Errorf("first font face family = %q, want Inner", got)
	}
}

func TestParser_BlocklessAtRules(t *testing.T) {
	sheet := parse(t, `@import url("x.css"); @namespace svg url(http://www.w3.org/2000/svg); p{color:blue}`)

	if sheet.Rules.Len() != 3 {
		t.Fatalf("expected 3 rules, got %d", sheet.Rules.Len())
	}
	imp := sheet.Rules.At(0)
	if !imp.IsAtRule("import") || imp.Block != nil {
		t.Errorf("expected block-less @import, got %q block=%v", imp.Name, imp.Block != nil)
	}
}

func TestParser_UnknownAtRuleKeptVerbatim(t *testing.T) {
	sheet := parse(t, `@font-feature-values Font One { @styleset { nice-style: 12; } }`)
	if sheet.Rules.Len() != 1 {
		t.Fatalf("expected 1 rule, got %d", sheet.Rules.Len())
	}
	rule := sheet.Rules.At(0)
	if rule.Name != "font-feature-values" {
		t.Errorf("name = %q", rule.Name)
	}
	if rule.Raw == "" {
		t.Error("expected raw block content to be preserved")
	}
}

func TestParser_Charset(t *testing.T) {
	// "Шрифт" in windows-1251
	data := append([]byte(`@charset "windows-1251"; @font-face { font-family: "`), 0xD8, 0xF0, 0xE8, 0xF4, 0xF2)
	data = append(data, []byte(`"; src: local("x"); }`)...)

	sheet := css.NewParser(nil).Parse(data)

	if sheet.Charset != "windows-1251" {
		t.Fatalf("charset = %q, want windows-1251", sheet.Charset)
	}
	faces := sheet.FontFaces()
	if len(faces) != 1 {
		t.Fatalf("expected 1 font face, got %d", len(faces))
	}
	if got := faces[0].LastDeclaration("font-family").Value.String(); got != `"Шрифт"` {
		t.Errorf("font-family = %q", got)
	}
	if !strings.Contains(sheet.String(), `@charset "UTF-8";`) {
		t.Errorf("expected charset to be rewritten in output:\n%s", sheet.String())
	}
}

func TestParser_UnknownCharset(t *testing.T) {
	sheet := css.NewParser(nil).Parse([]byte(`@charset "no-such-thing"; p { color: red; }`))
	if sheet.Charset != "" {
		t.Errorf("charset = %q, want empty", sheet.Charset)
	}
	if len(sheet.Warnings) == 0 {
		t.Error("expected warning about unknown charset")
	}
}

func TestStylesheet_RoundTrip(t *testing.T) {
	input := `@media screen {
  @font-face {
    font-family: "Foo";
    src: url(a.woff2) format("woff2");
  }
}
p {
  color: red;
}
`
	sheet := parse(t, input)
	if got := sheet.String(); got != input {
		t.Errorf("round trip mismatch:\ngot:\n%s\nwant:\n%s", got, input)
	}

	again := parse(t, sheet.String())
	if again.String() != sheet.String() {
		t.Error("serialization is not stable")
	}
}
