package fonts

import (
	"strconv"
	"strings"

	"fontmin/css"
)

var fontWeights = map[string]string{
	"normal": "400",
	"bold":   "700",
}

var fontStretches = map[string]string{
	"ultra-condensed": "50%",
	"extra-condensed": "62.5%",
	"condensed":       "75%",
	"semi-condensed":  "87.5%",
	"normal":          "100%",
	"semi-expanded":   "112.5%",
	"expanded":        "125%",
	"extra-expanded":  "150%",
	"ultra-expanded":  "200%",
}

// Descriptor is an optional font descriptor value. Absent descriptors are
// distinct from present ones with empty text.
type Descriptor struct {
	Value string
	Set   bool
}

func optional(v string, ok bool) Descriptor {
	return Descriptor{Value: v, Set: ok}
}

func (d Descriptor) String() string {
	if !d.Set {
		return "null"
	}
	return strconv.Quote(d.Value)
}

// Signature identifies logical font described by @font-face rule. Rules with
// equal signatures in the same scope describe the same font.
type Signature struct {
	Family            string
	Weight            string
	Style             string
	UnicodeRange      Descriptor
	Stretch           Descriptor
	Variant           string
	FeatureSettings   Descriptor
	VariationSettings Descriptor
}

// SignatureOf computes normalized signature of @font-face rule.
func SignatureOf(rule *css.Node) Signature {
	family, _ := declaredValue(rule, "font-family")

	weight, ok := declaredValue(rule, "font-weight")
	if !ok {
		weight = "400"
	}
	if w, known := fontWeights[weight]; known {
		weight = w
	}

	style, ok := declaredValue(rule, "font-style")
	if !ok {
		style = "normal"
	}

	stretch, hasStretch := declaredValue(rule, "font-stretch")
	if s, known := fontStretches[stretch]; hasStretch && known {
		stretch = s
	}

	variant, ok := declaredValue(rule, "font-variant")
	if !ok {
		variant = "normal"
	}

	return Signature{
		Family:            normalizeFamily(family),
		Weight:            weight,
		Style:             style,
		UnicodeRange:      optional(declaredValue(rule, "unicode-range")),
		Stretch:           optional(stretch, hasStretch),
		Variant:           variant,
		FeatureSettings:   optional(declaredValue(rule, "font-feature-settings")),
		VariationSettings: optional(declaredValue(rule, "font-variation-settings")),
	}
}

// String renders signature in canonical order sensitive form.
func (s Signature) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, field := range []string{
		strconv.Quote(s.Family),
		strconv.Quote(s.Weight),
		strconv.Quote(s.Style),
		s.UnicodeRange.String(),
		s.Stretch.String(),
		strconv.Quote(s.Variant),
		s.FeatureSettings.String(),
		s.VariationSettings.String(),
	} {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(field)
	}
	sb.WriteByte(']')
	return sb.String()
}

// declaredValue returns text of the last declaration of property in the rule.
// Trailing "\9" IE hack is dropped. Absent or empty values are reported as
// not available.
func declaredValue(rule *css.Node, property string) (string, bool) {
	decl := rule.LastDeclaration(property)
	if decl == nil {
		return "", false
	}
	text := strings.TrimSuffix(decl.Value.String(), `\9`)
	if text == "" {
		return "", false
	}
	return text, true
}

func normalizeFamily(family string) string {
	family = strings.TrimSpace(strings.ToLower(family))
	return strings.TrimSpace(unquote(family))
}

// unquote removes one level of surrounding single or double quotes.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
		return s[1 : len(s)-1]
	}
	return s
}
