package fonts

import (
	"net/url"
	"regexp"
	"strings"

	"fontmin/css"
)

var (
	reSourceFunc    = regexp.MustCompile(`(url|local)\(.*?\)\s*(,|$)`)
	reURLSingle     = regexp.MustCompile(`(?i)url\s*\(\s*'(.*?)'\s*\)`)
	reURLDouble     = regexp.MustCompile(`(?i)url\s*\(\s*"(.*?)"\s*\)`)
	reURLBare       = regexp.MustCompile(`(?i)url\s*\(\s*(.*?)\s*\)`)
	reFormatHint    = regexp.MustCompile(`format\((.*?)\)\s*,?$`)
	reDataWOFF      = regexp.MustCompile(`^url\(\s*["']?data:font/(woff2?)`)
	reDataWOFFAlt   = regexp.MustCompile(`^url\(\s*["']?data:application/x-font-(woff)`)
	reURLExtension  = regexp.MustCompile(`\.([^.?#]+)((\?|#).*?)?$`)
	reEmptyDataURI  = regexp.MustCompile(`^url\(["']?data:[^,]*,["']?\)`)
	reFragmentTrail = regexp.MustCompile(`\s*,?$`)
)

const localPrefix = "local("

// Source is a single candidate source of a font.
type Source struct {
	Fragment    string // declaration text of the source including format hint
	URL         string // resolved URL, empty for local() and empty data URIs
	Format      string // format label, empty when unknown
	ContentType string // content type of the fetched resource, empty when unresolved
}

// IsLocal reports whether source references locally installed font.
func (s *Source) IsLocal() bool {
	return strings.HasPrefix(s.Fragment, localPrefix)
}

// IsEmptyData reports whether source is an empty data URI placeholder left
// behind when resource could not be fetched.
func (s *Source) IsEmptyData() bool {
	return reEmptyDataURI.MatchString(s.Fragment)
}

func (s *Source) String() string {
	return s.Fragment
}

// ExtractSources returns src fragments of @font-face rule in declaration
// order. Each fragment keeps its format() hint and trailing comma if any.
func ExtractSources(rule *css.Node) []string {
	src, ok := declaredValue(rule, "src")
	if !ok {
		return nil
	}
	return reSourceFunc.FindAllString(src, -1)
}

// newSource builds candidate from extracted fragment resolving its URL
// against base.
func newSource(fragment string, base *url.URL) *Source {
	s := &Source{Fragment: reFragmentTrail.ReplaceAllString(fragment, "")}
	if s.IsLocal() || s.IsEmptyData() {
		return s
	}
	s.URL = resolveURL(extractURL(s.Fragment), base)
	return s
}

// resolve annotates source with format label and content type.
func (s *Source) resolve(table ResourceTable) {
	if m := reFormatHint.FindStringSubmatch(s.Fragment); m != nil && m[1] != "" {
		s.Format = strings.ToLower(unquoteHint(m[1]))
	}
	if s.Format == "" {
		if m := reDataWOFF.FindStringSubmatch(s.Fragment); m != nil {
			s.Format = m[1]
		} else if m := reDataWOFFAlt.FindStringSubmatch(s.Fragment); m != nil {
			s.Format = m[1]
		}
	}
	if s.Format == "" && s.URL != "" {
		if m := reURLExtension.FindStringSubmatch(s.URL); m != nil {
			s.Format = m[1]
		}
	}
	if table != nil && s.URL != "" {
		if e, ok := table.Lookup(s.URL); ok {
			s.ContentType = e.ContentType
		}
	}
}

func extractURL(fragment string) string {
	for _, re := range []*regexp.Regexp{reURLSingle, reURLDouble, reURLBare} {
		if m := re.FindStringSubmatch(fragment); m != nil {
			return m[1]
		}
	}
	return ""
}

// resolveURL makes reference absolute. Data URIs, unparsable references and
// references without base are returned as is.
func resolveURL(ref string, base *url.URL) string {
	if ref == "" || base == nil || strings.HasPrefix(strings.ToLower(ref), "data:") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// unquoteHint strips single quotes and then double quotes around format
// hint.
func unquoteHint(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}
