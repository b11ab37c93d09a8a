// Package fonts removes redundant font sources from stylesheets. For every
// distinct font it keeps single best binary representation (WOFF2/WOFF, then
// TrueType, then OpenType) plus local() alternatives, and drops duplicate
// @font-face rules.
package fonts

import (
	"net/url"
	"strings"

	"go.uber.org/zap"

	"fontmin/css"
)

const mediaAll = "all"

// Sheet is a single stylesheet of the document being minified.
type Sheet struct {
	Rules *css.RuleList
	Media string   // media the stylesheet is linked with, empty means all
	Base  *url.URL // base to resolve relative font references against, may be nil
}

// scoped reports whether sheet media introduces its own scope.
func (s Sheet) scoped() bool {
	m := strings.TrimSpace(s.Media)
	return m != "" && m != mediaAll
}

func (s Sheet) key(index int) ScopeKey {
	return ScopeKey{Kind: ScopeSheetMedia, Sheet: index, Condition: strings.TrimSpace(s.Media)}
}

// Minifier drives catalog building and rule rewriting. It keeps no state
// between calls and may be shared.
type Minifier struct {
	log *zap.Logger
}

// NewMinifier creates minifier logging with log, nil disables logging.
func NewMinifier(log *zap.Logger) *Minifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Minifier{log: log.Named("fonts")}
}

// Process minifies font declarations of all sheets of a single document in
// place. Sheets share root scope so the same font declared in two sheets is
// kept only once.
func (m *Minifier) Process(sheets []Sheet, table ResourceTable) Stats {
	return m.Apply(sheets, m.Prepare(sheets, table))
}

// Prepare builds and resolves catalog tree of sheets without touching them.
func (m *Minifier) Prepare(sheets []Sheet, table ResourceTable) *Catalog {
	root := NewCatalog()
	for i, sheet := range sheets {
		if sheet.Rules == nil {
			continue
		}
		cat := root
		if sheet.scoped() {
			cat = root.addChild(sheet.key(i))
		}
		b := builder{sheet: i, base: sheet.Base}
		b.collect(sheet.Rules, cat)
	}
	root.Resolve(table)
	return root
}

// Apply rewrites sheets consuming catalog built by Prepare for the same sheets.
// Rules unknown to the catalog, including all of them for nil root, are left
// as is.
func (m *Minifier) Apply(sheets []Sheet, root *Catalog) Stats {
	r := rewriter{log: m.log}
	for i, sheet := range sheets {
		if sheet.Rules == nil {
			continue
		}
		cat := root
		if sheet.scoped() {
			if cat = root.Child(sheet.key(i)); cat == nil {
				m.log.Debug("No catalog for stylesheet scope, skipping", zap.Int("sheet", i), zap.String("media", sheet.Media))
				continue
			}
		}
		r.sheet = i
		r.rewrite(sheet.Rules, cat)
	}
	m.log.Debug("Fonts minified", zap.Object("stats", r.stats))
	return r.stats
}

// isScope reports whether node is conditional group rule opening nested scope.
func isScope(n *css.Node, name string) bool {
	return n.IsAtRule(name) && strings.TrimSpace(n.Prelude) != "" && n.Block.Len() > 0
}

func isFontFace(n *css.Node) bool {
	return n.IsAtRule("font-face") && n.Block != nil
}

// scopeCounter hands out positional keys of nested scopes in a rule list.
type scopeCounter struct {
	sheet    int
	media    int
	supports int
}

func (c *scopeCounter) next(n *css.Node) (ScopeKey, bool) {
	switch {
	case isScope(n, "media"):
		c.media++
		return ScopeKey{Kind: ScopeMedia, Sheet: c.sheet, Index: c.media - 1, Condition: n.Prelude}, true
	case isScope(n, "supports"):
		c.supports++
		return ScopeKey{Kind: ScopeSupports, Sheet: c.sheet, Index: c.supports - 1, Condition: n.Prelude}, true
	default:
		return ScopeKey{}, false
	}
}

// builder collects font candidates, first pass.
type builder struct {
	sheet int
	base  *url.URL
}

func (b *builder) collect(list *css.RuleList, cat *Catalog) {
	counter := scopeCounter{sheet: b.sheet}
	for n := range list.All() {
		if key, ok := counter.next(n); ok {
			b.collect(n.Block, cat.addChild(key))
			continue
		}
		if !isFontFace(n) {
			continue
		}
		fragments := ExtractSources(n)
		sources := make([]*Source, 0, len(fragments))
		for _, f := range fragments {
			sources = append(sources, newSource(f, b.base))
		}
		cat.Merge(SignatureOf(n), sources...)
	}
}

// rewriter mutates rule lists, second pass.
type rewriter struct {
	log   *zap.Logger
	sheet int
	stats Stats
}

func (r *rewriter) rewrite(list *css.RuleList, cat *Catalog) {
	before := list.Len()
	counter := scopeCounter{sheet: r.sheet}
	for n := range list.All() {
		if key, ok := counter.next(n); ok {
			child := cat.Child(key)
			if child == nil {
				r.log.Debug("No catalog for nested scope, skipping", zap.Stringer("scope", key))
				continue
			}
			r.rewrite(n.Block, child)
			continue
		}
		if isFontFace(n) {
			r.rewriteFontFace(list, n, cat)
		}
	}
	r.stats.Rules.Processed += before
	r.stats.Rules.Discarded += before - list.Len()
}

func (r *rewriter) rewriteFontFace(list *css.RuleList, rule *css.Node, cat *Catalog) {
	sig := SignatureOf(rule)
	candidates, res := cat.Take(sig)
	switch res {
	case Consumed:
		list.Remove(rule)
		r.log.Debug("Removed duplicate font rule", zap.Stringer("font", sig))
		return
	case Unknown:
		r.log.Debug("Font rule was not catalogued, leaving as is", zap.Stringer("font", sig))
		return
	}

	kept, winner := Select(candidates)
	r.stats.Fonts.Processed += len(candidates)
	r.stats.Fonts.Discarded += len(candidates) - len(kept)
	if winner != nil {
		r.log.Debug("Selected font source",
			zap.Stringer("font", sig),
			zap.String("src", winner.Fragment),
			zap.Int("candidates", len(candidates)),
			zap.Int("kept", len(kept)))
	} else {
		r.log.Debug("No preferred font source, keeping all", zap.Stringer("font", sig), zap.Int("candidates", len(candidates)))
	}

	decls := rule.Block.Declarations("src")
	if len(decls) == 0 {
		return
	}
	for _, d := range decls[:len(decls)-1] {
		rule.Block.Remove(d)
	}

	fragments := make([]string, 0, len(kept))
	for i := len(kept) - 1; i >= 0; i-- {
		fragments = append(fragments, kept[i].Fragment)
	}
	value, err := css.ParseValue(strings.Join(fragments, ","))
	if err != nil {
		r.log.Debug("Unable to parse rewritten font sources, keeping original", zap.Stringer("font", sig), zap.Error(err))
		return
	}
	decls[len(decls)-1].Value = value
}
