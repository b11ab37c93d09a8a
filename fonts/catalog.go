package fonts

import (
	"fmt"
	"sort"

	"github.com/maruel/natural"

	"fontmin/resources"
	"fontmin/utils/debug"
)

// ResourceTable provides content types of already fetched resources.
type ResourceTable interface {
	Lookup(name string) (resources.Entry, bool)
}

// ScopeKind tells which grouping construct introduced a nested scope.
type ScopeKind int

const (
	ScopeMedia      ScopeKind = iota // @media block
	ScopeSupports                    // @supports block
	ScopeSheetMedia                  // stylesheet linked with media other than "all"
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeMedia:
		return "media"
	case ScopeSupports:
		return "supports"
	case ScopeSheetMedia:
		return "sheet-media"
	default:
		return "unknown"
	}
}

// ScopeKey identifies nested scope inside its parent. Index is the position
// among constructs of the same kind in the parent rule list, so structurally
// identical blocks at different positions get different keys.
type ScopeKey struct {
	Kind      ScopeKind
	Sheet     int
	Index     int
	Condition string
}

func (k ScopeKey) String() string {
	return fmt.Sprintf("%s-%d-%d-%s", k.Kind, k.Sheet, k.Index, k.Condition)
}

// TakeResult describes outcome of Catalog.Take.
type TakeResult int

const (
	Taken    TakeResult = iota // candidates returned and marked consumed
	Consumed                   // signature was already taken by earlier rule
	Unknown                    // signature was never catalogued in this scope
)

// Catalog keeps candidate sources of every font signature found in a single
// scope together with catalogs of directly nested scopes.
type Catalog struct {
	order    []Signature
	fonts    map[Signature][]*Source
	consumed map[Signature]struct{}
	media    map[ScopeKey]*Catalog
	supports map[ScopeKey]*Catalog
}

// NewCatalog creates empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		fonts:    make(map[Signature][]*Source),
		consumed: make(map[Signature]struct{}),
		media:    make(map[ScopeKey]*Catalog),
		supports: make(map[ScopeKey]*Catalog),
	}
}

// Merge registers signature and puts sources in front of already known
// candidates, one by one.
func (c *Catalog) Merge(sig Signature, sources ...*Source) {
	list, ok := c.fonts[sig]
	if !ok {
		c.order = append(c.order, sig)
	}
	for _, s := range sources {
		list = append([]*Source{s}, list...)
	}
	c.fonts[sig] = list
}

// Take hands out candidates of signature once. Later calls for the same
// signature report Consumed. Nil catalog knows no signatures.
func (c *Catalog) Take(sig Signature) ([]*Source, TakeResult) {
	if c == nil {
		return nil, Unknown
	}
	if _, ok := c.consumed[sig]; ok {
		return nil, Consumed
	}
	list, ok := c.fonts[sig]
	if !ok {
		return nil, Unknown
	}
	c.consumed[sig] = struct{}{}
	delete(c.fonts, sig)
	return list, Taken
}

// Sources returns candidates of signature which were not taken yet.
func (c *Catalog) Sources(sig Signature) []*Source {
	if c == nil {
		return nil
	}
	return c.fonts[sig]
}

// Signatures returns signatures in the order they were first seen.
func (c *Catalog) Signatures() []Signature {
	if c == nil {
		return nil
	}
	return c.order
}

// Child returns catalog of nested scope or nil.
func (c *Catalog) Child(key ScopeKey) *Catalog {
	if c == nil {
		return nil
	}
	if key.Kind == ScopeSupports {
		return c.supports[key]
	}
	return c.media[key]
}

// addChild creates catalog for nested scope.
func (c *Catalog) addChild(key ScopeKey) *Catalog {
	child := NewCatalog()
	if key.Kind == ScopeSupports {
		c.supports[key] = child
	} else {
		c.media[key] = child
	}
	return child
}

// Resolve annotates every candidate of this catalog and of all nested ones
// with format label and content type.
func (c *Catalog) Resolve(table ResourceTable) {
	if c == nil {
		return
	}
	for _, list := range c.fonts {
		for _, s := range list {
			s.resolve(table)
		}
	}
	for _, child := range c.media {
		child.Resolve(table)
	}
	for _, child := range c.supports {
		child.Resolve(table)
	}
}

// String dumps catalog tree in readable form.
func (c *Catalog) String() string {
	tw := debug.NewTreeWriter()
	if c != nil {
		c.dump(tw, 0)
	}
	return tw.String()
}

func (c *Catalog) dump(tw *debug.TreeWriter, depth int) {
	for _, sig := range c.order {
		list, ok := c.fonts[sig]
		if !ok {
			tw.Line(depth, "font %s: taken", sig)
			continue
		}
		tw.Line(depth, "font %s: %d candidates", sig, len(list))
		for _, s := range list {
			tw.TextBlock(depth+1, "src", s.Fragment)
			tw.Attrs(depth+2, "url", s.URL, "format", s.Format, "type", s.ContentType)
		}
	}
	for _, children := range []map[ScopeKey]*Catalog{c.media, c.supports} {
		keys := make([]string, 0, len(children))
		byName := make(map[string]*Catalog, len(children))
		for k, child := range children {
			keys = append(keys, k.String())
			byName[k.String()] = child
		}
		sort.Sort(natural.StringSlice(keys))
		for _, k := range keys {
			tw.TextBlock(depth, "scope", k)
			byName[k].dump(tw, depth+1)
		}
	}
}
