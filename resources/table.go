// Package resources keeps the table of already fetched resources referenced
// by stylesheets and knows how to build it from local files, zip archives and
// manifests exported by other tools.
package resources

import (
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// Entry describes single fetched resource.
type Entry struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"` // resolved URL of the resource
	ContentType string `yaml:"content_type"`
}

// Table maps resource identifiers to entries. Lookups by name are exact, the
// first entry added under a name wins.
type Table struct {
	entries map[string]Entry
	byName  map[string]string
}

// NewTable creates table with the given entries.
func NewTable(entries ...Entry) *Table {
	t := &Table{
		entries: make(map[string]Entry, len(entries)),
		byName:  make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		t.Add(e)
	}
	return t
}

// Add stores entry replacing any previous one with the same ID. When ID is
// empty the name is used instead.
func (t *Table) Add(e Entry) {
	if e.ID == "" {
		e.ID = e.Name
	}
	if old, ok := t.entries[e.ID]; ok && t.byName[old.Name] == e.ID {
		delete(t.byName, old.Name)
	}
	t.entries[e.ID] = e
	if _, ok := t.byName[e.Name]; !ok && e.Name != "" {
		t.byName[e.Name] = e.ID
	}
}

// Get returns entry by its identifier.
func (t *Table) Get(id string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.entries[id]
	return e, ok
}

// Lookup finds entry whose resource name equals name exactly.
func (t *Table) Lookup(name string) (Entry, bool) {
	if t == nil || name == "" {
		return Entry{}, false
	}
	id, ok := t.byName[name]
	if !ok {
		return Entry{}, false
	}
	return t.entries[id], true
}

// Len returns number of entries in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Merge adds all entries of other table.
func (t *Table) Merge(other *Table) {
	for _, id := range other.IDs() {
		t.Add(other.entries[id])
	}
}

// IDs returns identifiers in natural order.
func (t *Table) IDs() []string {
	if t == nil {
		return nil
	}
	ids := make([]string, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Sort(natural.StringSlice(ids))
	return ids
}

// Entries returns all entries ordered by identifier.
func (t *Table) Entries() []Entry {
	ids := t.IDs()
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.entries[id])
	}
	return out
}

// IsFontType returns true if the content type indicates a font resource.
func IsFontType(contentType string) bool {
	return strings.HasPrefix(contentType, "font/") ||
		strings.HasPrefix(contentType, "application/font-") ||
		strings.HasPrefix(contentType, "application/x-font-") ||
		contentType == "application/vnd.ms-fontobject"
}

// ExtToContentType returns content type for common font file extensions.
func ExtToContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	case ".ttf":
		return "font/ttf"
	case ".otf":
		return "font/otf"
	case ".eot":
		return "application/vnd.ms-fontobject"
	case ".svg":
		return "image/svg+xml"
	default:
		return ""
	}
}
