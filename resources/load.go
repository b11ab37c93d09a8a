package resources

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"fontmin/archive"
)

// headerSize is enough for filetype to recognize any font signature.
const headerSize = 262

// DirURL returns "file" URL for directory suitable as a base to resolve
// relative references against.
func DirURL(dir string) (*url.URL, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		// windows drive letter
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return &url.URL{Scheme: "file", Path: p}, nil
}

// Loader builds resource tables from local fonts.
type Loader struct {
	log   *zap.Logger
	sniff bool
}

// NewLoader creates a loader. When sniff is set font content is checked with
// magic numbers and detected type takes precedence over file extension.
func NewLoader(log *zap.Logger, sniff bool) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{log: log.Named("resources"), sniff: sniff}
}

// LoadDir walks dir recursively and adds every font file found. Resource name
// is the slash separated path relative to dir resolved against base, when
// base is nil dir location itself is used.
func (l *Loader) LoadDir(ctx context.Context, dir string, base *url.URL) (*Table, error) {
	var err error
	if base == nil {
		if base, err = DirURL(dir); err != nil {
			return nil, fmt.Errorf("unable to build base URL for %q: %w", dir, err)
		}
	}

	table := NewTable()
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			l.log.Warn("Skipping path", zap.String("path", p), zap.Error(err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		head, err := l.readHeader(func() (io.ReadCloser, error) { return os.Open(p) })
		if err != nil {
			l.log.Warn("Skipping file", zap.String("file", p), zap.Error(err))
			return nil
		}
		l.add(table, filepath.ToSlash(rel), head, base)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to load fonts from %q: %w", dir, err)
	}
	l.log.Debug("Loaded fonts from directory", zap.String("dir", dir), zap.Int("count", table.Len()))
	return table, nil
}

// LoadArchive adds every font file found in zip archive under dir ("" for
// the whole archive). Entry names relative to dir are resolved against base,
// when base is nil archive location is used.
func (l *Loader) LoadArchive(ctx context.Context, name, dir string, base *url.URL) (*Table, error) {
	var err error
	if base == nil {
		if base, err = DirURL(filepath.Dir(name)); err != nil {
			return nil, fmt.Errorf("unable to build base URL for %q: %w", name, err)
		}
	}
	dir = strings.Trim(path.Clean("/"+dir), "/")

	table := NewTable()
	err = archive.Walk(ctx, name, archive.Prefix(dir), func(entry string, f *zip.File) error {
		head, err := l.readHeader(f.Open)
		if err != nil {
			l.log.Warn("Skipping file in archive", zap.String("archive", name), zap.String("file", entry), zap.Error(err))
			return nil
		}
		rel := entry
		if dir != "" {
			rel = strings.TrimPrefix(entry, dir+"/")
		}
		l.add(table, rel, head, base)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to load fonts from archive %q: %w", name, err)
	}
	l.log.Debug("Loaded fonts from archive", zap.String("archive", name), zap.String("dir", dir), zap.Int("count", table.Len()))
	return table, nil
}

// Load dispatches to LoadArchive or LoadDir depending on what location is.
// Location may point inside of zip archive: "[path]fonts.zip[path_in_archive]".
func (l *Loader) Load(ctx context.Context, location string, base *url.URL) (*Table, error) {
	fi, err := os.Stat(location)
	if err == nil {
		if fi.IsDir() {
			return l.LoadDir(ctx, location, base)
		}
		return l.LoadArchive(ctx, location, "", base)
	}
	if name, dir, ok := splitArchivePath(location); ok {
		return l.LoadArchive(ctx, name, dir, base)
	}
	return nil, fmt.Errorf("unable to access fonts location: %w", err)
}

// splitArchivePath finds existing zip file in location and returns it with
// the rest of the location as path inside of archive.
func splitArchivePath(location string) (string, string, bool) {
	p := filepath.ToSlash(location)
	for from := 0; from < len(p); {
		i := strings.Index(strings.ToLower(p[from:]), ".zip/")
		if i < 0 {
			break
		}
		end := from + i + len(".zip")
		name := filepath.FromSlash(p[:end])
		if fi, err := os.Stat(name); err == nil && fi.Mode().IsRegular() {
			return name, p[end+1:], true
		}
		from = end
	}
	return "", "", false
}

func (l *Loader) readHeader(open func() (io.ReadCloser, error)) ([]byte, error) {
	if !l.sniff {
		return nil, nil
	}
	r, err := open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return head[:n], nil
}

func (l *Loader) add(table *Table, rel string, head []byte, base *url.URL) {
	ct := l.contentType(rel, head)
	if ct == "" || (!IsFontType(ct) && ct != "image/svg+xml") {
		return
	}
	name := base.ResolveReference(&url.URL{Path: rel}).String()
	table.Add(Entry{ID: rel, Name: name, ContentType: ct})
	l.log.Debug("Font resource", zap.String("id", rel), zap.String("name", name), zap.String("type", ct))
}

// contentType decides resource content type from extension and, when
// requested, from content signature.
func (l *Loader) contentType(name string, head []byte) string {
	ct := ExtToContentType(path.Ext(name))
	if !l.sniff || len(head) == 0 {
		return ct
	}
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return ct
	}
	sniffed := ExtToContentType("." + kind.Extension)
	if sniffed == "" {
		if ct != "" {
			l.log.Warn("Font file content does not look like a font", zap.String("file", name), zap.String("detected", kind.MIME.Value))
			return ""
		}
		return ct
	}
	if ct != "" && ct != sniffed {
		l.log.Warn("Font file extension does not match its content", zap.String("file", name), zap.String("extension", ct), zap.String("content", sniffed))
	}
	return sniffed
}

type manifest struct {
	Resources []Entry `yaml:"resources"`
}

// LoadManifest reads resource table exported by the host pipeline, YAML
// document with a list of {id, name, content_type} entries.
func LoadManifest(name string) (*Table, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("unable to read resource manifest: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m manifest
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unable to decode resource manifest: %w", err)
	}
	table := NewTable()
	for i, e := range m.Resources {
		if e.Name == "" {
			return nil, fmt.Errorf("resource manifest entry %d has no name", i)
		}
		table.Add(e)
	}
	return table, nil
}
