// Package archive walks zip archives of resources (font bundles, saved page
// assets) on top of "archive/zip".
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"path"
	"strings"
)

// WalkFunc is called for each accepted file in the archive visited by Walk.
// name is the slash separated path of the entry inside archive. If an error is
// returned, processing stops.
type WalkFunc func(name string, file *zip.File) error

// MatchFunc decides if archive entry should be visited.
type MatchFunc func(name string) bool

// Prefix returns MatchFunc accepting entries under dir inside archive.
func Prefix(dir string) MatchFunc {
	dir = strings.TrimPrefix(path.Clean("/"+dir), "/")
	return func(name string) bool {
		return dir == "" || name == dir || strings.HasPrefix(name, dir+"/")
	}
}

// Walk visits all regular files in the archive accepted by match in archive
// order. Entries with path traversal components ("..") or absolute paths make
// Walk fail to prevent Zip Slip attacks. Context is checked before every entry.
func Walk(ctx context.Context, archive string, match MatchFunc, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("unable to open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || (match != nil && !match(name)) {
			continue
		}
		if err := walkFn(name, f); err != nil {
			return err
		}
	}
	return nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
