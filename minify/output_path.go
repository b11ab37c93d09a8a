package minify

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"fontmin/config"
)

// buildOutputPath returns output file path for stylesheet with path rel
// relative to source root. Output keeps source directory structure under dst,
// name comes from the template. Expanded name may contain slashes to put
// output into subdirectories, every segment is cleaned up.
func buildOutputPath(rel, dst, nameTemplate string) (string, error) {
	values := newValues(rel)
	outDir := filepath.Join(dst, filepath.FromSlash(values.Dir))

	expanded, err := expandTemplate(config.OutputNameTemplateFieldName, nameTemplate, values)
	if err != nil {
		return "", err
	}
	segments := splitPath(filepath.FromSlash(expanded))
	if len(segments) == 0 {
		return "", fmt.Errorf("output name template produced empty name for %q", rel)
	}

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, outDir)
	for _, s := range segments {
		parts = append(parts, config.CleanFileName(s))
	}
	return filepath.Join(parts...), nil
}

// splitPath breaks path into segments dropping empty ones and references to
// parent directories.
func splitPath(path string) []string {
	segments := make([]string, 0, 8)
	for s := range strings.SplitSeq(path, string(filepath.Separator)) {
		s = strings.TrimSpace(s)
		if s == "" || s == "." || s == ".." {
			continue
		}
		segments = append(segments, s)
	}
	return slices.Clip(segments)
}
