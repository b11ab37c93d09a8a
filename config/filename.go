package config

import (
	"strings"
	"unicode"
)

const badFileName = "_bad_file_name_"

// CleanFileName makes single path segment of an output file name safe: drops
// characters not allowed by the system and control characters, leading dots
// (no hidden files), trailing characters the system ignores and prefixes
// reserved device names.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if unicode.IsControl(sym) || strings.ContainsRune(forbiddenNameChars, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(strings.TrimSpace(out), ".")
	out = strings.TrimRight(out, trailingNameChars)
	if len(out) == 0 {
		return badFileName
	}
	stem, _, _ := strings.Cut(out, ".")
	if reservedNames[strings.ToUpper(stem)] {
		out = "_" + out
	}
	return out
}
