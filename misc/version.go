// Package misc has program identification set at build time.
package misc

import (
	"runtime/debug"
)

// Set with -ldflags "-X fontmin/misc.version=... -X fontmin/misc.githash=..."
var (
	appName = "fontmin"
	version = "dev"
	githash = ""
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	if version == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			return bi.Main.Version
		}
	}
	return version
}

func GetGitHash() string {
	if githash != "" {
		return githash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
