// Package version reports the build version printed by the -v flags.
package version

import "runtime/debug"

// Version can be set at build time:
//
//	go build -ldflags "-X github.com/rationalkeyboard/keys/version.Version=$(git describe --dirty)"
var Version string

// VersionOrHash is Version if set, otherwise the module version of a
// go-installed binary, otherwise the short VCS revision.
var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	revision, dirty := "", ""
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && len(s.Value) >= 7:
			revision = s.Value[:7]
		case s.Key == "vcs.modified" && s.Value == "true":
			dirty = "-dirty"
		}
	}
	if revision == "" {
		return ""
	}
	return revision + dirty
}()
