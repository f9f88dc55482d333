package version

import (
	"os"
	"runtime/debug"
	"strings"
	"sync"

	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
)

const Header = "X-Fixit-Client-Version"

const (
	versionDevel   = "devel"
	versionUnknown = "unknown"
)

// version is set via ldflags at build time.
// falls back to debug.ReadBuildInfo for go install.
var version = versionDevel

var once sync.Once

func Get() string {
	once.Do(func() {
		if version != versionDevel {
			return
		}
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		if v := info.Main.Version; v != "" && v != "("+versionDevel+")" {
			version = v
		}
	})
	return version
}

// IsDevelopment returns true for versions that should skip update checks:
// local builds, dirty trees, and untagged pseudo-versions.
func IsDevelopment(v string) bool {
	if v == versionDevel || v == versionUnknown || v == "" || strings.Contains(v, "dirty") {
		return true
	}
	cv := canonical(v)
	return !semver.IsValid(cv) || module.IsPseudoVersion(cv) || strings.Contains(v, "-0.")
}

// IsNewer reports whether latest is a newer release than current.
// Development builds are never considered outdated.
func IsNewer(current, latest string) bool {
	if IsDevelopment(current) {
		return false
	}
	return semver.Compare(canonical(latest), canonical(current)) > 0
}

// IsHomebrew reports whether the running binary was installed by Homebrew.
func IsHomebrew() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	return strings.Contains(exe, "/Cellar/") || strings.Contains(exe, "/homebrew/")
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

type IncompatibleError struct {
	ClientVersion string
	MinVersion    string
}

func (e *IncompatibleError) Error() string {
	return "client version " + e.ClientVersion + " is older than the minimum supported version " + e.MinVersion
}

// CheckCompatibility returns an error when clientVersion is below minVersion.
// Development builds and an empty minVersion always pass.
func CheckCompatibility(clientVersion string, minVersion string) *IncompatibleError {
	if minVersion == "" || IsDevelopment(clientVersion) {
		return nil
	}
	if IsNewer(clientVersion, minVersion) {
		return &IncompatibleError{ClientVersion: clientVersion, MinVersion: minVersion}
	}
	return nil
}
