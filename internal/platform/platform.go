// Package platform maps the host operating system and CPU architecture to
// the canonical platform key used by the version manifest.
package platform

import (
	"runtime"
	"strings"

	"github.com/qaatlas/ledger-install/internal/exitcode"
)

// Supported canonical platform keys, in manifest order.
var Supported = []string{"macos-arm64", "macos-x64", "linux-arm64", "linux-x64"}

// Detect returns the canonical platform key for the current host.
func Detect() (string, error) {
	return Normalize(runtime.GOOS, runtime.GOARCH)
}

// Normalize builds a "{os}-{arch}" key from raw OS and architecture
// identifiers. It accepts Go runtime values as well as the uname spellings
// (Darwin, aarch64, x86_64) so platform overrides from the environment work
// with either convention.
func Normalize(osName, arch string) (string, error) {
	var osKey string
	switch strings.ToLower(osName) {
	case "darwin", "macos":
		osKey = "macos"
	case "linux":
		osKey = "linux"
	default:
		return "", exitcode.New(exitcode.General, "unsupported operating system: %s", osName)
	}

	var archKey string
	switch strings.ToLower(arch) {
	case "arm64", "aarch64":
		archKey = "arm64"
	case "x64", "amd64", "x86_64":
		archKey = "x64"
	default:
		return "", exitcode.New(exitcode.General, "unsupported architecture: %s", arch)
	}

	return osKey + "-" + archKey, nil
}

// IsSupported reports whether key is one of the canonical platform keys.
func IsSupported(key string) bool {
	for _, s := range Supported {
		if s == key {
			return true
		}
	}
	return false
}
