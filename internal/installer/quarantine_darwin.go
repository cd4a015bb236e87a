//go:build darwin

package installer

import "os/exec"

// clearQuarantine removes the com.apple.quarantine attribute so Gatekeeper
// does not block or stall the freshly downloaded binary. The attribute may
// not exist; callers treat any failure as a warning.
func clearQuarantine(path string) error {
	return exec.Command("xattr", "-d", "com.apple.quarantine", path).Run()
}
