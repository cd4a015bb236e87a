package installer

import (
	"context"
	"os/exec"
	"strings"

	"github.com/qaatlas/ledger-install/internal/exitcode"
)

// VerifyInstalled runs the installed binary with its version-query flag and
// returns the first line of output. A binary that cannot execute means the
// installation produced a non-functional result.
func (i *Installer) VerifyInstalled(ctx context.Context, path string) (string, error) {
	i.logger.WithField("path", path).Debug("Running post-install verification")

	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		i.logger.WithError(err).Error("Installed binary failed to execute")
		return "", exitcode.New(exitcode.General, "installed binary %s failed to execute: %v", path, err)
	}

	line := strings.TrimSpace(string(out))
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}

	i.logger.WithField("version", line).Info("Post-install verification succeeded")
	return line, nil
}
