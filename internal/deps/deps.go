// Package deps verifies that the external tools this installer shells out to
// are present before any network or filesystem work starts. All missing
// mandatory capabilities are aggregated into a single failure so the user
// sees the full remediation list in one pass.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/qaatlas/ledger-install/internal/exitcode"
)

// Requirement is a named capability satisfied by any one of several
// interchangeable commands.
type Requirement struct {
	// Name describes the capability, not a specific binary.
	Name string
	// Commands lists the interchangeable tools; the first one found on
	// PATH satisfies the requirement.
	Commands []string
	// Optional requirements produce a warning instead of a failure; the
	// step that needs them degrades to best-effort.
	Optional bool
}

// Status is the check outcome for one requirement.
type Status struct {
	Requirement
	// Found is the command that satisfied the requirement, empty if none.
	Found string
	// Path is the resolved location of Found.
	Path string
}

// Satisfied reports whether any candidate command was found.
func (s Status) Satisfied() bool { return s.Found != "" }

// LookPathFunc resolves a command name to its path, exec.LookPath in
// production.
type LookPathFunc func(name string) (string, error)

// Check resolves every requirement and aggregates the missing mandatory ones
// into a single missing-dependencies error. Optional requirements never fail
// the check; callers inspect the returned statuses to downgrade behavior.
func Check(reqs []Requirement, lookPath LookPathFunc) ([]Status, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	statuses := make([]Status, 0, len(reqs))
	var missing []string
	for _, req := range reqs {
		st := Status{Requirement: req}
		for _, cmd := range req.Commands {
			if path, err := lookPath(cmd); err == nil {
				st.Found = cmd
				st.Path = path
				break
			}
		}
		statuses = append(statuses, st)

		if !st.Satisfied() && !req.Optional {
			missing = append(missing, fmt.Sprintf("%s (one of: %s)", req.Name, strings.Join(req.Commands, ", ")))
		}
	}

	if len(missing) > 0 {
		return statuses, exitcode.New(exitcode.MissingDependency,
			"missing required tools: %s", strings.Join(missing, "; "))
	}
	return statuses, nil
}

// Defaults returns the requirement set for the given OS. HTTP transfer,
// SHA-256 hashing and JSON parsing are built in, so the only external tool
// left is the macOS quarantine-clearing utility, and losing it only costs
// the best-effort quarantine step.
func Defaults(goos string) []Requirement {
	if goos != "darwin" {
		return nil
	}
	return []Requirement{
		{
			Name:     "quarantine attribute removal",
			Commands: []string{"xattr"},
			Optional: true,
		},
	}
}
