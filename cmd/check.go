package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/qaatlas/ledger-install/internal/deps"
	"github.com/qaatlas/ledger-install/pkg/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check for the external tools the installer uses",
	RunE:  runCheck,
}

func init() {
	RootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	printer := ui.NewPrinter(cmd.OutOrStdout(), colorEnabled)

	requirements := deps.Defaults(runtime.GOOS)
	if len(requirements) == 0 {
		printer.Successf("no external tools required on this platform")
		return nil
	}

	statuses, err := deps.Check(requirements, nil)
	for _, st := range statuses {
		switch {
		case st.Satisfied():
			printer.Successf("%-32s OK (%s)", st.Name, st.Path)
		case st.Optional:
			printer.Warnf("%-32s missing (optional, best-effort step skipped)", st.Name)
		default:
			printer.Errorf("%-32s MISSING", st.Name)
		}
	}
	return err
}
