package cmd

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qaatlas/ledger-install/internal/manifest"
	"github.com/qaatlas/ledger-install/pkg/logger"
	"github.com/qaatlas/ledger-install/pkg/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List versions available in the manifest",
	Long:  `Fetch the version manifest and print every known version with its released platforms.`,
	RunE:  runList,
}

func init() {
	RootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	printer := ui.NewPrinter(cmd.OutOrStdout(), colorEnabled)

	fetcher := manifest.NewFetcher(logger.Component("manifest"))
	data, err := fetcher.Fetch(ctx, Cfg.ManifestURL)
	if err != nil {
		return err
	}

	m, err := manifest.Parse(data)
	if err != nil {
		return err
	}

	printer.Headerf("%s releases", m.Tool)
	printer.Plainf("latest: %s", m.Latest)
	if m.MinimumSupported != "" {
		printer.Plainf("minimum supported: %s", m.MinimumSupported)
	}
	if m.CompanionTool != "" {
		printer.Plainf("companion: %s", m.CompanionTool)
	}
	printer.Plainf("")

	for _, entry := range m.Versions {
		printer.Plainf("%-12s %-12s %s", entry.Version, entry.ReleaseDate, strings.Join(platformSummary(entry), ", "))
	}
	return nil
}

// platformSummary lists the entry's platform keys, marking artifacts that
// still carry the not-yet-released placeholder.
func platformSummary(entry manifest.VersionEntry) []string {
	keys := make([]string, 0, len(entry.Artifacts))
	for k := range entry.Artifacts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if entry.Artifacts[k].Released() {
			out = append(out, k)
		} else {
			out = append(out, k+" (unreleased)")
		}
	}
	return out
}
