package cmd

import (
	"context"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/qaatlas/ledger-install/internal/config"
	"github.com/qaatlas/ledger-install/internal/deps"
	"github.com/qaatlas/ledger-install/internal/exitcode"
	"github.com/qaatlas/ledger-install/internal/installer"
	"github.com/qaatlas/ledger-install/internal/manifest"
	"github.com/qaatlas/ledger-install/internal/platform"
	"github.com/qaatlas/ledger-install/pkg/logger"
	"github.com/qaatlas/ledger-install/pkg/ui"
)

// runInstall executes the five sequential stages: configuration is already
// resolved by the time this runs; dependency check, platform detection,
// manifest resolution and the download/verify/install sequence follow, each
// stage feeding the next.
func runInstall(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logger.Component("install")
	printer := ui.NewPrinter(cmd.OutOrStdout(), colorEnabled)

	if Cfg.Version == "" {
		return exitcode.New(exitcode.General,
			`no version specified: use --version, %s_VERSION, or "latest"`, config.EnvPrefix)
	}

	statuses, err := deps.Check(deps.Defaults(runtime.GOOS), nil)
	if err != nil {
		return err
	}
	for _, st := range statuses {
		if !st.Satisfied() {
			log.WithField("capability", st.Name).Warning("Optional tool missing, related step degrades to best-effort")
		}
	}

	platformKey := Cfg.Platform
	if platformKey == "" {
		platformKey, err = platform.Detect()
		if err != nil {
			return err
		}
	}
	log.WithFields(logger.Fields{
		"version":  Cfg.Version,
		"platform": platformKey,
	}).Info("Resolving requested version")

	fetcher := manifest.NewFetcher(logger.Component("manifest"))
	data, err := fetcher.Fetch(ctx, Cfg.ManifestURL)
	if err != nil {
		return err
	}

	resolver, err := manifest.NewResolver(Cfg.Parser, logger.Component("manifest"))
	if err != nil {
		return err
	}

	res, err := resolver.Resolve(data, manifest.Request{
		Version:     Cfg.Version,
		PlatformKey: platformKey,
	})
	if err != nil {
		return err
	}

	inst := installer.New(logger.Component("installer"))
	installedPath, err := inst.Install(ctx, installer.Task{
		URL:        res.Artifact.URL,
		SHA256:     res.Artifact.SHA256,
		InstallDir: Cfg.InstallDir,
		BinaryName: config.PrimaryBinary,
	})
	if err != nil {
		return err
	}

	versionLine, err := inst.VerifyInstalled(ctx, installedPath)
	if err != nil {
		return err
	}
	printer.Successf("Installed %s %s to %s (%s)", config.PrimaryBinary, res.Version, installedPath, versionLine)

	if Cfg.LedgerOnly {
		return nil
	}

	// Companion failures downgrade to warnings unless the dual-binary mode
	// is explicitly required.
	if err := installCompanion(ctx, inst, resolver, data, platformKey, printer); err != nil {
		if Cfg.CompanionRequired {
			return err
		}
		log.WithError(err).Warning("Companion install failed, primary installation unaffected")
		printer.Warnf("%s not installed: %v", config.CompanionBinary, err)
	}

	return nil
}

func installCompanion(ctx context.Context, inst *installer.Installer, resolver manifest.Resolver, data []byte, platformKey string, printer *ui.Printer) error {
	res, err := resolver.Resolve(data, manifest.Request{
		Version:     Cfg.Version,
		PlatformKey: platformKey,
		Companion:   true,
	})
	if err != nil {
		return err
	}

	installedPath, err := inst.Install(ctx, installer.Task{
		URL:        res.Artifact.URL,
		SHA256:     res.Artifact.SHA256,
		InstallDir: Cfg.InstallDir,
		BinaryName: config.CompanionBinary,
	})
	if err != nil {
		return err
	}

	versionLine, err := inst.VerifyInstalled(ctx, installedPath)
	if err != nil {
		return err
	}
	printer.Successf("Installed %s %s to %s (%s)", config.CompanionBinary, res.Version, installedPath, versionLine)
	return nil
}
