package cmd

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/qaatlas/ledger-install/internal/config"
	"github.com/qaatlas/ledger-install/internal/exitcode"
	"github.com/qaatlas/ledger-install/pkg/logger"
	"github.com/qaatlas/ledger-install/pkg/ui"
)

var (
	cfgFile string
	Cfg     *config.Config
	Version string

	// colorEnabled is computed once in initRun and threaded into the
	// logger and printers.
	colorEnabled bool
)

var RootCmd = &cobra.Command{
	Use:   "ledger-install",
	Short: "Install the ledger analysis binary from the release manifest",
	Long: `ledger-install fetches the remote version manifest, resolves the requested
version and platform, downloads the prebuilt binary, verifies its SHA256
checksum and places it in the install directory. The qaatlas companion
binary is installed best-effort alongside unless --ledger-only is given.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initRun,
	RunE:              runInstall,
}

// Execute runs the root command with signal-aware context so an interrupt
// unwinds through the download path and the temp-file cleanup still fires.
func Execute(ctx context.Context, version string) error {
	Version = version
	return RootCmd.ExecuteContext(ctx)
}

func init() {
	flags := RootCmd.Flags()
	flags.StringP("version", "v", "", `version to install (or "latest")`)
	flags.String("platform", "", "platform key override, {os}-{arch}")
	flags.StringP("install-dir", "d", "", "install directory (default "+config.DefaultInstallDir+")")
	flags.String("manifest-url", "", "version manifest URL")
	flags.String("parser", "", "manifest parser strategy: json or text")
	flags.Bool("ledger-only", false, "skip the qaatlas companion binary")
	flags.Bool("companion-required", false, "treat companion install failures as fatal")
	flags.SetNormalizeFunc(normalizeFlags)

	persistent := RootCmd.PersistentFlags()
	persistent.StringVar(&cfgFile, "config", "", "config file (yaml)")
	persistent.String("log-level", "", "log level (default info)")
	persistent.String("log-format", "", "log format: text or json")
	persistent.String("log-file", "", "also log to this rotating file")
	persistent.Bool("no-color", false, "disable colored output")
}

// normalizeFlags keeps --dir working as an alias of --install-dir.
func normalizeFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "dir" {
		name = "install-dir"
	}
	return pflag.NormalizedName(name)
}

func initRun(cmd *cobra.Command, _ []string) error {
	var err error
	Cfg, err = config.Resolve(cmd.Flags(), cfgFile)
	if err != nil {
		return err
	}

	colorEnabled = !Cfg.NoColor && ui.ColorEnabled(os.Stdout)

	if err := logger.Init(logger.Config{
		Level:      Cfg.Logging.Level,
		Format:     Cfg.Logging.Format,
		File:       Cfg.Logging.File,
		Color:      colorEnabled,
		MaxSize:    10,
		MaxAge:     7,
		MaxBackups: 3,
	}); err != nil {
		return exitcode.Wrap(exitcode.General, err)
	}

	logger.SetBaseFields(logger.Fields{"run_id": uuid.New().String()})
	return nil
}
