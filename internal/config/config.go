// Package config merges command-line flags, environment variables and
// built-in defaults into the effective configuration. Precedence is
// flag > environment > config file > default; the result is immutable once
// resolved.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/qaatlas/ledger-install/internal/exitcode"
	"github.com/qaatlas/ledger-install/internal/platform"
)

const (
	// DefaultManifestURL points at the published versions document.
	DefaultManifestURL = "https://raw.githubusercontent.com/qaatlas/ledger/main/dist/versions.json"
	// DefaultInstallDir is relative to the working directory so CI
	// checkouts get a self-contained tools tree.
	DefaultInstallDir = "./tools/bin"

	// EnvPrefix namespaces the override variables: LEDGER_INSTALL_VERSION,
	// LEDGER_INSTALL_PLATFORM, LEDGER_INSTALL_DIR, LEDGER_INSTALL_MANIFEST_URL.
	EnvPrefix = "LEDGER_INSTALL"

	// PrimaryBinary is the name the installed analysis binary gets.
	PrimaryBinary = "ledger"
	// CompanionBinary is the optional secondary tool installed best-effort.
	CompanionBinary = "qaatlas"
)

// Config is the effective configuration for one invocation.
type Config struct {
	Version           string        `mapstructure:"version"`
	Platform          string        `mapstructure:"platform"`
	InstallDir        string        `mapstructure:"install_dir"`
	ManifestURL       string        `mapstructure:"manifest_url"`
	Parser            string        `mapstructure:"parser"`
	LedgerOnly        bool          `mapstructure:"ledger_only"`
	CompanionRequired bool          `mapstructure:"companion_required"`
	NoColor           bool          `mapstructure:"no_color"`
	Logging           LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// flagBindings maps viper keys to the flag names that override them.
var flagBindings = map[string]string{
	"version":            "version",
	"platform":           "platform",
	"install_dir":        "install-dir",
	"manifest_url":       "manifest-url",
	"parser":             "parser",
	"ledger_only":        "ledger-only",
	"companion_required": "companion-required",
	"no_color":           "no-color",
	"logging.level":      "log-level",
	"logging.format":     "log-format",
	"logging.file":       "log-file",
}

// envBindings maps viper keys to their override variables.
var envBindings = map[string]string{
	"version":      EnvPrefix + "_VERSION",
	"platform":     EnvPrefix + "_PLATFORM",
	"install_dir":  EnvPrefix + "_DIR",
	"manifest_url": EnvPrefix + "_MANIFEST_URL",
}

// Resolve merges all configuration sources. flags is the flag set of the
// invoked command; bindings for flags a command does not define are skipped,
// so subcommands resolve against the same precedence chain.
func Resolve(flags *pflag.FlagSet, cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("install_dir", DefaultInstallDir)
	v.SetDefault("manifest_url", DefaultManifestURL)
	v.SetDefault("parser", "json")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, exitcode.New(exitcode.General, "failed to bind environment variable %s: %v", env, err)
		}
	}

	for key, name := range flagBindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, exitcode.New(exitcode.General, "failed to bind flag --%s: %v", name, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, exitcode.New(exitcode.General, "failed to read config file %s: %v", cfgFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, exitcode.New(exitcode.General, "failed to resolve configuration: %v", err)
	}

	if cfg.Platform != "" {
		normalized, err := normalizePlatformOverride(cfg.Platform)
		if err != nil {
			return nil, err
		}
		cfg.Platform = normalized
	}

	if cfg.Parser != "json" && cfg.Parser != "text" {
		return nil, exitcode.New(exitcode.General, "invalid parser strategy %q (expected json or text)", cfg.Parser)
	}

	return &cfg, nil
}

// normalizePlatformOverride canonicalizes a user-supplied platform key so
// darwin-arm64 and macos-aarch64 both resolve to macos-arm64.
func normalizePlatformOverride(key string) (string, error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return "", exitcode.New(exitcode.General, "invalid platform key %q (expected {os}-{arch})", key)
	}
	return platform.Normalize(parts[0], parts[1])
}
