package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaatlas/ledger-install/internal/exitcode"
)

// testFlags mirrors the flag set the root command registers.
func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("version", "v", "", "")
	fs.String("platform", "", "")
	fs.StringP("install-dir", "d", "", "")
	fs.String("manifest-url", "", "")
	fs.String("parser", "", "")
	fs.Bool("ledger-only", false, "")
	fs.Bool("companion-required", false, "")
	fs.Bool("no-color", false, "")
	fs.String("log-level", "", "")
	fs.String("log-format", "", "")
	fs.String("log-file", "", "")
	return fs
}

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve(testFlags(), "")
	require.NoError(t, err)

	assert.Empty(t, cfg.Version, "no default version: the user must choose")
	assert.Equal(t, DefaultInstallDir, cfg.InstallDir)
	assert.Equal(t, DefaultManifestURL, cfg.ManifestURL)
	assert.Equal(t, "json", cfg.Parser)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.LedgerOnly)
}

func TestResolveEnvironmentOverridesDefault(t *testing.T) {
	t.Setenv("LEDGER_INSTALL_VERSION", "1.2.3")
	t.Setenv("LEDGER_INSTALL_DIR", "/opt/qaatlas/bin")

	cfg, err := Resolve(testFlags(), "")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "/opt/qaatlas/bin", cfg.InstallDir)
}

func TestResolveFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("LEDGER_INSTALL_VERSION", "1.2.3")
	t.Setenv("LEDGER_INSTALL_MANIFEST_URL", "https://env.example.com/versions.json")

	fs := testFlags()
	require.NoError(t, fs.Set("version", "9.9.9"))

	cfg, err := Resolve(fs, "")
	require.NoError(t, err)
	assert.Equal(t, "9.9.9", cfg.Version, "explicit flag beats environment")
	assert.Equal(t, "https://env.example.com/versions.json", cfg.ManifestURL)
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 0.5.0\nparser: text\n"), 0o644))

	cfg, err := Resolve(testFlags(), path)
	require.NoError(t, err)
	assert.Equal(t, "0.5.0", cfg.Version)
	assert.Equal(t, "text", cfg.Parser)
}

func TestResolveFlagOverridesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 0.5.0\n"), 0o644))

	fs := testFlags()
	require.NoError(t, fs.Set("version", "0.6.0"))

	cfg, err := Resolve(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "0.6.0", cfg.Version)
}

func TestResolveMissingConfigFile(t *testing.T) {
	_, err := Resolve(testFlags(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, exitcode.General, exitcode.FromError(err))
}

func TestResolvePlatformOverrideIsNormalized(t *testing.T) {
	t.Setenv("LEDGER_INSTALL_PLATFORM", "darwin-aarch64")

	cfg, err := Resolve(testFlags(), "")
	require.NoError(t, err)
	assert.Equal(t, "macos-arm64", cfg.Platform)
}

func TestResolvePlatformOverrideInvalid(t *testing.T) {
	tests := []string{"weird", "plan9-arm64", "linux-riscv64"}
	for _, key := range tests {
		t.Run(key, func(t *testing.T) {
			fs := testFlags()
			require.NoError(t, fs.Set("platform", key))

			_, err := Resolve(fs, "")
			require.Error(t, err)
			assert.Equal(t, exitcode.General, exitcode.FromError(err))
		})
	}
}

func TestResolveInvalidParserStrategy(t *testing.T) {
	fs := testFlags()
	require.NoError(t, fs.Set("parser", "xml"))

	_, err := Resolve(fs, "")
	require.Error(t, err)
	assert.Equal(t, exitcode.General, exitcode.FromError(err))
}

func TestResolveBooleanFlags(t *testing.T) {
	fs := testFlags()
	require.NoError(t, fs.Set("ledger-only", "true"))
	require.NoError(t, fs.Set("companion-required", "true"))

	cfg, err := Resolve(fs, "")
	require.NoError(t, err)
	assert.True(t, cfg.LedgerOnly)
	assert.True(t, cfg.CompanionRequired)
}
