package manifest

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaatlas/ledger-install/internal/exitcode"
)

const sampleManifest = `{
  "tool": "ledger",
  "latest": "0.2.0",
  "minimum_supported": "0.1.0",
  "companion_tool": "qaatlas",
  "versions": [
    {
      "version": "0.2.0",
      "release_date": "2026-07-14",
      "source_commit": "b4c2d1e",
      "artifacts": {
        "macos-arm64": {
          "url": "https://example.com/ledger/0.2.0/macos-arm64/ledger",
          "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
        },
        "linux-x64": {
          "url": "https://example.com/ledger/0.2.0/linux-x64/ledger",
          "sha256": "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
        },
        "linux-arm64": {
          "url": "https://example.com/ledger/0.2.0/linux-arm64/ledger",
          "sha256": "PLACEHOLDER_PENDING_RELEASE"
        }
      },
      "companion_version": "1.4.2",
      "companion": {
        "macos-arm64": {
          "url": "https://example.com/qaatlas/1.4.2/macos-arm64/qaatlas",
          "sha256": "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"
        }
      }
    },
    {
      "version": "0.1.0",
      "release_date": "2026-05-02",
      "source_commit": "91f0ab3",
      "artifacts": {
        "macos-arm64": {
          "url": "https://example.com/ledger/0.1.0/macos-arm64/ledger",
          "sha256": "dddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddd"
        }
      }
    }
  ]
}`

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l.WithField("component", "test")
}

func jsonResolver(t *testing.T) Resolver {
	t.Helper()
	r, err := NewResolver(StrategyJSON, testLogger())
	require.NoError(t, err)
	return r
}

func TestResolveExactVersion(t *testing.T) {
	res, err := jsonResolver(t).Resolve([]byte(sampleManifest), Request{
		Version:     "0.1.0",
		PlatformKey: "macos-arm64",
	})
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", res.Version)
	assert.Equal(t, "https://example.com/ledger/0.1.0/macos-arm64/ledger", res.Artifact.URL)
	assert.Equal(t, "dddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddd", res.Artifact.SHA256)
}

func TestResolveLatestPointer(t *testing.T) {
	res, err := jsonResolver(t).Resolve([]byte(sampleManifest), Request{
		Version:     LatestAlias,
		PlatformKey: "linux-x64",
	})
	require.NoError(t, err)
	assert.Equal(t, "0.2.0", res.Version)
}

func TestResolveUnknownVersionListsKnownVersions(t *testing.T) {
	_, err := jsonResolver(t).Resolve([]byte(sampleManifest), Request{
		Version:     "9.9.9",
		PlatformKey: "macos-arm64",
	})
	require.Error(t, err)
	assert.Equal(t, exitcode.NotFound, exitcode.FromError(err))
	assert.Contains(t, err.Error(), "9.9.9")
	assert.Contains(t, err.Error(), "0.2.0")
	assert.Contains(t, err.Error(), "0.1.0")
}

func TestResolveUnknownPlatformListsAvailablePlatforms(t *testing.T) {
	_, err := jsonResolver(t).Resolve([]byte(sampleManifest), Request{
		Version:     "0.1.0",
		PlatformKey: "linux-x64",
	})
	require.Error(t, err)
	assert.Equal(t, exitcode.NotFound, exitcode.FromError(err))
	assert.Contains(t, err.Error(), "platform linux-x64 not found for version 0.1.0")
	assert.Contains(t, err.Error(), "macos-arm64")
	// Listing is scoped to the matched version, not the whole manifest.
	assert.NotContains(t, err.Error(), "linux-arm64")
}

func TestResolvePlaceholderIsNotYetReleased(t *testing.T) {
	_, err := jsonResolver(t).Resolve([]byte(sampleManifest), Request{
		Version:     "0.2.0",
		PlatformKey: "linux-arm64",
	})
	require.Error(t, err)
	assert.Equal(t, exitcode.NotFound, exitcode.FromError(err))
	assert.Contains(t, err.Error(), "not yet released")
	assert.NotContains(t, err.Error(), "checksum")
}

func TestResolveCompanion(t *testing.T) {
	res, err := jsonResolver(t).Resolve([]byte(sampleManifest), Request{
		Version:     "0.2.0",
		PlatformKey: "macos-arm64",
		Companion:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", res.Version, "companion is independently versioned")
	assert.Equal(t, "https://example.com/qaatlas/1.4.2/macos-arm64/qaatlas", res.Artifact.URL)
}

func TestResolveCompanionMissingSection(t *testing.T) {
	_, err := jsonResolver(t).Resolve([]byte(sampleManifest), Request{
		Version:     "0.1.0",
		PlatformKey: "macos-arm64",
		Companion:   true,
	})
	require.Error(t, err)
	assert.Equal(t, exitcode.NotFound, exitcode.FromError(err))
}

func TestParseRejectsMalformedDocument(t *testing.T) {
	_, err := Parse([]byte("<html>not json</html>"))
	require.Error(t, err)
	assert.Equal(t, exitcode.General, exitcode.FromError(err))
}

func TestParseRejectsEmptyVersions(t *testing.T) {
	_, err := Parse([]byte(`{"tool":"ledger","latest":"0.1.0","versions":[]}`))
	require.Error(t, err)
	assert.Equal(t, exitcode.General, exitcode.FromError(err))
}

func TestVersionStringsPreserveManifestOrder(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)
	assert.Equal(t, []string{"0.2.0", "0.1.0"}, m.VersionStrings())
}
