package manifest

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/qaatlas/ledger-install/internal/exitcode"
)

// LatestAlias is the literal version string that resolves to the manifest's
// latest pointer.
const LatestAlias = "latest"

// Request identifies what to look up in a manifest document.
type Request struct {
	Version     string // exact version string, or LatestAlias
	PlatformKey string
	Companion   bool // resolve the companion artifact instead of the primary
}

// Resolution is a successful lookup: the resolved version string (after any
// latest-pointer indirection) and the artifact to download.
type Resolution struct {
	Version  string
	Artifact Artifact
}

// Resolver extracts an artifact descriptor from raw manifest bytes. The
// strategy is chosen once at configuration time: structured JSON parsing or
// pattern-based text extraction.
type Resolver interface {
	Resolve(data []byte, req Request) (*Resolution, error)
}

// Strategy names accepted by NewResolver.
const (
	StrategyJSON = "json"
	StrategyText = "text"
)

// NewResolver returns the resolver for the named strategy.
func NewResolver(strategy string, logger *logrus.Entry) (Resolver, error) {
	switch strategy {
	case StrategyJSON, "":
		return &JSONResolver{logger: logger}, nil
	case StrategyText:
		return &TextResolver{logger: logger}, nil
	default:
		return nil, exitcode.New(exitcode.General, "unknown manifest parser strategy: %s", strategy)
	}
}

// JSONResolver resolves against the fully decoded manifest structure. This
// is the default strategy.
type JSONResolver struct {
	logger *logrus.Entry
}

func (r *JSONResolver) Resolve(data []byte, req Request) (*Resolution, error) {
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}

	entry, err := m.LookupVersion(req.Version)
	if err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"version":  entry.Version,
		"platform": req.PlatformKey,
	}).Debug("Resolved version entry")

	if req.Companion {
		return entry.companionResolution(req.PlatformKey)
	}
	art, err := entry.Artifact(req.PlatformKey)
	if err != nil {
		return nil, err
	}
	return &Resolution{Version: entry.Version, Artifact: art}, nil
}

// LookupVersion finds the entry for the requested version string, resolving
// the latest pointer first. Matching is exact string equality.
func (m *Manifest) LookupVersion(requested string) (*VersionEntry, error) {
	if requested == LatestAlias {
		if m.Latest == "" {
			return nil, exitcode.New(exitcode.General, "manifest has no latest pointer")
		}
		requested = m.Latest
	}

	for i := range m.Versions {
		if m.Versions[i].Version == requested {
			return &m.Versions[i], nil
		}
	}

	return nil, exitcode.New(exitcode.NotFound,
		"version %s not found in manifest (known versions: %s)",
		requested, strings.Join(m.VersionStrings(), ", "))
}

// Artifact returns the primary artifact for the platform key. A missing
// platform and a placeholder checksum are both resolution failures, but they
// carry distinct messages: the former lists what is available, the latter
// says the version exists and simply has not shipped for this platform yet.
func (e *VersionEntry) Artifact(platformKey string) (Artifact, error) {
	art, ok := e.Artifacts[platformKey]
	if !ok {
		return Artifact{}, exitcode.New(exitcode.NotFound,
			"platform %s not found for version %s (available platforms: %s)",
			platformKey, e.Version, strings.Join(sortedKeys(e.Artifacts), ", "))
	}
	if !art.Released() {
		return Artifact{}, exitcode.New(exitcode.NotFound,
			"version %s is not yet released for %s", e.Version, platformKey)
	}
	return art, nil
}

func (e *VersionEntry) companionResolution(platformKey string) (*Resolution, error) {
	if len(e.Companion) == 0 {
		return nil, exitcode.New(exitcode.NotFound,
			"no companion artifacts published for version %s", e.Version)
	}
	art, ok := e.Companion[platformKey]
	if !ok {
		return nil, exitcode.New(exitcode.NotFound,
			"companion platform %s not found for version %s (available platforms: %s)",
			platformKey, e.Version, strings.Join(sortedKeys(e.Companion), ", "))
	}
	if !art.Released() {
		return nil, exitcode.New(exitcode.NotFound,
			"companion for version %s is not yet released for %s", e.Version, platformKey)
	}
	version := e.CompanionVersion
	if version == "" {
		version = e.Version
	}
	return &Resolution{Version: version, Artifact: art}, nil
}

func sortedKeys(m map[string]Artifact) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
