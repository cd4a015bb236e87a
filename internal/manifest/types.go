package manifest

import "strings"

// Manifest is the remote version document. It lists every releasable version
// of the ledger binary together with per-platform download URLs and SHA256
// checksums. The document is fetched fresh on every invocation.
type Manifest struct {
	Tool             string         `json:"tool"`
	Latest           string         `json:"latest"`
	MinimumSupported string         `json:"minimum_supported"`
	CompanionTool    string         `json:"companion_tool,omitempty"`
	Versions         []VersionEntry `json:"versions"`
}

// VersionEntry describes a single release. Version strings are unique within
// a manifest; lookups are exact string matches, never semver ordering.
type VersionEntry struct {
	Version          string              `json:"version"`
	ReleaseDate      string              `json:"release_date"`
	SourceCommit     string              `json:"source_commit"`
	Artifacts        map[string]Artifact `json:"artifacts"`
	CompanionVersion string              `json:"companion_version,omitempty"`
	Companion        map[string]Artifact `json:"companion,omitempty"`
}

// Artifact is one downloadable binary for a version/platform pair.
type Artifact struct {
	URL    string `json:"url"`
	SHA256 string `json:"sha256"`
}

// placeholderPrefix marks artifacts that are declared in the manifest but
// not yet published by the release pipeline.
const placeholderPrefix = "PLACEHOLDER_"

// Released reports whether the artifact carries a real checksum rather than
// the not-yet-released placeholder sentinel.
func (a Artifact) Released() bool {
	return !strings.HasPrefix(a.SHA256, placeholderPrefix)
}

// VersionStrings returns every version string in manifest order, used to
// enumerate known versions in not-found diagnostics.
func (m *Manifest) VersionStrings() []string {
	out := make([]string, 0, len(m.Versions))
	for _, v := range m.Versions {
		out = append(out, v.Version)
	}
	return out
}
