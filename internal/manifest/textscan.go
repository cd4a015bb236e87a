package manifest

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/qaatlas/ledger-install/internal/exitcode"
)

// TextResolver is the fallback strategy: pattern-based extraction from the
// raw manifest text, no JSON decoding involved.
//
// Known fragility: this strategy assumes formatting stability of the
// manifest — the platform key must appear within versionWindow lines of its
// "version" field, and the url/sha256 fields within artifactWindow lines of
// the platform key. Reordered fields or compacted output break it. The JSON
// strategy has no such assumption and is the default; this one exists for
// environments that need to mirror the historical zero-JSON-tooling path.
type TextResolver struct {
	logger *logrus.Entry
}

const (
	// versionWindow bounds how far past a "version" line the entry's
	// artifact block may extend.
	versionWindow = 32
	// artifactWindow bounds how far past a platform key its url and
	// sha256 fields may sit.
	artifactWindow = 4
)

var (
	latestPattern      = regexp.MustCompile(`"latest"\s*:\s*"([^"]+)"`)
	versionPattern     = regexp.MustCompile(`"version"\s*:\s*"([^"]+)"`)
	urlPattern         = regexp.MustCompile(`"url"\s*:\s*"([^"]+)"`)
	shaPattern         = regexp.MustCompile(`"sha256"\s*:\s*"([^"]+)"`)
	platformKeyPattern = regexp.MustCompile(`"([a-z0-9]+-[a-z0-9]+)"\s*:\s*\{`)
)

func (r *TextResolver) Resolve(data []byte, req Request) (*Resolution, error) {
	if req.Companion {
		return nil, exitcode.New(exitcode.NotFound,
			"companion resolution requires the json parser strategy")
	}

	text := string(data)

	version := req.Version
	if version == LatestAlias {
		m := latestPattern.FindStringSubmatch(text)
		if m == nil {
			return nil, exitcode.New(exitcode.General, "manifest has no latest pointer")
		}
		version = m[1]
	}

	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		if m := versionPattern.FindStringSubmatch(line); m != nil && m[1] == version {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, exitcode.New(exitcode.NotFound,
			"version %s not found in manifest (known versions: %s)",
			version, strings.Join(r.knownVersions(lines), ", "))
	}

	// The entry's window ends at the next version key or the line budget,
	// whichever comes first.
	end := start + 1 + versionWindow
	if end > len(lines) {
		end = len(lines)
	}
	for i := start + 1; i < end; i++ {
		if versionPattern.MatchString(lines[i]) {
			end = i
			break
		}
	}

	keyPattern := regexp.MustCompile(`"` + regexp.QuoteMeta(req.PlatformKey) + `"\s*:`)
	keyLine := -1
	for i := start + 1; i < end; i++ {
		if keyPattern.MatchString(lines[i]) {
			keyLine = i
			break
		}
	}
	if keyLine == -1 {
		return nil, exitcode.New(exitcode.NotFound,
			"platform %s not found for version %s (available platforms: %s)",
			req.PlatformKey, version, strings.Join(r.platformKeys(lines[start+1:end]), ", "))
	}

	subEnd := keyLine + artifactWindow
	if subEnd > end {
		subEnd = end
	}
	window := strings.Join(lines[keyLine:subEnd], "\n")

	urlMatch := urlPattern.FindStringSubmatch(window)
	shaMatch := shaPattern.FindStringSubmatch(window)
	if urlMatch == nil || shaMatch == nil {
		r.logger.WithFields(logrus.Fields{
			"version":  version,
			"platform": req.PlatformKey,
		}).Error("Text extraction window did not contain url/sha256 fields")
		return nil, exitcode.New(exitcode.NotFound,
			"could not extract artifact fields for %s/%s from manifest text",
			version, req.PlatformKey)
	}

	art := Artifact{URL: urlMatch[1], SHA256: shaMatch[1]}
	if !art.Released() {
		return nil, exitcode.New(exitcode.NotFound,
			"version %s is not yet released for %s", version, req.PlatformKey)
	}
	return &Resolution{Version: version, Artifact: art}, nil
}

func (r *TextResolver) knownVersions(lines []string) []string {
	var out []string
	for _, line := range lines {
		if m := versionPattern.FindStringSubmatch(line); m != nil {
			out = append(out, m[1])
		}
	}
	return out
}

func (r *TextResolver) platformKeys(window []string) []string {
	var out []string
	for _, line := range window {
		if m := platformKeyPattern.FindStringSubmatch(line); m != nil {
			out = append(out, m[1])
		}
	}
	return out
}
