package manifest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qaatlas/ledger-install/internal/exitcode"
)

const fetchTimeout = 30 * time.Second

// maxManifestSize bounds how much of the manifest body is read. Real
// manifests are a few kilobytes; anything past this is a broken server.
const maxManifestSize = 4 << 20

// Fetcher retrieves the raw manifest document over HTTP.
type Fetcher struct {
	httpClient *http.Client
	logger     *logrus.Entry
}

// NewFetcher returns a Fetcher with a bounded-timeout HTTP client.
func NewFetcher(logger *logrus.Entry) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: fetchTimeout},
		logger:     logger,
	}
}

// Fetch issues a GET for the manifest URL and returns the raw body. Any
// transport failure or non-2xx status is a download failure: manifest
// retrieval is itself a download.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.logger.WithField("url", url).Debug("Fetching version manifest")

	reqCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, exitcode.New(exitcode.DownloadFailed, "failed to create manifest request: %v", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, exitcode.Wrap(exitcode.DownloadFailed, ctx.Err())
		}
		f.logger.WithError(err).Error("Failed to fetch manifest")
		return nil, exitcode.New(exitcode.DownloadFailed, "failed to fetch manifest from %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, exitcode.New(exitcode.DownloadFailed, "manifest fetch returned status %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
	if err != nil {
		return nil, exitcode.New(exitcode.DownloadFailed, "failed to read manifest body: %v", err)
	}

	f.logger.WithField("bytes", len(data)).Debug("Manifest fetch completed")
	return data, nil
}

// Parse decodes the manifest document. A body that is not valid JSON is a
// general error, not a resolution error: the document exists but is unusable.
func Parse(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, exitcode.New(exitcode.General, "failed to parse manifest: empty document")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, exitcode.New(exitcode.General, "failed to parse manifest: %v", err)
	}
	if len(m.Versions) == 0 {
		return nil, exitcode.New(exitcode.General, "manifest contains no versions")
	}
	return &m, nil
}
