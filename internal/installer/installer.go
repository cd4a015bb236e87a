// Package installer downloads a release artifact, verifies its SHA256
// checksum and places it in the install directory. The flow is linear with
// no retries: download, verify, install, post-check. A failure at any stage
// is terminal for that artifact.
package installer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qaatlas/ledger-install/internal/exitcode"
)

const downloadTimeout = 300 * time.Second

const (
	dirPerm    = 0o755
	binaryPerm = 0o755
)

// Task describes one artifact to download and install.
type Task struct {
	URL        string
	SHA256     string // expected digest, lowercase hex
	InstallDir string
	BinaryName string
}

// Installer performs download/verify/install sequences.
type Installer struct {
	httpClient *http.Client
	logger     *logrus.Entry
}

// New returns an Installer with a bounded-timeout HTTP client.
func New(logger *logrus.Entry) *Installer {
	return &Installer{
		httpClient: &http.Client{Timeout: downloadTimeout},
		logger:     logger,
	}
}

// Install runs the full sequence for one artifact and returns the installed
// path. The temporary download file is removed on every exit path, including
// checksum failure and context cancellation.
func (i *Installer) Install(ctx context.Context, task Task) (string, error) {
	i.logger.WithFields(logrus.Fields{
		"url":    task.URL,
		"binary": task.BinaryName,
		"dir":    task.InstallDir,
	}).Info("Starting binary download")

	tempFile, err := os.CreateTemp("", task.BinaryName+"-download-*")
	if err != nil {
		return "", exitcode.New(exitcode.General, "failed to create temp file: %v", err)
	}
	defer func() {
		tempFile.Close()
		os.Remove(tempFile.Name())
	}()

	if err := i.downloadFile(ctx, task.URL, tempFile); err != nil {
		return "", err
	}

	if err := i.verifyChecksum(tempFile.Name(), task.SHA256); err != nil {
		return "", err
	}

	if err := os.MkdirAll(task.InstallDir, dirPerm); err != nil {
		return "", exitcode.New(exitcode.General, "failed to create install directory %s: %v", task.InstallDir, err)
	}

	destPath := filepath.Join(task.InstallDir, task.BinaryName)
	tempFile.Close()
	if err := i.moveFile(tempFile.Name(), destPath); err != nil {
		return "", exitcode.New(exitcode.General, "failed to move binary to destination: %v", err)
	}

	if err := os.Chmod(destPath, binaryPerm); err != nil {
		return "", exitcode.New(exitcode.General, "failed to set permissions for %s: %v", destPath, err)
	}

	// Freshly downloaded executables can be blocked at execution time by
	// the OS provenance marker; clearing it is best-effort.
	if err := clearQuarantine(destPath); err != nil {
		i.logger.WithError(err).Warning("Failed to clear quarantine attribute")
	}

	i.logger.WithField("path", destPath).Info("Successfully installed binary")
	return destPath, nil
}

// downloadFile streams the artifact URL into the given file handle with
// context-aware cancellation.
func (i *Installer) downloadFile(ctx context.Context, url string, dest *os.File) error {
	i.logger.WithField("url", url).Debug("Downloading file")

	downloadCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return exitcode.New(exitcode.DownloadFailed, "failed to create download request: %v", err)
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return exitcode.Wrap(exitcode.DownloadFailed, ctx.Err())
		}
		i.logger.WithError(err).Error("Failed to download file")
		return exitcode.New(exitcode.DownloadFailed, "failed to download %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return exitcode.New(exitcode.DownloadFailed, "download failed with status %d for %s", resp.StatusCode, url)
	}

	written, err := copyWithContext(ctx, dest, resp.Body)
	if err != nil {
		return exitcode.New(exitcode.DownloadFailed, "failed to save file: %v", err)
	}

	i.logger.WithField("bytes", written).Debug("File download completed")
	return nil
}

// verifyChecksum computes the SHA256 digest of the file's full contents and
// compares it to the expected value as an exact lowercase-hex string. A
// mismatch aborts installation unconditionally; it signals corruption or
// tampering, never something to warn past.
func (i *Installer) verifyChecksum(filePath, expectedSHA256 string) error {
	i.logger.WithField("expected", expectedSHA256).Debug("Verifying checksum")

	file, err := os.Open(filePath)
	if err != nil {
		return exitcode.New(exitcode.General, "failed to open file for checksum: %v", err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return exitcode.New(exitcode.General, "failed to calculate checksum: %v", err)
	}

	actualSHA256 := hex.EncodeToString(hasher.Sum(nil))
	if actualSHA256 != expectedSHA256 {
		i.logger.WithFields(logrus.Fields{
			"expected": expectedSHA256,
			"actual":   actualSHA256,
		}).Error("Checksum mismatch")
		return exitcode.New(exitcode.ChecksumMismatch,
			"checksum verification failed: expected %s, got %s", expectedSHA256, actualSHA256)
	}

	i.logger.Debug("Checksum verification successful")
	return nil
}

// moveFile relocates the verified file, falling back to copy+delete for
// cross-device moves.
func (i *Installer) moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	i.logger.Debug("Rename failed, falling back to copy+delete")

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to copy file: %w", err)
	}

	if err := dstFile.Sync(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := os.Remove(src); err != nil {
		i.logger.WithError(err).Warning("Failed to remove temporary file")
		// File was copied successfully; the deferred cleanup retries.
	}

	return nil
}

// copyWithContext copies data from src to dst, checking for cancellation
// before each read so an interrupted run unwinds promptly and the deferred
// temp-file cleanup still fires.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, 32*1024)
	var written int64

	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		nr, readErr := src.Read(buf)
		if nr > 0 {
			nw, writeErr := dst.Write(buf[:nr])
			if nw > 0 {
				written += int64(nw)
			}
			if writeErr != nil {
				return written, writeErr
			}
			if nr != nw {
				return written, io.ErrShortWrite
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return written, nil
			}
			return written, readErr
		}
	}
}
