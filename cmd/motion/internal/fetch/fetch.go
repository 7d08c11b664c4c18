// Package fetch provides HTTP download utilities and GitHub API interactions
// for fetching prebuilt engine binaries.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Downloader handles HTTP downloads with configurable timeouts.
type Downloader struct {
	client *http.Client
}

// NewDownloader creates a downloader with the specified timeout.
func NewDownloader(timeout time.Duration) *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// DefaultDownloader returns a downloader with a 5-minute timeout.
func DefaultDownloader() *Downloader {
	return NewDownloader(5 * time.Minute)
}

// Download fetches the URL and writes it to destPath atomically. The body is
// first streamed to a temporary file in the same directory and only renamed
// to the final path once the whole transfer succeeded.
//
// When expectedSHA256 is non-empty, the checksum is computed while streaming
// and verified before the rename, so a corrupt transfer never lands at
// destPath.
func (d *Downloader) Download(ctx context.Context, url, destPath, expectedSHA256 string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Create temp file in same directory for atomic rename
	tmpFile, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on error
	success := false
	defer func() {
		if !success {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s returned %s", url, resp.Status)
	}

	// Stream to the temp file, hashing as we go.
	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmpFile, hash), resp.Body); err != nil {
		return fmt.Errorf("failed to write download: %w", err)
	}

	// Close before rename
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if expectedSHA256 != "" {
		actual := hex.EncodeToString(hash.Sum(nil))
		if actual != expectedSHA256 {
			return &ChecksumError{
				URL:      url,
				Expected: expectedSHA256,
				Actual:   actual,
			}
		}
	}

	// Atomic rename
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// fetchJSON fetches the URL and decodes the response body into v.
// Useful for small JSON responses like manifests.
func (d *Downloader) fetchJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch failed: %s returned %s", url, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", url, err)
	}

	return nil
}

// ChecksumError is returned when a download's checksum doesn't match the
// value published in the release manifest.
type ChecksumError struct {
	URL      string
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s\nExpected: %s\nActual:   %s", e.URL, e.Expected, e.Actual)
}
