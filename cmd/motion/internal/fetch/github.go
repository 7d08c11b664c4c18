package fetch

import (
	"context"
	"fmt"
)

const (
	// GitHubRepo is the repository for Motion engine releases.
	GitHubRepo = "go-drift/motion"

	// GitHubAPILatestRelease is the endpoint for fetching the latest release.
	GitHubAPILatestRelease = "https://api.github.com/repos/" + GitHubRepo + "/releases/latest"

	// GitHubReleaseDownloadBase is the base URL for release downloads.
	GitHubReleaseDownloadBase = "https://github.com/" + GitHubRepo + "/releases/download"
)

// Manifest represents the manifest.json file in a release.
type Manifest struct {
	Android *PlatformManifest `json:"android,omitempty"`
	IOS     *PlatformManifest `json:"ios,omitempty"`
}

// PlatformManifest contains checksum information for a platform tarball.
type PlatformManifest struct {
	SHA256 string `json:"sha256"`
}

// Platform returns the manifest entry for a platform name, or nil if the
// release carries no artifact for it.
func (m *Manifest) Platform(name string) *PlatformManifest {
	switch name {
	case "android":
		return m.Android
	case "ios":
		return m.IOS
	default:
		return nil
	}
}

// releaseResponse is the GitHub API response for a release.
type releaseResponse struct {
	TagName string `json:"tag_name"`
}

// FetchLatestRelease fetches the latest release tag from GitHub.
func FetchLatestRelease(ctx context.Context, d *Downloader) (string, error) {
	return fetchLatestRelease(ctx, d, GitHubAPILatestRelease)
}

func fetchLatestRelease(ctx context.Context, d *Downloader, url string) (string, error) {
	var resp releaseResponse
	if err := d.fetchJSON(ctx, url, &resp); err != nil {
		return "", fmt.Errorf("failed to fetch latest release: %w", err)
	}

	if resp.TagName == "" {
		return "", fmt.Errorf("no tag_name in release response")
	}

	return resp.TagName, nil
}

// FetchManifest downloads and parses the manifest.json for a release.
func FetchManifest(ctx context.Context, d *Downloader, version string) (*Manifest, error) {
	return fetchManifest(ctx, d, ManifestURL(version))
}

func fetchManifest(ctx context.Context, d *Downloader, url string) (*Manifest, error) {
	var m Manifest
	if err := d.fetchJSON(ctx, url, &m); err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}

	return &m, nil
}

// ManifestURL returns the URL for the manifest.json of a release.
func ManifestURL(version string) string {
	return fmt.Sprintf("%s/%s/manifest.json", GitHubReleaseDownloadBase, version)
}

// TarballURL returns the download URL for a platform tarball.
func TarballURL(version, platform string) string {
	return fmt.Sprintf("%s/%s/motion-%s-%s.tar.gz", GitHubReleaseDownloadBase, version, version, platform)
}

// TarballName returns the release asset name for a platform tarball.
func TarballName(version, platform string) string {
	return fmt.Sprintf("motion-%s-%s.tar.gz", version, platform)
}
