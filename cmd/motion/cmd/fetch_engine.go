package cmd

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/motion/cmd/motion/internal/cache"
	"github.com/go-drift/motion/cmd/motion/internal/config"
	"github.com/go-drift/motion/cmd/motion/internal/fetch"
)

func init() {
	RegisterCommand(&Command{
		Name:  "fetch-engine",
		Short: "Download prebuilt engine libraries",
		Long: `Download prebuilt Motion engine libraries from GitHub Releases.

By default, downloads libraries for both Android and iOS platforms,
or for the platforms pinned in motion.yaml when run inside a project.
Use --android or --ios to download only one platform.

The version is determined in this order:
  1. --version flag
  2. MOTION_VERSION environment variable
  3. engine.version in motion.yaml
  4. CLI version (for release builds)
  5. Latest release from GitHub (fallback)

Libraries are stored in: ~/.motion/lib/<version>/<platform>/<arch>/`,
		Usage: "motion fetch-engine [--android] [--ios] [--version VERSION]",
		Run:   runFetchEngine,
	})
}

// FetchEngineOptions configures which platforms to fetch.
type FetchEngineOptions struct {
	Android bool
	IOS     bool
	Version string // Override version (empty = auto-detect)
}

func runFetchEngine(args []string) error {
	opts := FetchEngineOptions{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--android":
			opts.Android = true
		case "--ios":
			opts.IOS = true
		case "--version":
			if i+1 < len(args) {
				opts.Version = args[i+1]
				i++
			} else {
				return fmt.Errorf("--version requires a value")
			}
		default:
			if strings.HasPrefix(args[i], "--version=") {
				opts.Version = strings.TrimPrefix(args[i], "--version=")
			} else {
				return fmt.Errorf("unknown flag: %s", args[i])
			}
		}
	}

	return FetchEngine(context.Background(), opts)
}

// FetchEngine downloads prebuilt engine libraries for the specified
// platforms. Exported so host tooling can invoke it programmatically.
func FetchEngine(ctx context.Context, opts FetchEngineOptions) error {
	d := fetch.DefaultDownloader()

	// Project configuration is optional: fetch-engine also works outside a
	// Go module, it just loses the motion.yaml pin and platform list.
	var cfg *config.Resolved
	if root, err := config.FindProjectRoot(); err == nil {
		cfg, err = config.Resolve(root)
		if err != nil {
			return err
		}
	}

	// Default platform set: flags, then the project pin, then both.
	if !opts.Android && !opts.IOS {
		if cfg != nil {
			for _, p := range cfg.Platforms {
				switch p {
				case "android":
					opts.Android = true
				case "ios":
					opts.IOS = true
				}
			}
		} else {
			opts.Android = true
			opts.IOS = true
		}
	}

	pinned := ""
	if cfg != nil {
		pinned = cfg.EngineVersion
	}
	version, err := resolveVersion(opts.Version, os.Getenv("MOTION_VERSION"), pinned, Version)
	if err != nil {
		return err
	}
	if version == "" {
		fmt.Println("Fetching latest release version from GitHub...")
		latest, err := fetch.FetchLatestRelease(ctx, d)
		if err != nil {
			return fmt.Errorf("failed to determine version: %w\n\nSet MOTION_VERSION or use --version flag", err)
		}
		// Normalize the tag in case it has the motion- prefix
		version = cache.NormalizeVersion(latest)
		if version == "" {
			return fmt.Errorf("latest release tag %q is not a valid version", latest)
		}
	}

	fmt.Printf("Fetching Motion engine %s...\n", version)

	// Fetch manifest
	fmt.Println("  Downloading manifest...")
	manifest, err := fetch.FetchManifest(ctx, d, version)
	if err != nil {
		return err
	}

	// Determine output directory
	cacheRoot, err := cache.Root()
	if err != nil {
		return err
	}
	libDir := filepath.Join(cacheRoot, "lib", version)

	// Download and extract platforms
	platforms := []struct {
		name    string
		enabled bool
	}{
		{"android", opts.Android},
		{"ios", opts.IOS},
	}

	for _, p := range platforms {
		if !p.enabled {
			continue
		}
		pm := manifest.Platform(p.name)
		if pm == nil {
			fmt.Printf("  Warning: no %s artifact in manifest, skipping\n", p.name)
			continue
		}

		if err := fetchPlatform(ctx, d, version, p.name, pm.SHA256, libDir); err != nil {
			return fmt.Errorf("failed to fetch %s: %w", p.name, err)
		}
	}

	fmt.Printf("Motion engine artifacts extracted to %s\n", libDir)
	return nil
}

// resolveVersion picks the engine version from the highest-priority source:
// the --version flag, the MOTION_VERSION environment variable, the
// project's pinned engine.version, then the CLI's own release version. An
// empty result means the caller should fall back to the latest release.
//
// An explicit flag value must be a valid release; the lower-priority
// sources fall through silently when invalid.
func resolveVersion(flagVersion, envVersion, pinnedVersion, cliVersion string) (string, error) {
	if flagVersion != "" {
		version := cache.NormalizeVersion(flagVersion)
		if version == "" {
			return "", fmt.Errorf("invalid version %q (pseudo-versions and dev builds are not supported)\n\nUse a release version like v0.2.0 or omit --version to fetch latest", flagVersion)
		}
		return version, nil
	}
	if version := cache.NormalizeVersion(envVersion); version != "" {
		return version, nil
	}
	if version := cache.NormalizeVersion(pinnedVersion); version != "" {
		return version, nil
	}
	return cache.NormalizeVersion(cliVersion), nil
}

func fetchPlatform(ctx context.Context, d *fetch.Downloader, version, platform, expectedSHA256, libDir string) error {
	tarballName := fetch.TarballName(version, platform)
	url := fetch.TarballURL(version, platform)

	// Create temp file for download
	tmpDir, err := os.MkdirTemp("", "motion-fetch-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tarPath := filepath.Join(tmpDir, tarballName)

	fmt.Printf("  Downloading %s...\n", tarballName)
	if err := d.Download(ctx, url, tarPath, expectedSHA256); err != nil {
		return err
	}

	fmt.Printf("  Extracting %s...\n", platform)
	if err := extractTarGz(tarPath, libDir); err != nil {
		return fmt.Errorf("failed to extract tarball: %w", err)
	}

	return nil
}

func extractTarGz(tarPath, destDir string) error {
	f, err := os.Open(tarPath)
	if err != nil {
		return err
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		// Validate and clean path to prevent directory traversal
		if !isValidTarPath(header.Name) {
			continue
		}

		cleanName := filepath.Clean(header.Name)
		target := filepath.Join(destDir, cleanName)

		// Final safety check: ensure target is within destDir
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(outFile, tr); err != nil {
				outFile.Close()
				return err
			}
			outFile.Close()
		}
	}

	return nil
}

// isValidTarPath checks if a tar entry path is safe to extract.
func isValidTarPath(name string) bool {
	// Reject empty names
	if name == "" {
		return false
	}

	// Reject absolute paths
	if filepath.IsAbs(name) {
		return false
	}

	// Clean the path and check for directory traversal
	clean := filepath.Clean(name)

	// Reject paths that escape the root (start with ..)
	if strings.HasPrefix(clean, ".."+string(os.PathSeparator)) || clean == ".." {
		return false
	}

	return true
}
