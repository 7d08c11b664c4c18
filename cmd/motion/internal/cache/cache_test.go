package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"release", "v0.1.0", "v0.1.0"},
		{"release without v", "0.1.0", "v0.1.0"},
		{"tarball prefix", "motion-v0.1.0", "v0.1.0"},
		{"prerelease", "v0.2.0-rc1", "v0.2.0-rc1"},
		{"prerelease without v", "0.2.0-rc1", "v0.2.0-rc1"},

		{"dev build", "0.1.0-dev", ""},
		{"pseudo-version", "v0.2.1-0.20260122153045-abc123", ""},
		{"empty", "", ""},
		{"garbage", "not-a-version", ""},
		{"two components", "v0.1", ""},
		{"four components", "v0.1.0.0", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeVersion(tt.input); got != tt.want {
				t.Errorf("NormalizeVersion(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSemverCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"v1.0.0", "v1.0.0", 0},
		{"v1.0.1", "v1.0.0", 1},
		{"v1.0.0", "v1.0.1", -1},
		{"v1.1.0", "v1.0.9", 1},
		{"v2.0.0", "v1.9.9", 1},
		{"v0.10.0", "v0.9.0", 1},
		// Prereleases parse as invalid and sort before releases.
		{"v1.0.0-rc1", "v1.0.0", -1},
		{"v1.0.0", "v1.0.0-rc1", 1},
	}
	for _, tt := range tests {
		if got := semverCompare(tt.a, tt.b); got != tt.want {
			t.Errorf("semverCompare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRootPriority(t *testing.T) {
	t.Cleanup(func() { SetCacheDir("") })

	t.Setenv("MOTION_CACHE_DIR", "/env/cache")

	// Env wins over the home default.
	got, err := Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if got != "/env/cache" {
		t.Errorf("Root with env = %q, want /env/cache", got)
	}

	// The flag wins over the env.
	SetCacheDir("/flag/cache")
	got, err = Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if got != "/flag/cache" {
		t.Errorf("Root with flag = %q, want /flag/cache", got)
	}
}

func TestRootDefault(t *testing.T) {
	t.Cleanup(func() { SetCacheDir("") })
	SetCacheDir("")
	t.Setenv("MOTION_CACHE_DIR", "")

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	got, err := Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if want := filepath.Join(home, ".motion"); got != want {
		t.Errorf("Root = %q, want %q", got, want)
	}
}

// seedEngine creates a fake cached engine library for version/platform/arch.
func seedEngine(t *testing.T, root, version, platform, arch string) {
	t.Helper()
	dir := filepath.Join(root, "lib", version, platform, arch)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, EngineLibName), []byte("archive"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindCachedVersionPicksHighest(t *testing.T) {
	root := t.TempDir()
	seedEngine(t, root, "v0.1.0", "android", "arm64")
	seedEngine(t, root, "v0.3.0", "android", "arm64")
	seedEngine(t, root, "v0.2.0", "android", "arm64")
	// A version missing the requested platform/arch is not a candidate.
	seedEngine(t, root, "v9.9.9", "ios", "arm64")

	got, err := findCachedVersion(root, "android", "arm64")
	if err != nil {
		t.Fatalf("findCachedVersion: %v", err)
	}
	if got != "v0.3.0" {
		t.Errorf("findCachedVersion = %q, want v0.3.0", got)
	}
}

func TestFindCachedVersionEmpty(t *testing.T) {
	root := t.TempDir()

	if _, err := findCachedVersion(root, "android", "arm64"); err == nil {
		t.Error("expected error for empty cache")
	}

	seedEngine(t, root, "v0.1.0", "ios", "arm64")
	if _, err := findCachedVersion(root, "android", "arm64"); err == nil {
		t.Error("expected error when no version has the requested platform")
	}
}

func TestLibDirReleaseVersion(t *testing.T) {
	root := t.TempDir()
	SetCacheDir(root)
	t.Cleanup(func() { SetCacheDir("") })

	SetGlobal("v0.4.0")
	t.Cleanup(func() { SetGlobal("") })

	got, err := LibDir("ios", "arm64")
	if err != nil {
		t.Fatalf("LibDir: %v", err)
	}
	if want := filepath.Join(root, "lib", "v0.4.0", "ios", "arm64"); got != want {
		t.Errorf("LibDir = %q, want %q", got, want)
	}
}

func TestLibDirDevBuildFallsBackToCache(t *testing.T) {
	root := t.TempDir()
	SetCacheDir(root)
	t.Cleanup(func() { SetCacheDir("") })

	SetGlobal("0.1.0-dev")
	t.Cleanup(func() { SetGlobal("") })

	seedEngine(t, root, "v0.2.0", "android", "arm64")

	got, err := LibDir("android", "arm64")
	if err != nil {
		t.Fatalf("LibDir: %v", err)
	}
	if want := filepath.Join(root, "lib", "v0.2.0", "android", "arm64"); got != want {
		t.Errorf("LibDir = %q, want %q", got, want)
	}
}

func TestList(t *testing.T) {
	root := t.TempDir()
	SetCacheDir(root)
	t.Cleanup(func() { SetCacheDir("") })

	seedEngine(t, root, "v0.1.0", "android", "arm64")
	seedEngine(t, root, "v0.2.0", "android", "arm64")
	seedEngine(t, root, "v0.2.0", "ios", "arm64")

	versions, err := List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("List returned %d versions, want 2", len(versions))
	}
	if versions[0].Version != "v0.2.0" || versions[1].Version != "v0.1.0" {
		t.Errorf("List order: got %q, %q; want v0.2.0, v0.1.0", versions[0].Version, versions[1].Version)
	}
	if len(versions[0].Platforms) != 2 {
		t.Errorf("v0.2.0 platforms: got %v, want [android ios]", versions[0].Platforms)
	}
}

func TestListEmptyCache(t *testing.T) {
	SetCacheDir(t.TempDir())
	t.Cleanup(func() { SetCacheDir("") })

	versions, err := List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if versions != nil {
		t.Errorf("List on empty cache = %v, want nil", versions)
	}
}
