package cmd

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func TestIsValidTarPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"simple file", "libmotion_engine.a", true},
		{"nested file", "android/arm64/libmotion_engine.a", true},
		{"dot-slash", "./android/libmotion_engine.a", true},
		{"inner dotdot that stays inside", "android/../ios/lib.a", true},

		{"empty", "", false},
		{"absolute", "/etc/passwd", false},
		{"traversal", "../escape.txt", false},
		{"deep traversal", "../../escape.txt", false},
		{"bare dotdot", "..", false},
		{"traversal after clean", "android/../../escape.txt", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isValidTarPath(tt.path); got != tt.want {
				t.Errorf("isValidTarPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

type tarEntry struct {
	name string
	body string
	dir  bool
}

// writeTarGz creates a gzipped tarball at path with the given entries.
func writeTarGz(t *testing.T, path string, entries []tarEntry) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gzw := gzip.NewWriter(f)
	tw := tar.NewWriter(gzw)
	for _, e := range entries {
		header := &tar.Header{Name: e.name, Mode: 0o644, Typeflag: tar.TypeReg, Size: int64(len(e.body))}
		if e.dir {
			header = &tar.Header{Name: e.name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		if err := tw.WriteHeader(header); err != nil {
			t.Fatal(err)
		}
		if !e.dir {
			if _, err := tw.Write([]byte(e.body)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gzw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExtractTarGz(t *testing.T) {
	tmp := t.TempDir()
	tarPath := filepath.Join(tmp, "engine.tar.gz")
	writeTarGz(t, tarPath, []tarEntry{
		{name: "android/", dir: true},
		{name: "android/arm64/libmotion_engine.a", body: "archive"},
		{name: "android/arm64/include/motion.h", body: "header"},
	})

	dest := filepath.Join(tmp, "out")
	if err := extractTarGz(tarPath, dest); err != nil {
		t.Fatalf("extractTarGz: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "android", "arm64", "libmotion_engine.a"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(got) != "archive" {
		t.Errorf("extracted content = %q, want %q", got, "archive")
	}
	if _, err := os.Stat(filepath.Join(dest, "android", "arm64", "include", "motion.h")); err != nil {
		t.Errorf("nested file not extracted: %v", err)
	}
}

func TestExtractTarGzSkipsUnsafeEntries(t *testing.T) {
	tmp := t.TempDir()
	tarPath := filepath.Join(tmp, "evil.tar.gz")
	writeTarGz(t, tarPath, []tarEntry{
		{name: "../escape.txt", body: "outside"},
		{name: "safe.txt", body: "inside"},
	})

	dest := filepath.Join(tmp, "out")
	if err := extractTarGz(tarPath, dest); err != nil {
		t.Fatalf("extractTarGz: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmp, "escape.txt")); !os.IsNotExist(err) {
		t.Error("traversal entry escaped the destination directory")
	}
	if _, err := os.Stat(filepath.Join(dest, "safe.txt")); err != nil {
		t.Errorf("safe entry not extracted: %v", err)
	}
}

func TestResolveVersion(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		env     string
		pinned  string
		cli     string
		want    string
		wantErr bool
	}{
		{"flag wins", "v0.9.0", "v0.1.0", "v0.2.0", "v0.3.0", "v0.9.0", false},
		{"flag without v", "0.9.0", "", "", "", "v0.9.0", false},
		{"flag with tarball prefix", "motion-v0.9.0", "", "", "", "v0.9.0", false},
		{"invalid flag is an error", "garbage", "v0.1.0", "", "", "", true},
		{"dev flag is an error", "0.1.0-dev", "", "", "", "", true},

		{"env wins over pin", "", "v0.1.0", "v0.2.0", "v0.3.0", "v0.1.0", false},
		{"invalid env falls through", "", "not-a-version", "v0.2.0", "", "v0.2.0", false},
		{"pin wins over cli", "", "", "v0.2.0", "v0.3.0", "v0.2.0", false},
		{"cli release", "", "", "", "v0.3.0", "v0.3.0", false},
		{"cli dev build yields empty", "", "", "", "0.1.0-dev", "", false},
		{"nothing", "", "", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveVersion(tt.flag, tt.env, tt.pinned, tt.cli)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveVersion error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveVersion = %q, want %q", got, tt.want)
			}
		})
	}
}
