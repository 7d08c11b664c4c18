package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/motion/cmd/motion/internal/cache"
)

func init() {
	RegisterCommand(&Command{
		Name:  "clean",
		Short: "Remove downloaded engine libraries",
		Long: `Remove downloaded engine libraries from the local cache.

Without flags, removes every cached engine version. Use --version to
remove a single version.`,
		Usage: "motion clean [--version VERSION]",
		Run:   runClean,
	})
}

func runClean(args []string) error {
	version := ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			if i+1 < len(args) {
				version = args[i+1]
				i++
			} else {
				return fmt.Errorf("--version requires a value")
			}
		default:
			if strings.HasPrefix(args[i], "--version=") {
				version = strings.TrimPrefix(args[i], "--version=")
			} else {
				return fmt.Errorf("unknown flag: %s", args[i])
			}
		}
	}

	cacheRoot, err := cache.Root()
	if err != nil {
		return err
	}
	libDir := filepath.Join(cacheRoot, "lib")

	if version != "" {
		normalized := cache.NormalizeVersion(version)
		if normalized == "" {
			return fmt.Errorf("invalid version %q", version)
		}
		target := filepath.Join(libDir, normalized)
		if _, err := os.Stat(target); os.IsNotExist(err) {
			return fmt.Errorf("version %s is not in the cache", normalized)
		}
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("failed to remove %s: %w", target, err)
		}
		fmt.Printf("Removed %s\n", target)
		return nil
	}

	if _, err := os.Stat(libDir); os.IsNotExist(err) {
		fmt.Println("Engine cache is already empty")
		return nil
	}
	if err := os.RemoveAll(libDir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", libDir, err)
	}
	fmt.Printf("Removed %s\n", libDir)
	return nil
}
