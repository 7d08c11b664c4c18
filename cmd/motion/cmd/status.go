package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-drift/motion/cmd/motion/internal/cache"
	"github.com/go-drift/motion/cmd/motion/internal/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "status",
		Short: "Show project and engine status",
		Long: `Show the current status of the Motion project and engine cache.

Displays the host project's module path and pinned engine version (from
motion.yaml, if any), followed by the engine versions present in the
local cache and the platforms each one provides.`,
		Usage: "motion status",
		Run:   runStatus,
	})
}

func runStatus(args []string) error {
	// Project information is optional: status still reports the cache when
	// run outside a Go module.
	if root, err := config.FindProjectRoot(); err == nil {
		cfg, err := config.Resolve(root)
		if err != nil {
			return err
		}

		fmt.Printf("Project: %s (%s)\n", cfg.ProjectName, cfg.ModulePath)
		if cfg.EngineVersion != "" {
			fmt.Printf("Engine:  pinned %s [%s]\n", cfg.EngineVersion, strings.Join(cfg.Platforms, ", "))
		} else {
			fmt.Printf("Engine:  tracks CLI (%s) [%s]\n", cache.EngineVersion(), strings.Join(cfg.Platforms, ", "))
		}
	} else {
		fmt.Println("Project: none (not in a Go module)")
	}

	cacheRoot, err := cache.Root()
	if err != nil {
		return err
	}

	versions, err := cache.List()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Cached engine versions (%s):\n", filepath.Join(cacheRoot, "lib"))
	if len(versions) == 0 {
		fmt.Println("  none - run 'motion fetch-engine' to download")
		return nil
	}
	for _, v := range versions {
		fmt.Printf("  %-12s %s\n", v.Version, strings.Join(v.Platforms, ", "))
	}

	return nil
}
