// Package cmd implements the Motion CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (fetch-engine, status, clean).
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-drift/motion/cmd/motion/internal/cache"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(args []string) error
	SubCommands []*Command
}

var rootCmd = &Command{
	Name:  "motion",
	Short: "Motion - native animation engine bindings for Go",
	Long: `Motion binds Go mobile apps to a native motion-graphics engine for
rendering designer-authored animations. This CLI manages the prebuilt
engine libraries your app links against.

Use "motion <command> --help" for more information about a command.`,
	Usage: "motion <command> [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// Execute runs the CLI with the given arguments.
func Execute() error {
	cache.SetGlobal(Version)

	args := os.Args[1:]

	// Handle no arguments
	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Handle global flags and extract --cache-dir
	var filteredArgs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help", "help":
			if len(filteredArgs) == 0 {
				printHelp(rootCmd)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "-v", "--version", "version":
			if len(filteredArgs) == 0 {
				fmt.Printf("Motion CLI version %s (built %s)\n", Version, BuildTime)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "--cache-dir":
			if i+1 < len(args) {
				cache.SetCacheDir(args[i+1])
				i++
			} else {
				return fmt.Errorf("--cache-dir requires a directory path")
			}
		default:
			if strings.HasPrefix(arg, "--cache-dir=") {
				cache.SetCacheDir(strings.TrimPrefix(arg, "--cache-dir="))
				continue
			}
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs

	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Find and execute the command
	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		printHelp(rootCmd)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	// Check for help flag on subcommand
	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	return cmd.Run(cmdArgs)
}

func printHelp(cmd *Command) {
	fmt.Println(cmd.Long)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s\n", cmd.Usage)
	fmt.Println()
	fmt.Println("Commands:")
	for _, sub := range cmd.SubCommands {
		fmt.Printf("  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -h, --help           Show help for a command")
	fmt.Println("  -v, --version        Show version information")
	fmt.Println("  --cache-dir DIR      Override cache directory (default: ~/.motion)")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  MOTION_CACHE_DIR     Cache directory override (lower priority than --cache-dir)")
	fmt.Println("  MOTION_VERSION       Engine version override for fetch-engine")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  motion fetch-engine        Download engine libraries for all platforms")
	fmt.Println("  motion status              Show project and cached engine versions")
	fmt.Println("  motion clean               Remove downloaded engine libraries")
}

func printCommandHelp(cmd *Command) {
	fmt.Println(cmd.Long)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s\n", cmd.Usage)
}
