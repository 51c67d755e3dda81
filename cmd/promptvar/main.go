package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/promptab/promptvar/internal/config"
	"github.com/promptab/promptvar/internal/history"
	"github.com/promptab/promptvar/internal/mcp"
	"github.com/promptab/promptvar/internal/remote"
	"github.com/promptab/promptvar/internal/storage"
	"github.com/promptab/promptvar/internal/variable"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"scan": true, "preview": true, "replace": true, "insert": true,
	"var": true, "history": true,
	"optimize": true, "pull": true, "push": true,
	"serve": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
  .---------------------.
  |  p r o m p t v a r  |
  '---------------------'

  Prompt placeholder and variable library

  Usage: promptvar <command> [options]
         promptvar --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before storage init (no storage needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".promptvar")

	adapter, err := storage.Open(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize storage: %v\n", err)
		os.Exit(1)
	}
	defer adapter.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	adapter.ConfigurePool(cfg)

	store := variable.NewStore(adapter)
	buffer := history.NewBuffer(adapter)

	var client *remote.Client
	if cfg.APIBaseURL != "" {
		client = remote.NewClient(cfg.APIBaseURL, cfg.APIToken)
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(store, buffer, cfg, client)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'promptvar --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(store, buffer, cfg, client, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
