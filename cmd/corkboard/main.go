// corkboard: project management MCP server.
//
// A board of workspaces, projects, and kanban tasks that AI assistants
// drive over MCP, with automatic project progress tracking.
//
// Usage:
//
//	corkboard serve            # SSE transport on :8808
//	corkboard serve --stdio    # stdio transport for a local client
//	corkboard update           # self-update to the latest release
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/corkboardhq/corkboard/internal/config"
	"github.com/corkboardhq/corkboard/internal/logging"
	"github.com/corkboardhq/corkboard/internal/server"
	"github.com/corkboardhq/corkboard/internal/updater"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	stdio     bool
	port      int
	dbPath    string
	storeURL  string
	storeKey  string
	workspace string
	origins   string
)

var rootCmd = &cobra.Command{
	Use:   "corkboard",
	Short: "corkboard - project management MCP server",
	Long: `corkboard gives AI assistants a project board over MCP: workspaces,
projects, and kanban tasks with automatic progress tracking.

Add it to your AI tool's MCP config:

  {
    "mcpServers": {
      "corkboard": {
        "command": "corkboard",
        "args": ["serve", "--stdio"]
      }
    }
  }

Or run it as a shared SSE server and point clients at http://host:8808/sse.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server. The default transport is SSE, which serves any
number of clients over HTTP. With --stdio the server speaks the MCP
stdio protocol to a single local client instead; logs stay on stderr.

Settings come from defaults, then ~/.corkboard/config.yaml (or --config),
then CORKBOARD_* environment variables, then these flags.`,
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the corkboard version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "corkboard v%s\n", server.Version)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update corkboard to the latest release",
	Run:   runUpdate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.corkboard/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	serveCmd.Flags().BoolVar(&stdio, "stdio", false, "Serve one local client over stdin/stdout instead of SSE")
	serveCmd.Flags().IntVar(&port, "port", 8808, "SSE listen port")
	serveCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path for the embedded backend")
	serveCmd.Flags().StringVar(&storeURL, "store-url", "", "Base URL of a PostgREST-style store (selects the HTTP backend)")
	serveCmd.Flags().StringVar(&storeKey, "store-key", "", "Credential for the HTTP backend")
	serveCmd.Flags().StringVar(&workspace, "workspace", "", "Default workspace ID for project listings")
	serveCmd.Flags().StringVar(&origins, "origins", "", "Comma-separated CORS origin allowlist")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	srv, cleanup, err := server.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Best-effort release check. The notice goes to stderr so it never
	// interferes with the stdio transport on stdout.
	go checkForUpdates()

	if stdio {
		return srv.ServeStdio()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ServeSSE(ctx)
}

// applyFlags copies explicitly-set serve flags over the loaded config.
// Unset flags leave the file and environment values alone.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("store-url") {
		cfg.StoreURL = storeURL
	}
	if flags.Changed("store-key") {
		cfg.StoreKey = storeKey
	}
	if flags.Changed("workspace") {
		cfg.DefaultWorkspace = workspace
	}
	if flags.Changed("origins") {
		cfg.AllowedOrigins = config.SplitOrigins(origins)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
}

// checkForUpdates prints a stderr notice when a newer release exists.
func checkForUpdates() {
	result := updater.CheckVersion(server.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  📦 Update available: v%s → v%s\n"+
				"     Run: corkboard update\n"+
				"     Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest release.
func runUpdate(cmd *cobra.Command, args []string) {
	fmt.Fprintln(os.Stderr, "🔍 Checking for updates...")

	result := updater.CheckVersion(server.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "✅ Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "📦 New version available: v%s → v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintln(os.Stderr, "⬇️  Downloading...")

	if err := updater.SelfUpdate(server.Version); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Update failed: %v\n", err)
		if result.ReleaseURL != "" {
			fmt.Fprintf(os.Stderr, "   Download manually from: %s\n", result.ReleaseURL)
		}
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "✅ Updated to v%s. Restart corkboard to use it.\n", result.LatestVersion)
}
