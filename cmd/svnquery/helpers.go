package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/svnquery/svnquery/internal/config"
	"github.com/svnquery/svnquery/internal/logging"
	"github.com/svnquery/svnquery/internal/svn"
)

// ANSI escape codes for colored output.
const (
	bold   = "\033[1m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	red    = "\033[31m"
	reset  = "\033[0m"
)

// spinner frames for progress display.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// loadConfig reads the config file named by --config and overlays the
// environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the zap logger described by the config.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format)
}

// openRepository validates the repository settings and returns a pooled
// facade for them.
func openRepository(cfg *config.Config) (*svn.Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	user, pass, err := cfg.ResolveCredentials()
	if err != nil {
		return nil, err
	}
	return svn.NewRepository(cfg.Repository.URL, user, pass), nil
}

// truncateText shortens a string to the given max length, appending "..." if
// truncation occurs. It also replaces newlines with spaces for single-line display.
func truncateText(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// formatBytes returns a human-readable byte size string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// writeOutput renders data as JSON (if --json flag is set) or invokes
// the human-readable callback.
func writeOutput(cmd *cobra.Command, data any, humanFn func()) {
	jsonMode, _ := cmd.Flags().GetBool("json")
	if jsonMode {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(data)
		return
	}
	humanFn()
}
