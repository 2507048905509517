// Package cli implements the laneflow command-line interface.
//
// This package provides commands for converting flow documents into BPMN
// diagrams and other renderings, inspecting computed layouts, running the
// HTTP API server, and managing the local artifact cache. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - convert: Turn a flow document into BPMN, SVG, Mermaid, DOT, PNG, or JSON
//   - layout: Compute and dump the swimlane layout without rendering
//   - serve: Run the HTTP conversion API
//   - cache: Manage the local artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// lives on the CLI struct and is shared by all commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/laneflow/pkg/buildinfo"
	"github.com/matzehuels/laneflow/pkg/cache"
	"github.com/matzehuels/laneflow/pkg/config"
	"github.com/matzehuels/laneflow/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "laneflow"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "LaneFlow converts flow documents into swimlane diagrams",
		Long:         `LaneFlow is a CLI tool for converting role-based flow documents into BPMN 2.0 diagrams, SVGs, Mermaid charts, and Graphviz renderings with deterministic swimlane layouts.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/laneflow/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// loadConfig resolves the configuration file: an explicit --config path
// must exist, the default path is optional.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	defaultPath, err := config.DefaultPath()
	if err != nil {
		return config.Default(), nil
	}
	return config.LoadOrDefault(defaultPath)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) ([]string, error) {
	if s == "" {
		return []string{pipeline.DefaultFormat}, nil
	}
	formats := strings.Split(s, ",")
	for i, f := range formats {
		formats[i] = strings.TrimSpace(f)
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return nil, err
	}
	return formats, nil
}

// outputPath derives the artifact path for a format. With an explicit
// output and a single format the output is used verbatim; otherwise the
// format extension is appended to the base.
func outputPath(output, input, format string, multi bool) string {
	ext := pipeline.FormatExtensions[format]
	if output != "" {
		if !multi {
			return output
		}
		return strings.TrimSuffix(output, filepath.Ext(output)) + ext
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if base == "" {
		base = "flow"
	}
	return base + ext
}

// writeArtifact writes data to path, creating parent directories.
func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
