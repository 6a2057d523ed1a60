// Package cli implements the archviews command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archviews/pkg/buildinfo"
	"github.com/matzehuels/archviews/pkg/errors"
	"github.com/matzehuels/archviews/pkg/observability"
	"github.com/matzehuels/archviews/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "archviews"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Archviews draws architecture diagrams from code",
		Long:         `Archviews analyses a solution into a model of projects, classes and interfaces, builds views around chosen elements and renders them as laid-out diagrams or a static documentation site.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			observability.SetPipelineHooks(&logHooks{logger: c.Logger})
			observability.SetCacheHooks(&logHooks{logger: c.Logger})
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.siteCommand())
	root.AddCommand(c.elementsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Flags
// =============================================================================

// sourceFlags are the flags every command that loads a solution accepts.
type sourceFlags struct {
	config          string
	provider        string
	projects        []string
	excludeProjects []string
	types           []string
	executableOnly  bool
	references      bool
	external        bool
	strict          bool
	cache           string
	noCache         bool
	refresh         bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "config file (default: ./"+pipeline.ConfigFile+" if present)")
	fl.StringVar(&f.provider, "provider", "", "analysis provider: manifest, go (default: detected)")
	fl.StringSliceVar(&f.projects, "project", nil, "only include projects matching these globs")
	fl.StringSliceVar(&f.excludeProjects, "exclude-project", nil, "skip projects whose name contains these strings")
	fl.StringSliceVar(&f.types, "type", nil, "only include types matching these globs")
	fl.BoolVar(&f.executableOnly, "executable-only", false, "only include executable projects")
	fl.BoolVar(&f.references, "references", false, "draw project-to-project references")
	fl.BoolVar(&f.external, "external", false, "keep references to types outside the solution")
	fl.BoolVar(&f.strict, "strict", false, "fail on unresolved references")
	fl.StringVar(&f.cache, "cache", pipeline.CacheFile, "cache backend: none, file, redis, mongo")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fl.BoolVar(&f.refresh, "refresh", false, "re-analyze even if the model is cached")
}

// loadOptions merges the config file with the command-line flags. Flags
// override the file only when they were set explicitly.
func (c *CLI) loadOptions(cmd *cobra.Command, args []string, f *sourceFlags) (pipeline.Options, error) {
	var opts pipeline.Options
	path := f.config
	if path == "" {
		path = pipeline.FindConfig(".")
	}
	if path != "" {
		loaded, err := pipeline.LoadConfig(path)
		if err != nil {
			return opts, err
		}
		opts = loaded
		c.Logger.Debug("loaded config", "path", path)
	}

	if len(args) > 0 {
		opts.Solution = args[0]
	}
	fl := cmd.Flags()
	if fl.Changed("provider") {
		opts.Provider = f.provider
	}
	if fl.Changed("project") {
		opts.Projects = f.projects
	}
	if fl.Changed("exclude-project") {
		opts.ExcludeProjects = f.excludeProjects
	}
	if fl.Changed("type") {
		opts.Types = f.types
	}
	if fl.Changed("executable-only") {
		opts.ExecutableOnly = f.executableOnly
	}
	if fl.Changed("references") {
		opts.ProjectReferences = f.references
	}
	if fl.Changed("external") {
		opts.IncludeExternal = f.external
	}
	if fl.Changed("strict") {
		opts.Strict = f.strict
	}
	if fl.Changed("cache") || opts.Cache == "" {
		opts.Cache = f.cache
	}
	if f.noCache {
		opts.Cache = pipeline.CacheNone
	}
	opts.Refresh = f.refresh
	opts.Logger = c.Logger

	if opts.Solution == "" {
		return opts, errors.New(errors.ErrCodeInvalidInput, "no solution given and none configured in %s", pipeline.ConfigFile)
	}
	return opts, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use, backed by the cache
// selected in opts.
func (c *CLI) newRunner(ctx context.Context, opts pipeline.Options) (*pipeline.Runner, error) {
	if opts.Cache == pipeline.CacheFile && opts.CacheDir == "" {
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "error", err)
			opts.Cache = pipeline.CacheNone
		}
		opts.CacheDir = dir
	}
	store, err := pipeline.OpenCache(ctx, opts)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/archviews/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return parts
}
