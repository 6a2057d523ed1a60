// Package pipeline provides the analyze → model → view → layout → export
// pipeline for archviews.
//
// The CLI commands and the HTTP server all run through this package, so every
// entry point resolves references, selects layouts and caches artifacts the
// same way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Analyze: open a solution with an analysis provider, scrape it into a
//     model and resolve deferred references
//  2. View: pick the seed element and grow a view around it
//  3. Layout: adapt the view to a render graph and run the layout engine
//  4. Render: export the laid-out graph (SVG, PDF, PNG, DOT, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
// Stages 1, 3 and 4 are cached by content hash.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Solution: "shop.toml",
//	    Seed:     "Shop.Api",
//	    Formats:  []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	a, err := runner.Analyze(ctx, opts)
//	view, err := pipeline.BuildView(a.Workspace, opts)
//	g, l, err := runner.Layout(ctx, view, view.Name, opts)
//	artifacts, err := runner.Render(ctx, g, l, opts)
package pipeline

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archviews/pkg/analysis"
	"github.com/matzehuels/archviews/pkg/cache"
	"github.com/matzehuels/archviews/pkg/errors"
	"github.com/matzehuels/archviews/pkg/export/site"
	"github.com/matzehuels/archviews/pkg/graph"
	"github.com/matzehuels/archviews/pkg/model"
	"github.com/matzehuels/archviews/pkg/render/diagram"
	"github.com/matzehuels/archviews/pkg/render/layout"
	"github.com/matzehuels/archviews/pkg/workspace"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultDepth is how many levels of children are added below the seed.
	DefaultDepth = 1

	// DefaultScale is the PNG rasterization factor.
	DefaultScale = 2.0

	// DefaultOverview names the view built when no seed element is given.
	DefaultOverview = "overview"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// Cache backend names.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheMongo = "mongo"
)

// ValidCaches is the set of supported cache backends.
var ValidCaches = map[string]bool{
	CacheNone:  true,
	CacheFile:  true,
	CacheRedis: true,
	CacheMongo: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. It is decoded from
// archviews.toml and serialized as JSON by the server.
type Options struct {
	// Analyze options
	Provider          string   `toml:"provider" json:"provider,omitempty"` // Detected from the solution when empty
	Solution          string   `toml:"solution" json:"solution"`
	Projects          []string `toml:"projects" json:"projects,omitempty"`                 // Project name globs to include
	ExcludeProjects   []string `toml:"exclude_projects" json:"exclude_projects,omitempty"` // Project name substrings to skip
	Types             []string `toml:"types" json:"types,omitempty"`                       // Type name globs to include
	ExecutableOnly    bool     `toml:"executable_only" json:"executable_only,omitempty"`
	ProjectReferences bool     `toml:"project_references" json:"project_references,omitempty"`
	IncludeExternal   bool     `toml:"include_external" json:"include_external,omitempty"`
	Strict            bool     `toml:"strict" json:"strict,omitempty"` // Fail on unresolved references
	Refresh           bool     `toml:"-" json:"refresh,omitempty"`

	// View options
	View    string `toml:"view" json:"view,omitempty"`
	Seed    string `toml:"seed" json:"seed,omitempty"`
	Depth   int    `toml:"depth" json:"depth,omitempty"`
	Related bool   `toml:"related" json:"related,omitempty"`

	// Layout options
	Font          string                           `toml:"font" json:"font,omitempty"`
	FontSize      float64                          `toml:"font_size" json:"font_size,omitempty"`
	LabelFontSize float64                          `toml:"label_font_size" json:"label_font_size,omitempty"`
	Rounded       bool                             `toml:"rounded" json:"rounded,omitempty"`
	Styles        map[model.Kind]diagram.NodeStyle `toml:"styles" json:"styles,omitempty"`
	Edge          *diagram.EdgeStyle               `toml:"edge" json:"edge,omitempty"`

	// Render options
	Formats    []string `toml:"formats" json:"formats,omitempty"`
	Scale      float64  `toml:"scale" json:"scale,omitempty"`
	Background string   `toml:"background" json:"background,omitempty"`
	Hover      bool     `toml:"hover" json:"hover,omitempty"`

	// Cache options
	Cache         string `toml:"cache" json:"-"`
	CacheDir      string `toml:"cache_dir" json:"-"`
	RedisURL      string `toml:"redis_url" json:"-"`
	MongoURI      string `toml:"mongo_uri" json:"-"`
	MongoDatabase string `toml:"mongo_database" json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `toml:"-" json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Workspace holds the resolved model and the views built from it.
	Workspace *workspace.Workspace

	// View is the view that was laid out.
	View *workspace.View

	// Resolution reports what reference resolution changed. It is zero when
	// the model came from the cache.
	Resolution model.Resolution

	// Warnings are the resolution warnings, also on a cached model.
	Warnings []graph.Warning

	// ModelHash is the content hash of the resolved model.
	ModelHash string

	// Layout is the serializable geometry of the view.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Elements          int
	Relationships     int
	ViewElements      int
	ViewRelationships int
	Warnings          int
	Strategy          string
	AnalyzeTime       time.Duration
	LayoutTime        time.Duration
	RenderTime        time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalyzeHit bool // Whether the model came from cache
	LayoutHit  bool // Whether the layout came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(sortedKeys(ValidFormats), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCache checks that a cache backend name is valid.
func ValidateCache(name string) error {
	if !ValidCaches[name] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid cache backend: %q (must be one of: %s)", name, strings.Join(sortedKeys(ValidCaches), ", "))
	}
	return nil
}

// ValidateStyles checks the shapes and arrows named by style overrides.
func ValidateStyles(styles map[model.Kind]diagram.NodeStyle, edge *diagram.EdgeStyle) error {
	for kind, s := range styles {
		switch s.Shape {
		case "", diagram.ShapeBox, diagram.ShapeEllipse, diagram.ShapeCircle, diagram.ShapeNote:
		default:
			return errors.New(errors.ErrCodeInvalidStyle, "style %s: unknown shape %q", kind, s.Shape)
		}
	}
	if edge == nil {
		return nil
	}
	for _, a := range []diagram.Arrow{edge.SourceArrow, edge.TargetArrow} {
		switch a {
		case "", diagram.ArrowNone, diagram.ArrowNormal, diagram.ArrowOpen, diagram.ArrowDiamond:
		default:
			return errors.New(errors.ErrCodeInvalidStyle, "edge style: unknown arrow %q", a)
		}
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills in zero-valued options. It is idempotent.
func (o *Options) SetDefaults() {
	if o.Depth == 0 {
		o.Depth = DefaultDepth
	}
	if o.Font == "" {
		o.Font = diagram.DefaultFontName
	}
	if o.FontSize == 0 {
		o.FontSize = diagram.DefaultFontSize
	}
	if o.LabelFontSize == 0 {
		o.LabelFontSize = diagram.DefaultLabelFontSize
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Cache == "" {
		o.Cache = CacheNone
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate applies defaults and checks every option.
func (o *Options) Validate() error {
	o.SetDefaults()
	if err := o.ValidateForAnalyze(); err != nil {
		return err
	}
	if err := o.ValidateForView(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateCache(o.Cache)
}

// ValidateForAnalyze checks the options needed to load a solution.
func (o *Options) ValidateForAnalyze() error {
	if strings.TrimSpace(o.Solution) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "solution is required")
	}
	if strings.ContainsRune(o.Solution, 0) {
		return errors.New(errors.ErrCodeInvalidPath, "solution path contains invalid characters")
	}
	if _, err := o.PopulateOptions(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForView checks the view name, seed and depth.
func (o *Options) ValidateForView() error {
	if o.Depth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "depth must not be negative: %d", o.Depth)
	}
	if o.Seed != "" {
		if err := errors.ValidateName(o.Seed); err != nil {
			return err
		}
	}
	return errors.ValidateViewName(o.ViewName())
}

// ValidateForLayout checks the font and style overrides.
func (o *Options) ValidateForLayout() error {
	if o.FontSize < 0 || o.LabelFontSize < 0 {
		return errors.New(errors.ErrCodeInvalidStyle, "font sizes must be positive")
	}
	return ValidateStyles(o.Styles, o.Edge)
}

// ViewName returns the configured view name, falling back to the slug of the
// seed name or [DefaultOverview].
func (o *Options) ViewName() string {
	switch {
	case o.View != "":
		return o.View
	case o.Seed != "":
		return site.Slug(o.Seed)
	default:
		return DefaultOverview
	}
}

// PopulateOptions builds the scrape filters from the name options.
func (o *Options) PopulateOptions() (analysis.Options, error) {
	projects, err := globs[*analysis.Project](o.Projects)
	if err != nil {
		return analysis.Options{}, err
	}
	preds := []analysis.Predicate[*analysis.Project]{projects}
	for _, s := range o.ExcludeProjects {
		preds = append(preds, analysis.NameExcludes[*analysis.Project](s))
	}
	if o.ExecutableOnly {
		preds = append(preds, analysis.ExecutableProjects)
	}
	types, err := globs[*analysis.Type](o.Types)
	if err != nil {
		return analysis.Options{}, err
	}
	return analysis.Options{
		Projects:          analysis.And(preds...),
		Types:             types,
		ProjectReferences: o.ProjectReferences,
		IncludeExternal:   o.IncludeExternal,
	}, nil
}

// globs returns a predicate matching any of patterns, or nil for none.
func globs[T fmt.Stringer](patterns []string) (analysis.Predicate[T], error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	preds := make([]analysis.Predicate[T], 0, len(patterns))
	for _, p := range patterns {
		pred, err := analysis.NameMatches[T](p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "filter %q", p)
		}
		preds = append(preds, pred)
	}
	return analysis.Or(preds...), nil
}

// Converter returns a render-graph converter configured by the layout options.
func (o *Options) Converter(engine diagram.Engine) *diagram.Converter {
	opts := []diagram.Option{
		diagram.WithFont(o.Font, o.FontSize, o.LabelFontSize),
	}
	if len(o.Styles) > 0 {
		opts = append(opts, diagram.WithNodeDecorator(diagram.KindStyles{
			Default: diagram.DefaultNodeStyle,
			ByKind:  o.Styles,
		}))
	}
	if o.Edge != nil {
		opts = append(opts, diagram.WithEdgeDecorator(*o.Edge))
	}
	if o.Rounded {
		opts = append(opts, diagram.WithPostLayout(diagram.RoundCorners))
	}
	return diagram.NewConverter(engine, opts...)
}

// ModelKeyOpts returns cache key options for the analyze stage.
func (o *Options) ModelKeyOpts(fingerprint string) cache.ModelKeyOpts {
	return cache.ModelKeyOpts{
		Fingerprint:    fingerprint,
		Projects:       strings.Join(o.Projects, ",") + "!" + strings.Join(o.ExcludeProjects, ","),
		Types:          strings.Join(o.Types, ","),
		ExecutableOnly: o.ExecutableOnly,
		References:     o.ProjectReferences,
		External:       o.IncludeExternal,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(s layout.Settings) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Engine:        s.String(),
		LabelFontSize: o.LabelFontSize,
		Rounded:       o.Rounded,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format: format,
		Theme:  o.Background,
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	if o.Hover {
		opts.Theme += "+hover"
	}
	return opts
}
