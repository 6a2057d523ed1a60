package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archviews/pkg/errors"
	"github.com/matzehuels/archviews/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	sourceFlags

	output     string  // output file (single format) or base path (multiple)
	formats    string  // comma-separated output formats
	view       string  // view name
	seed       string  // seed element name
	depth      int     // child levels added below the seed
	related    bool    // pull in the other ends of touching relationships
	pick       bool    // choose the seed interactively
	font       string  // label font family
	rounded    bool    // round node corners
	scale      float64 // PNG scale factor
	background string  // SVG background color
	hover      bool    // highlight on hover
}

// renderCommand creates the render command for drawing one view.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [solution]",
		Short: "Render a view of a solution as a diagram",
		Long: `Render analyses a solution, builds a view around a seed element and writes
the laid-out diagram.

Without --seed the view shows every top-level element. Formats: svg (default),
pdf, png, dot, json.`,
		Example: `  archviews render shop.toml --seed Shop.Api --related
  archviews render . --provider go -f svg,png -o docs/overview
  archviews render shop.toml --pick`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.loadOptions(cmd, args, &flags.sourceFlags)
			if err != nil {
				return err
			}
			flags.apply(cmd, &opts)
			if err := opts.Validate(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, &flags)
		},
	}

	flags.register(cmd)
	fl := cmd.Flags()
	fl.StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	fl.StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), pdf, png, dot, json (comma-separated)")
	fl.StringVar(&flags.view, "view", "", "view name (default: derived from the seed)")
	fl.StringVarP(&flags.seed, "seed", "s", "", "element the view starts from")
	fl.IntVarP(&flags.depth, "depth", "d", pipeline.DefaultDepth, "levels of children added below the seed")
	fl.BoolVar(&flags.related, "related", false, "add elements related to the view")
	fl.BoolVar(&flags.pick, "pick", false, "choose the seed element interactively")
	fl.StringVar(&flags.font, "font", "", "label font family")
	fl.BoolVar(&flags.rounded, "rounded", false, "round node corners")
	fl.Float64Var(&flags.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	fl.StringVar(&flags.background, "background", "", "SVG background color")
	fl.BoolVar(&flags.hover, "hover", false, "highlight nodes and edges on hover")
	_ = cmd.RegisterFlagCompletionFunc("seed", c.completeElements(&flags.sourceFlags))

	return cmd
}

// completeElements completes element names of the solution given on the
// command line. Analysis errors yield no suggestions.
func (c *CLI) completeElements(f *sourceFlags) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		opts, err := c.loadOptions(cmd, args, f)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		runner, err := c.newRunner(ctx, opts)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		defer runner.Close()
		a, err := runner.Analyze(ctx, opts)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var names []string
		for _, e := range a.Workspace.Model().Elements() {
			if strings.HasPrefix(e.Name, toComplete) {
				names = append(names, e.Name+"\t"+string(e.Kind()))
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

// apply copies explicitly set view, layout and render flags into opts.
func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	fl := cmd.Flags()
	if fl.Changed("format") || len(opts.Formats) == 0 {
		opts.Formats = parseFormats(f.formats)
	}
	if fl.Changed("view") {
		opts.View = f.view
	}
	if fl.Changed("seed") {
		opts.Seed = f.seed
	}
	if fl.Changed("depth") {
		opts.Depth = f.depth
	}
	if fl.Changed("related") {
		opts.Related = f.related
	}
	if fl.Changed("font") {
		opts.Font = f.font
	}
	if fl.Changed("rounded") {
		opts.Rounded = f.rounded
	}
	if fl.Changed("scale") {
		opts.Scale = f.scale
	}
	if fl.Changed("background") {
		opts.Background = f.background
	}
	if fl.Changed("hover") {
		opts.Hover = f.hover
	}
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, flags *renderFlags) error {
	runner, err := c.newRunner(ctx, opts)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Analyzing "+opts.Solution+"...")
	spinner.Start()
	a, analyzeHit, err := runner.AnalyzeWithCacheInfo(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	printUnresolved(pipeline.Unresolved(a.Warnings), 5)

	if flags.pick {
		seed, err := pickElement(a.Workspace.Model())
		if err != nil {
			return err
		}
		if seed == nil {
			printInfo("No element selected")
			return nil
		}
		opts.Seed = seed.Name
	}

	view, err := pipeline.BuildView(a.Workspace, opts)
	if err != nil {
		return err
	}

	spinner = newSpinnerWithContext(ctx, "Laying out "+view.Name+"...")
	spinner.Start()
	g, l, layoutHit, err := runner.LayoutWithCacheInfo(ctx, view, view.Name, opts)
	if err != nil {
		spinner.Stop()
		return err
	}
	spinner.SetMessage("Rendering " + strings.Join(opts.Formats, ", ") + "...")
	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, g, l, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	paths := outputPaths(flags.output, view.Name, opts.Formats)
	written := make([]string, 0, len(paths))
	for _, format := range opts.Formats {
		path := paths[format]
		if err := writeArtifact(path, artifacts[format]); err != nil {
			return err
		}
		written = append(written, path)
	}
	prog.done(fmt.Sprintf("Rendered %s", view.Name))

	printSuccess("Rendered view %s", StyleHighlight.Render(view.Name))
	printStats(view.Len(), len(view.Relationships()), cacheHits(pipeline.CacheInfo{
		AnalyzeHit: analyzeHit,
		LayoutHit:  layoutHit,
		RenderHit:  renderHit,
	}))
	printDetail("Layout: %s", l.Settings)
	for _, p := range written {
		printFile(p)
	}
	return nil
}

// outputPaths maps each format to its file. A single format with an explicit
// output writes exactly there; otherwise the output (or the view name) is a
// base path that receives the format as extension.
func outputPaths(output, viewName string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = viewName
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeExportFailed, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "write %s", path)
	}
	return nil
}
