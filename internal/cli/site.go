package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archviews/pkg/export/site"
	"github.com/matzehuels/archviews/pkg/pipeline"
)

// siteCommand creates the site command exporting a Jekyll documentation site.
func (c *CLI) siteCommand() *cobra.Command {
	var (
		flags    sourceFlags
		output   string
		siteOpts site.Options
		depth    int
		related  bool
	)

	cmd := &cobra.Command{
		Use:   "site [solution]",
		Short: "Export a Jekyll site with one page per element",
		Long: `Site writes a Markdown page with Jekyll front matter for every element of
the solution, an overview page with its diagram and an index page.

With --element-diagrams every element page embeds a context diagram showing
the element, its children and its related elements.`,
		Example: `  archviews site shop.toml -o docs --title "Shop architecture"`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.loadOptions(cmd, args, &flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("depth") {
				opts.Depth = depth
			}
			if cmd.Flags().Changed("related") {
				opts.Related = related
			}
			opts.Seed, opts.View = "", ""

			runner, err := c.newRunner(ctx, opts)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			a, err := runner.Analyze(ctx, opts)
			if err != nil {
				return err
			}
			printUnresolved(pipeline.Unresolved(a.Warnings), 5)
			if _, err := pipeline.BuildView(a.Workspace, opts); err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, "Writing site...")
			spinner.Start()
			res, err := runner.ExportSite(ctx, a.Workspace, output, siteOpts, opts)
			if err != nil {
				spinner.StopWithError("Site export failed")
				return err
			}
			spinner.StopWithSuccess("Exported site to " + StyleHighlight.Render(output))
			prog.done(fmt.Sprintf("Exported %d pages", len(res.Pages)))

			printKeyValue("Pages", fmt.Sprint(len(res.Pages)))
			printKeyValue("Diagrams", fmt.Sprint(len(res.Diagrams)))
			printNewline()
			printNextStep("Preview", "cd "+filepath.Clean(output)+" && jekyll serve")
			return nil
		},
	}

	flags.register(cmd)
	fl := cmd.Flags()
	fl.StringVarP(&output, "output", "o", "site", "output directory")
	fl.StringVar(&siteOpts.Title, "title", "", "site title (default: Architecture)")
	fl.StringVar(&siteOpts.BaseURL, "base-url", "", "prefix of every generated link, e.g. /docs")
	fl.BoolVar(&siteOpts.ElementDiagrams, "element-diagrams", false, "render a context diagram per element")
	fl.IntVarP(&depth, "depth", "d", pipeline.DefaultDepth, "levels of children in the overview")
	fl.BoolVar(&related, "related", false, "add related elements to the overview")

	return cmd
}
