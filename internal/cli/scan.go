package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archviews/pkg/analysis"
	"github.com/matzehuels/archviews/pkg/analysis/manifest"
	"github.com/matzehuels/archviews/pkg/errors"
	"github.com/matzehuels/archviews/pkg/pipeline"
)

// scanCommand creates the scan command, which snapshots an analysed code base
// into a solution file that can be curated by hand.
func (c *CLI) scanCommand() *cobra.Command {
	var (
		provider string
		output   string
		name     string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Write a solution file from an analysed code base",
		Example: `  archviews scan . --provider go -o shop.toml
  archviews scan . --provider go --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := pipeline.Options{Solution: args[0], Provider: provider}
			src, err := pipeline.SelectSource(opts)
			if err != nil {
				return err
			}

			f := manifest.Format(strings.ToLower(format))
			if output != "" && format == "" {
				if detected, ok := manifest.FormatOf(output); ok {
					f = detected
				}
			}
			if f == "" {
				f = manifest.FormatTOML
			}
			if f != manifest.FormatTOML && f != manifest.FormatYAML {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid solution format: %s (must be 'toml' or 'yaml')", format)
			}

			spinner := newSpinnerWithContext(ctx, "Scanning "+args[0]+"...")
			spinner.Start()
			p, err := analysis.Open(ctx, src, args[0])
			spinner.Stop()
			if err != nil {
				return err
			}
			if name == "" {
				name = solutionName(args[0])
			}
			data, err := manifest.FromProvider(name, p).Encode(f)
			if err != nil {
				return errors.Wrap(errors.ErrCodeExportFailed, err, "encode solution")
			}

			if output == "" {
				_, err := stdout.Write(data)
				return err
			}
			if err := writeArtifact(output, data); err != nil {
				return err
			}
			printSuccess("Wrote solution %s", StyleHighlight.Render(name))
			printFile(output)
			printNextStep("Render it", "archviews render "+output)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "analysis provider (default: detected)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&name, "name", "", "solution name (default: directory name)")
	cmd.Flags().StringVar(&format, "format", "", "toml or yaml (default: from the output extension, else toml)")

	return cmd
}

// solutionName derives a display name from a solution path such as "."
// or "services/shop/go.mod".
func solutionName(path string) string {
	path = strings.TrimSuffix(path, "...")
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}
	return filepath.Base(abs)
}
