package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archviews/pkg/model"
)

// elementRow is the listed form of an element.
type elementRow struct {
	Name   string `json:"name"`
	Alias  string `json:"alias"`
	Kind   string `json:"kind"`
	Parent string `json:"parent,omitempty"`
	URL    string `json:"url,omitempty"`
}

// elementsCommand creates the elements command listing the resolved model.
func (c *CLI) elementsCommand() *cobra.Command {
	var (
		flags  sourceFlags
		kinds  []string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "elements [solution]",
		Short: "List the elements of a solution",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.loadOptions(cmd, args, &flags)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, opts)
			if err != nil {
				return err
			}
			defer runner.Close()

			a, err := runner.Analyze(ctx, opts)
			if err != nil {
				return err
			}
			rows := elementRows(a.Workspace.Model(), kinds)
			if asJSON {
				return writeElementsJSON(stdout, rows)
			}
			fmt.Fprintln(stdout, elementsTable(rows))
			printDetail("%d of %d elements", len(rows), a.Workspace.Model().Len())
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "only list these kinds (project, class, interface, ...)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

// elementRows lists the elements of m in registration order, keeping only
// the given kinds when any are named.
func elementRows(m *model.Model, kinds []string) []elementRow {
	keep := make(map[model.Kind]bool, len(kinds))
	for _, k := range kinds {
		keep[model.Kind(k)] = true
	}
	var rows []elementRow
	for _, e := range m.Elements() {
		if len(keep) > 0 && !keep[e.Kind()] {
			continue
		}
		row := elementRow{Name: e.Name, Alias: e.Alias(), Kind: string(e.Kind()), URL: e.URL()}
		if p := e.Parent(); p != nil {
			row.Parent = p.Name
		}
		rows = append(rows, row)
	}
	return rows
}

func elementsTable(rows []elementRow) string {
	data := make([][]string, len(rows))
	for i, r := range rows {
		parent := r.Parent
		if parent == "" {
			parent = "—"
		}
		data[i] = []string{r.Name, r.Kind, parent}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Element", "Kind", "Parent").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 1:
				return kindStyle(model.Kind(data[row][1]))
			case col == 2:
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}

func writeElementsJSON(w io.Writer, rows []elementRow) error {
	if rows == nil {
		rows = []elementRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
