package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/archviews/pkg/model"
	"github.com/matzehuels/archviews/pkg/pipeline"
)

// stdout receives all status output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorPurple = lipgloss.Color("141")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240")
)

// kindColors tints element kinds in tables and the picker. Kinds that are
// not listed render gray.
var kindColors = map[model.Kind]lipgloss.Color{
	model.KindProject:   colorCyan,
	model.KindClass:     colorWhite,
	model.KindInterface: colorPurple,
	model.KindPerson:    colorYellow,
	model.KindSystem:    colorBlue,
	model.KindContainer: colorGreen,
	model.KindComponent: colorGreen,
}

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// kindStyle returns the style an element kind is printed in.
func kindStyle(k model.Kind) lipgloss.Style {
	c, ok := kindColors[k]
	if !ok {
		c = colorGray
	}
	return lipgloss.NewStyle().Foreground(c)
}

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written file.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}

// =============================================================================
// Pipeline Output
// =============================================================================

// printStats prints the size of a rendered view on one line, followed by the
// pipeline stages that were served from the cache.
func printStats(elements, relationships int, hits []string) {
	parts := []string{
		fmt.Sprintf("%d elements", elements),
		fmt.Sprintf("%d relationships", relationships),
	}
	if len(hits) == 0 {
		parts = append(parts, styleComputed.Render("fresh"))
	} else {
		parts = append(parts, styleCached.Render("cached "+strings.Join(hits, ", ")))
	}
	for i := range parts {
		parts[i] = StyleDim.Render(parts[i])
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// cacheHits names the stages that hit the cache.
func cacheHits(info pipeline.CacheInfo) []string {
	var hits []string
	if info.AnalyzeHit {
		hits = append(hits, "model")
	}
	if info.LayoutHit {
		hits = append(hits, "layout")
	}
	if info.RenderHit {
		hits = append(hits, "render")
	}
	return hits
}

// printUnresolved lists the references that resolution dropped, at most
// limit of them.
func printUnresolved(lines []string, limit int) {
	if len(lines) == 0 {
		return
	}
	printWarning("%d unresolved references dropped", len(lines))
	for i, l := range lines {
		if i == limit {
			printDetail("… and %d more (use -v to see all)", len(lines)-limit)
			break
		}
		printDetail("%s", l)
	}
}
