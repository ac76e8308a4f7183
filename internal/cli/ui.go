package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cellsolve/pkg/cell"
	"github.com/matzehuels/cellsolve/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorTeal  = lipgloss.Color("36")  // headings, spinner
	colorGreen = lipgloss.Color("35")  // success, cache hits
	colorAmber = lipgloss.Color("220") // warnings, fixed cells
	colorRed   = lipgloss.Color("167") // errors, unresolved boxes
	colorSky   = lipgloss.Color("75")  // frozen cells
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorTeal)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorAmber)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorAmber)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)

	styleCached     = lipgloss.NewStyle().Foreground(colorGreen)
	styleSolved     = lipgloss.NewStyle().Foreground(colorGray)
	styleFrozen     = lipgloss.NewStyle().Foreground(colorSky)
	styleFixed      = lipgloss.NewStyle().Foreground(colorAmber)
	styleUnresolved = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written artifact path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Layout Formatting
// =============================================================================

// reuseLabel renders a cell's reuse state, or "" for plain cells.
func reuseLabel(r cell.Reuse) string {
	switch r {
	case cell.ReuseFrozen:
		return styleFrozen.Render("frozen")
	case cell.ReuseFixed:
		return styleFixed.Render("fixed")
	default:
		return ""
	}
}

// formatBox renders a cell's box and size, or "unresolved".
func formatBox(c *cell.Cell) (box, size string) {
	b, ok := c.Box()
	if !ok {
		return styleUnresolved.Render("unresolved"), ""
	}
	return b.String(), fmt.Sprintf("%d × %d", b.Width(), b.Height())
}

// solveSummary is the one-line digest printed after a solve, e.g.
// "12 cells · 9 shapes · OPTIMAL in 40ms · solved".
func solveSummary(res *pipeline.Result) string {
	parts := []string{
		fmt.Sprintf("%d cells", res.Stats.Cells),
		fmt.Sprintf("%d shapes", res.Stats.Shapes),
	}
	if res.Solve != nil {
		parts = append(parts, fmt.Sprintf("%s in %s", res.Solve.Status, res.Solve.Elapsed.Round(time.Millisecond)))
	}
	sep := StyleDim.Render(" · ")
	line := StyleDim.Render(strings.Join(parts, " · "))
	if res.CacheInfo.LayoutHit {
		return line + sep + styleCached.Render("cached")
	}
	return line + sep + styleSolved.Render("solved")
}
