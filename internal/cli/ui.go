package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/chazu/keebgen/internal/app"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+styleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+styleValue.Render(value))
}

// =============================================================================
// Build Summary
// =============================================================================

// printBuild writes the column table, seam rule counts and validation
// findings of a build.
func printBuild(w io.Writer, b *app.Build) {
	kb := b.Keyboard
	fmt.Fprintln(w, styleTitle.Render("Keyboard"))
	printKeyValue(w, "columns", strconv.Itoa(len(kb.Columns())))
	printKeyValue(w, "parts", strconv.Itoa(kb.Len()))
	printKeyValue(w, "graph nodes", strconv.Itoa(b.Graph.NodeCount()))
	fmt.Fprintln(w)
	fmt.Fprintln(w, columnTable(b))
	fmt.Fprintln(w, seamTable(b))

	if b.Validation.OK() && len(b.Validation.Warnings) == 0 {
		printSuccess(w, "assembly graph valid")
	}
	for _, e := range b.Validation.Errors {
		printError(w, "%s", e.Error())
	}
	for _, warn := range b.Validation.Warnings {
		printWarning(w, "%s", warn.String())
	}
}

func columnTable(b *app.Build) *table.Table {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	var rows [][]string
	for i, name := range b.Keyboard.Columns() {
		col, _ := b.Keyboard.Column(name)
		r := col.Rows()
		finger := ""
		if i < len(b.Config.Fingers) {
			finger = b.Config.Fingers[i].Name
		}
		ccfg, _ := b.Config.ColumnConfig(i)
		rows = append(rows, []string{
			name,
			finger,
			fmt.Sprintf("%d..%d", r[0], r[len(r)-1]),
			strconv.Itoa(len(r)),
			strconv.FormatFloat(ccfg.Radius, 'f', -1, 64),
			strconv.Itoa(len(col.Connectors())),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Column", "Finger", "Rows", "Keys", "Radius", "Connectors").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col >= 3 {
				return cellStyle.Foreground(colorCyan)
			}
			return cellStyle
		})
}

func seamTable(b *app.Build) *table.Table {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	counts := map[string]int{}
	for _, s := range b.Keyboard.Stitches() {
		counts[s.Rule]++
	}
	rules := make([]string, 0, len(counts))
	for r := range counts {
		rules = append(rules, r)
	}
	sort.Strings(rules)

	rows := make([][]string, 0, len(rules)+1)
	for _, r := range rules {
		rows = append(rows, []string{r, strconv.Itoa(counts[r])})
	}
	rows = append(rows, []string{"total", strconv.Itoa(len(b.Keyboard.Stitches()))})

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Seam rule", "Connectors").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case row == len(rows)-1:
				return cellStyle.Bold(true)
			case col == 1:
				return cellStyle.Foreground(colorCyan)
			}
			return cellStyle
		})
}
