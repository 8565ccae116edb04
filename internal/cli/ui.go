package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
const (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Styles used across commands.
var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleInfo    = lipgloss.NewStyle().Foreground(colorBlue)

	styleKey   = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	styleValue = lipgloss.NewStyle().Foreground(colorGray)
	styleDim   = lipgloss.NewStyle().Foreground(colorDim)
	styleFile  = lipgloss.NewStyle().Foreground(colorCyan).Underline(true)
)

// Icons.
const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconDetail  = "›"
	iconArrow   = "→"
)

func printSuccess(format string, args ...any) {
	fmt.Printf("%s %s\n", styleSuccess.Render(iconSuccess), fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Printf("%s %s\n", styleError.Render(iconError), fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Printf("%s %s\n", styleWarning.Render(iconWarning), fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Printf("%s %s\n", styleInfo.Render(iconArrow), fmt.Sprintf(format, args...))
}

func printDetail(format string, args ...any) {
	fmt.Printf("  %s %s\n", styleDim.Render(iconDetail), styleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(label, path string) {
	fmt.Printf("  %s %s %s\n", styleDim.Render(iconDetail), styleKey.Render(label+":"), styleFile.Render(path))
}

func printKeyValue(key, format string, args ...any) {
	fmt.Printf("  %s %s\n", styleKey.Render(key+":"), styleValue.Render(fmt.Sprintf(format, args...)))
}

// printStats prints aligned key/value rows under a title.
func printStats(title string, rows [][2]string) {
	fmt.Println(styleTitle.Render(title))
	width := 0
	for _, r := range rows {
		if len(r[0]) > width {
			width = len(r[0])
		}
	}
	for _, r := range rows {
		pad := strings.Repeat(" ", width-len(r[0]))
		fmt.Printf("  %s%s  %s\n", styleKey.Render(r[0]), pad, styleValue.Render(r[1]))
	}
}
