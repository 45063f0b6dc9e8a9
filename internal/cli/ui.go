package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Colors and Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle renders blueprint names and headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight renders names inside status lines.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleRendered    = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// Status Lines
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// status is an icon with its color; the message style is optional.
type status struct {
	icon    string
	color   lipgloss.Color
	message *lipgloss.Style
}

var (
	statusSuccess = status{icon: iconSuccess, color: colorGreen}
	statusError   = status{icon: iconError, color: colorRed}
	statusWarning = status{icon: iconWarning, color: colorYellow, message: &StyleWarning}
	statusInfo    = status{icon: iconInfo, color: colorGray}
)

func (s status) print(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if s.message != nil {
		msg = s.message.Render(msg)
	}
	fmt.Println(lipgloss.NewStyle().Foreground(s.color).Render(s.icon) + " " + msg)
}

func printSuccess(format string, args ...any) { statusSuccess.print(format, args...) }
func printError(format string, args ...any)   { statusError.print(format, args...) }
func printWarning(format string, args ...any) { statusWarning.print(format, args...) }
func printInfo(format string, args ...any)    { statusInfo.print(format, args...) }

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value in an aligned column.
func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints the brick and layer counts of a render and whether the
// images came from the cache. Zero counts are left out.
func printStats(bricks, layers int, cached bool) {
	var parts []string
	if bricks > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d bricks", bricks)))
	}
	if layers > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d layers", layers)))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleRendered.Render("rendered"))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}
