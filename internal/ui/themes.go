package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the styles used for console output.
type Theme struct {
	// Name is the identifier of the theme.
	Name string
	// Header styles state banners.
	Header lipgloss.Style
	// Command styles the command line echoed before its output.
	Command lipgloss.Style
	// Success indicates positive outcomes or completed states.
	Success lipgloss.Style
	// Warning is used for caution messages such as a busy host.
	Warning lipgloss.Style
	// Error indicates failures.
	Error lipgloss.Style
	// Dim is used for streamed subprocess output and secondary text.
	Dim lipgloss.Style
	// Accent highlights values (URLs, durations).
	Accent lipgloss.Style
}

var (
	// DarkTheme is optimized for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:    "dark",
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Command: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
	}

	// LightTheme is optimized for light terminal backgrounds.
	LightTheme = Theme{
		Name:    "light",
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27")),
		Command: lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("124")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("54")),
	}

	// NoColorTheme disables all styling.
	// Used when NO_COLOR is set or --no-color flag is provided.
	NoColorTheme = Theme{
		Name:    "none",
		Header:  lipgloss.NewStyle(),
		Command: lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
		Accent:  lipgloss.NewStyle(),
	}

	// currentTheme is the active theme used throughout the application.
	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// GetCurrentTheme returns the currently active theme in a thread-safe manner.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme sets the currently active theme in a thread-safe manner.
// This is primarily used for testing purposes to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme changes the active theme by name.
// Valid names are: "dark", "light", "none". Unknown names default to dark.
func SetTheme(name string) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	switch name {
	case "light":
		currentTheme = LightTheme
	case "none":
		currentTheme = NoColorTheme
	default:
		currentTheme = DarkTheme
	}
}

// InitTheme initializes the theme based on the noColor flag and environment.
// It respects the NO_COLOR environment variable (https://no-color.org/).
func InitTheme(noColor bool) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	if noColor {
		currentTheme = NoColorTheme
		return
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		currentTheme = NoColorTheme
		return
	}
	currentTheme = DarkTheme
}
