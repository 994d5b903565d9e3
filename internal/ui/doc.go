// Package ui provides theme and style support for the console output.
// It defines lipgloss styles for state banners, command headers and status
// lines, and honours --no-color and NO_COLOR.
//
// This package is designed to be a shared dependency for packages that need
// styled output, reducing coupling between orchestration and presentation.
package ui
