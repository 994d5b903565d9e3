package ui

// OutputIndent prefixes every streamed subprocess line so it reads as a
// group under its command header.
const OutputIndent = "  │ "

// CommandHeader renders the banner printed before a subprocess runs.
func CommandHeader(command string) string {
	return GetCurrentTheme().Command.Render("▶ " + command)
}

// StateHeader renders the banner printed when a run state begins.
func StateHeader(state string) string {
	return GetCurrentTheme().Header.Render("● " + state)
}

// SuccessLine renders a success message.
func SuccessLine(msg string) string {
	return GetCurrentTheme().Success.Render("✔ " + msg)
}

// WarningLine renders a warning message.
func WarningLine(msg string) string {
	return GetCurrentTheme().Warning.Render("! " + msg)
}

// ErrorLine renders a failure message.
func ErrorLine(msg string) string {
	return GetCurrentTheme().Error.Render("✘ " + msg)
}

// Dim renders secondary text.
func Dim(s string) string {
	return GetCurrentTheme().Dim.Render(s)
}

// Accent renders a highlighted value.
func Accent(s string) string {
	return GetCurrentTheme().Accent.Render(s)
}
