package ui

import (
	"strings"
	"testing"
)

func TestSetTheme(t *testing.T) {
	saved := GetCurrentTheme()
	defer SetCurrentTheme(saved)

	tests := []struct {
		name string
		want string
	}{
		{"light", "light"},
		{"none", "none"},
		{"dark", "dark"},
		{"solarized", "dark"},
	}
	for _, tt := range tests {
		SetTheme(tt.name)
		if got := GetCurrentTheme().Name; got != tt.want {
			t.Errorf("SetTheme(%q) selected %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestInitTheme(t *testing.T) {
	saved := GetCurrentTheme()
	defer SetCurrentTheme(saved)

	InitTheme(true)
	if GetCurrentTheme().Name != "none" {
		t.Errorf("--no-color should select the none theme, got %q", GetCurrentTheme().Name)
	}

	t.Setenv("NO_COLOR", "1")
	InitTheme(false)
	if GetCurrentTheme().Name != "none" {
		t.Errorf("NO_COLOR should select the none theme, got %q", GetCurrentTheme().Name)
	}
}

func TestRenderHelpers(t *testing.T) {
	saved := GetCurrentTheme()
	defer SetCurrentTheme(saved)
	SetCurrentTheme(NoColorTheme)

	tests := []struct {
		got  string
		want string
	}{
		{CommandHeader("git checkout abc12345"), "▶ git checkout abc12345"},
		{StateHeader("BuildingControl"), "● BuildingControl"},
		{SuccessLine("done"), "✔ done"},
		{WarningLine("busy"), "! busy"},
		{ErrorLine("failed"), "✘ failed"},
		{Dim("x"), "x"},
		{Accent("http://localhost:4200"), "http://localhost:4200"},
	}
	for _, tt := range tests {
		if strings.TrimSpace(tt.got) != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
