package tui

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The footer chrome must stay readable on light and dark terminals, so colors
// are adaptive and faint styling is only used on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted  lipgloss.TerminalColor = ac("240", "243")
	colorError  lipgloss.TerminalColor = ac("160", "203")
	colorAccent lipgloss.TerminalColor = ac("27", "75")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError)
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAccent)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the TUI.
//
// termenv.EnvColorProfile honors CLICOLOR, which can disable colors in a TUI;
// only NO_COLOR is honored here and otherwise the terminal's capabilities win.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// Some terminals under-report; trust TERM/COLORTERM when they claim more.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") {
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}

	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures Lip Gloss's background detection.
//
// Priority:
// 1) LAZYTODO_THEME=light|dark|auto
// 2) the theme from the config file
// 3) COLORFGBG heuristic ("fg;bg")
// 4) macOS appearance
func applyThemePreference(configured string) {
	for _, v := range []string{os.Getenv("LAZYTODO_THEME"), configured} {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "light":
			lipgloss.SetHasDarkBackground(false)
			return
		case "dark":
			lipgloss.SetHasDarkBackground(true)
			return
		}
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
			return
		}
	}

	if runtime.GOOS == "darwin" {
		if dark, ok := macOSHasDarkAppearance(); ok {
			lipgloss.SetHasDarkBackground(dark)
		}
	}
}

func macOSHasDarkAppearance() (dark bool, ok bool) {
	// Prints "Dark" in dark mode; exits 1 in light mode (key missing).
	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	out, err := exec.CommandContext(ctx, "defaults", "read", "-g", "AppleInterfaceStyle").CombinedOutput()
	if ctx.Err() != nil {
		return false, false
	}
	if err == nil {
		return strings.Contains(strings.ToLower(string(out)), "dark"), true
	}
	if ee, ok := err.(*exec.ExitError); ok && ee.ExitCode() == 1 {
		return false, true
	}
	return false, false
}
