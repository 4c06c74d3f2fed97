package format

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const defaultRenderWidth = 80

// glamour standard style names.
const (
	styleDark  = "dark"
	styleLight = "light"
	styleNoTTY = "notty"
	styleASCII = "ascii"
)

var (
	mdRendererMu sync.Mutex
	// Keyed by style and wrap width. WithAutoStyle is avoided: it can block on
	// terminal background queries.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// RenderMarkdown renders md for a terminal with the given wrap width and
// glamour style (see MarkdownStyle).
func RenderMarkdown(md string, width int, style string) (string, error) {
	md = strings.TrimSpace(md)
	if md == "" {
		return "", nil
	}
	if width <= 0 {
		width = defaultRenderWidth
	}
	style = MarkdownStyle(style)
	key := style + ":" + strconv.Itoa(width)

	mdRendererMu.Lock()
	defer mdRendererMu.Unlock()
	r := mdRenderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		mdRenderers[key] = rr
		r = rr
	}

	out, err := r.Render(md)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// MarkdownStyle maps a theme preference to a glamour standard style.
// NO_COLOR forces the plain style; auto (or empty) follows the terminal background.
func MarkdownStyle(theme string) string {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return styleNoTTY
	}
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case "light":
		return styleLight
	case "dark":
		return styleDark
	case "notty", "plain":
		return styleNoTTY
	case "ascii":
		return styleASCII
	}
	if lipgloss.HasDarkBackground() {
		return styleDark
	}
	return styleLight
}
