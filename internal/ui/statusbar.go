package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar. A non-empty lastErr is shown
// in place of the hint text.
func RenderStatusBar(width int, scanning bool, total, window int, lastErr string) string {
	status := StyleStatusPaused.Render("[PAUSED]")
	if scanning {
		status = StyleStatusScanning.Render("[SCANNING]")
	}

	info := fmt.Sprintf(" Devices: %d  Window: %d samples  Smoothing: median", total, window)
	content := status + StyleStatusBar.Render(info)
	if lastErr != "" {
		content += "  " + StyleStatusError.Render(lastErr)
	}

	gap := max(0, width-2-lipgloss.Width(content))
	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}
