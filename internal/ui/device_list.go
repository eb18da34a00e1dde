package ui

import (
	"fmt"
	"strings"

	"signal-filter.klederson.com/internal/bluetooth"
)

const linesPerDevice = 4 // 3 content + 1 blank

// RenderDeviceList renders the scrollable device list. The cursor row is
// always kept in view.
func RenderDeviceList(devices []*bluetooth.Device, width, height, cursor int) string {
	innerW := max(10, width-4)
	innerH := max(3, height-2)

	title := StylePanelTitle.Render(fmt.Sprintf("DEVICES [%d]", len(devices)))
	separator := StyleSeparator.Render(strings.Repeat("-", innerW))
	lines := []string{title, separator}

	if len(devices) == 0 {
		lines = append(lines, "", StyleHelp.Render(" No devices..."), StyleHelp.Render(" Waiting for scan"))
	} else {
		maxVisible := max(1, (innerH-len(lines))/linesPerDevice)
		viewStart := 0
		if cursor >= maxVisible {
			viewStart = cursor - maxVisible + 1
		}
		for i := viewStart; i < len(devices) && i < viewStart+maxVisible; i++ {
			lines = append(lines, renderDeviceEntry(devices[i], innerW, i == cursor)...)
		}
	}

	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	for len(lines) < innerH {
		lines = append(lines, "")
	}
	return StylePanelBorder.Width(width - 2).Height(innerH).Render(strings.Join(lines, "\n"))
}

func renderDeviceEntry(d *bluetooth.Device, maxW int, isCursor bool) []string {
	cursor := "  "
	if isCursor {
		cursor = ">>"
	}

	raw1 := truncRaw(fmt.Sprintf("%s %s", cursor, d.DisplayName()), maxW)
	raw2 := truncRaw(fmt.Sprintf("   %s", d.MAC), maxW)
	raw3 := truncRaw(fmt.Sprintf("   med %ddBm  raw %d  sd %d  ~%.1fm  %d/%d",
		d.Smoothed, d.RSSI, d.Noise(), d.Distance, d.Stats.Count, d.Stats.Capacity), maxW)

	if isCursor {
		return []string{
			StyleCursorRow.Render(raw1),
			StyleCursorRow.Render(raw2),
			StyleCursorRow.Render(raw3),
			"",
		}
	}
	return []string{
		StyleDeviceName.Render(raw1),
		StyleDeviceMAC.Render(raw2),
		StyleDeviceRSSI.Render(raw3),
		"",
	}
}

// truncRaw pads or truncates a raw string to exactly w characters.
func truncRaw(s string, w int) string {
	if len(s) > w {
		return s[:w]
	}
	if len(s) < w {
		return s + strings.Repeat(" ", w-len(s))
	}
	return s
}
