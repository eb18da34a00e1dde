package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"signal-filter.klederson.com/internal/bluetooth"
	"signal-filter.klederson.com/internal/config"
)

// RenderDetailPanel renders the statistics of one device's filter window.
// A nil device yields a placeholder panel.
func RenderDetailPanel(d *bluetooth.Device, width, height int, history []int64) string {
	innerW := max(20, width-4)
	innerH := max(3, height-2)

	lines := []string{
		StylePanelTitle.Render("FILTER WINDOW"),
		StyleSeparator.Render(strings.Repeat("-", innerW)),
	}

	if d == nil {
		lines = append(lines, "", StyleHelp.Render(" Select a device"))
	} else {
		s := d.Stats
		fields := []struct{ label, value string }{
			{"Name", d.DisplayName()},
			{"MAC", d.MAC},
			{"Last", formatLastSeen(d.LastSeen)},
			{"Samples", fmt.Sprintf("%d/%d", s.Count, s.Capacity)},
			{"Raw", fmt.Sprintf("%d dBm", d.RSSI)},
			{"Median", fmt.Sprintf("%d dBm", s.Median)},
			{"Mean", fmt.Sprintf("%d dBm", s.Mean)},
			{"Mode", FormatMode(s.Mode)},
			{"Min", fmt.Sprintf("%d dBm", s.Min)},
			{"Max", fmt.Sprintf("%d dBm", s.Max)},
			{"Stdev", fmt.Sprintf("%d", s.StdDev)},
			{"Sample sd", optional(s.SampleStdDev, s.SampleValid, "")},
			{"Signal", optional(s.Signal, s.SignalValid, "%")},
			{"Distance", fmt.Sprintf("~%.1fm", d.Distance)},
		}
		for _, f := range fields {
			lines = append(lines, StyleLabel.Render(fmt.Sprintf("  %-10s", f.label))+StyleValue.Render(f.value))
		}

		if len(history) > 0 {
			lines = append(lines, "", StyleLabel.Render("  Window:"))
			lines = append(lines, "  "+StyleDeviceRSSI.Render(RenderSparkline(history, min(innerW-4, config.SparkWidth))))
		}
	}

	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	for len(lines) < innerH {
		lines = append(lines, "")
	}
	return StylePanelActive.Width(width - 2).Height(innerH).Render(strings.Join(lines, "\n"))
}

// FormatMode joins a mode set, e.g. "-60 -59".
func FormatMode(modes []int64) string {
	if len(modes) == 0 {
		return "n/a"
	}
	parts := make([]string, len(modes))
	for i, m := range modes {
		parts[i] = strconv.FormatInt(m, 10)
	}
	return strings.Join(parts, " ")
}

func optional(v int64, ok bool, unit string) string {
	if !ok {
		return "n/a"
	}
	return strconv.FormatInt(v, 10) + unit
}

// RenderSparkline draws the last width values scaled between their min and max.
func RenderSparkline(values []int64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	if len(values) > width {
		values = values[len(values)-width:]
	}
	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = min(minV, v)
		maxV = max(maxV, v)
	}
	rng := max(1, maxV-minV)

	var sb strings.Builder
	for _, v := range values {
		idx := (v - minV) * int64(len(chars)-1) / rng
		sb.WriteByte(chars[idx])
	}
	return sb.String()
}

func formatLastSeen(t time.Time) string {
	d := time.Since(t)
	if d < time.Second {
		return "now"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm ago", int(d.Minutes()))
}
