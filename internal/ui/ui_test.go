package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"signal-filter.klederson.com/internal/bluetooth"
	"signal-filter.klederson.com/internal/filter"
)

func TestRenderSparkline(t *testing.T) {
	assert.Equal(t, "", RenderSparkline(nil, 10))
	assert.Equal(t, "_^", RenderSparkline([]int64{-90, -50}, 10))
	assert.Equal(t, "___", RenderSparkline([]int64{-60, -60, -60}, 10))
	assert.Equal(t, "_-^", RenderSparkline([]int64{1, 0, 2, 4}, 3))
}

func TestFormatMode(t *testing.T) {
	assert.Equal(t, "n/a", FormatMode(nil))
	assert.Equal(t, "-60 -59", FormatMode([]int64{-60, -59}))
}

func TestTruncRaw(t *testing.T) {
	assert.Equal(t, "abc  ", truncRaw("abc", 5))
	assert.Equal(t, "ab", truncRaw("abc", 2))
}

func testDevice() *bluetooth.Device {
	return &bluetooth.Device{
		MAC:      "AA:BB:CC:DD:EE:FF",
		Name:     "probe",
		RSSI:     -61,
		Smoothed: -60,
		LastSeen: time.Now(),
		Stats: filter.Summary{
			Count: 3, Capacity: 8, Mean: -60, Median: -60, Mode: []int64{-60},
			Min: -61, Max: -59, StdDev: 1,
		},
	}
}

func TestRenderDetailPanel(t *testing.T) {
	out := RenderDetailPanel(testDevice(), 50, 30, []int64{-61, -60, -59})
	assert.Contains(t, out, "3/8")
	assert.Contains(t, out, "probe")
	assert.Contains(t, out, "n/a", "sample stdev and signal are not valid")
	assert.NotContains(t, out, "Dropped")
	assert.Equal(t, 30, lipgloss.Height(out))

	out = RenderDetailPanel(nil, 50, 10, nil)
	assert.Contains(t, out, "Select a device")
}

func TestRenderDeviceList(t *testing.T) {
	out := RenderDeviceList(nil, 40, 12, 0)
	assert.Contains(t, out, "No devices")

	devs := []*bluetooth.Device{testDevice(), testDevice()}
	devs[1].Name = "second"
	out = RenderDeviceList(devs, 60, 20, 1)
	assert.Contains(t, out, ">> second")
	assert.Contains(t, out, "med -60dBm")
	assert.Equal(t, 20, lipgloss.Height(out))
}

func TestBars(t *testing.T) {
	menu := RenderMenuBar(120, "demo", true)
	assert.Contains(t, menu, "SCANNING")
	assert.Contains(t, menu, "Source: demo")

	status := RenderStatusBar(120, false, 3, 16, "")
	assert.Contains(t, status, "[PAUSED]")
	assert.Contains(t, status, "Window: 16 samples")
	assert.False(t, strings.Contains(status, "\n"))
}
