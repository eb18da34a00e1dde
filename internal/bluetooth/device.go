package bluetooth

import (
	"math"
	"time"

	"signal-filter.klederson.com/internal/filter"
)

// DeviceDiscoveredMsg carries one advertisement from a scanner.
type DeviceDiscoveredMsg struct {
	MAC  string
	Name string
	RSSI int16
}

// ScanErrorMsg reports a scanner that stopped with an error.
type ScanErrorMsg struct {
	Err error
}

// Device is a read-only view of a tracked device and its filtered signal.
type Device struct {
	MAC      string
	Name     string
	RSSI     int16          // Last raw reading (dBm)
	Smoothed int64          // Median of the window (dBm)
	Stats    filter.Summary // Window statistics at the last write
	Distance float64        // Estimated distance in meters from Smoothed
	LastSeen time.Time
}

// DisplayName returns the device name or "[unnamed]" if empty.
func (d *Device) DisplayName() string {
	if d.Name == "" {
		return "[unnamed]"
	}
	return d.Name
}

// Noise is the window standard deviation in dBm.
func (d *Device) Noise() int64 {
	return d.Stats.StdDev
}

// RSSIToDistance estimates distance from RSSI using the log-distance path loss model.
// Formula: d = 10^((measuredPower - rssi) / (10 * n))
func RSSIToDistance(rssi, measuredPower, pathLossExp float64) float64 {
	if rssi >= 0 {
		return 0.1
	}
	d := math.Pow(10, (measuredPower-rssi)/(10*pathLossExp))
	if d < 0.1 {
		return 0.1
	}
	return d
}
