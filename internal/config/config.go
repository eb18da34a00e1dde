package config

import "time"

const (
	// RSSI to distance estimation
	MeasuredPower = -59.0 // RSSI at 1 meter (dBm)
	PathLossExp   = 2.5   // Path loss exponent (N)

	// Filter window
	DefaultWindow = 16  // Samples kept per device
	MinWindow     = 1   // Smallest window reachable with the - key
	MaxWindow     = 256 // Largest window reachable with the + key
	WindowStep    = 4   // Window change per key press

	// Device management
	DeviceTimeout = 30 * time.Second // Remove devices not seen for this long
	EvictInterval = 5 * time.Second  // How often to run eviction

	// Display
	TargetFPS  = 10 // Snapshot refreshes per second
	SparkWidth = 48 // Max sparkline columns

	// Demo mode
	DemoInterval = 200 * time.Millisecond
	DemoSpikeP   = 0.04 // Probability of a spurious reading per emission

	// Exporter
	DefaultListen = ":9110"

	// App
	AppName    = "SIGNAL-FILTER"
	AppVersion = "1.0"
)
