package bluetooth

import (
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"tinygo.org/x/bluetooth"
)

// Sink receives discovered devices. *tea.Program satisfies it.
type Sink interface {
	Send(msg tea.Msg)
}

// Scanner is a source of DeviceDiscoveredMsg.
type Scanner interface {
	Start(sink Sink) error
	Stop()
}

// BLEScanner handles Bluetooth Low Energy scanning.
type BLEScanner struct {
	adapter *bluetooth.Adapter
	sink    Sink
	running atomic.Bool
}

// NewBLEScanner creates a scanner on the default adapter.
func NewBLEScanner() *BLEScanner {
	return &BLEScanner{
		adapter: bluetooth.DefaultAdapter,
	}
}

// Start begins BLE scanning in a goroutine. Every advertisement is forwarded
// to sink as a DeviceDiscoveredMsg.
func (s *BLEScanner) Start(sink Sink) error {
	s.sink = sink

	if err := s.adapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable BLE adapter: %w (try running with sudo or setcap cap_net_admin+ep)", err)
	}

	s.running.Store(true)
	go s.run(s.adapter.Scan)

	return nil
}

// run blocks in scan until it returns. A scan that fails while the scanner
// is still running is reported to the sink as a ScanErrorMsg.
func (s *BLEScanner) run(scan func(func(*bluetooth.Adapter, bluetooth.ScanResult)) error) {
	err := scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		if !s.running.Load() {
			return
		}
		s.sink.Send(DeviceDiscoveredMsg{
			MAC:  result.Address.String(),
			Name: result.LocalName(),
			RSSI: result.RSSI,
		})
	})
	if err != nil && s.running.Load() {
		s.sink.Send(ScanErrorMsg{Err: fmt.Errorf("BLE scan: %w", err)})
	}
}

// Stop halts the BLE scanner.
func (s *BLEScanner) Stop() {
	s.running.Store(false)
	_ = s.adapter.StopScan()
}
