package bluetooth

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// StoreSink feeds discovered devices straight into a DeviceStore. It is the
// headless counterpart of a tea.Program.
type StoreSink struct {
	Store *DeviceStore
	Log   logrus.FieldLogger
}

// Send stores readings and logs scanner failures. Other messages are ignored.
func (s *StoreSink) Send(msg tea.Msg) {
	switch m := msg.(type) {
	case DeviceDiscoveredMsg:
		if err := s.Store.Upsert(m.MAC, m.Name, m.RSSI); err != nil {
			s.Log.WithError(err).Warn("reading rejected")
		}
	case ScanErrorMsg:
		s.Log.WithError(m.Err).Error("scanner failed")
	}
}
