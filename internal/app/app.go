package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"signal-filter.klederson.com/internal/bluetooth"
	"signal-filter.klederson.com/internal/config"
	"signal-filter.klederson.com/internal/ui"
)

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	store   *bluetooth.DeviceStore
	scanner bluetooth.Scanner
	log     logrus.FieldLogger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	width  int
	height int

	scanning bool
	source   string
	cursor   int
	lastErr  string

	shared *shared

	// Cached snapshot
	devices []*bluetooth.Device
	history []int64
}

// New creates a new AppModel reading from scanner into store.
func New(store *bluetooth.DeviceStore, scanner bluetooth.Scanner, source string, log logrus.FieldLogger) AppModel {
	return AppModel{
		scanning: true,
		source:   source,
		shared: &shared{
			store:   store,
			scanner: scanner,
			log:     log,
		},
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		evictCmd(),
	)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		m.refresh()
		return m, tickCmd()

	case EvictMsg:
		if n := m.shared.store.Evict(config.DeviceTimeout); n > 0 {
			m.shared.log.WithField("count", n).Info("evicted stale devices")
		}
		return m, evictCmd()

	case bluetooth.DeviceDiscoveredMsg:
		if m.scanning {
			if err := m.shared.store.Upsert(msg.MAC, msg.Name, msg.RSSI); err != nil {
				m.shared.log.WithError(err).Warn("reading rejected")
				m.lastErr = err.Error()
			}
		}
		return m, nil

	case bluetooth.ScanErrorMsg:
		m.shared.log.WithError(msg.Err).Error("scanner failed")
		m.lastErr = msg.Err.Error()
		return m, nil
	}

	return m, nil
}

func (m *AppModel) refresh() {
	m.devices = m.shared.store.Snapshot()
	if m.cursor >= len(m.devices) {
		m.cursor = max(0, len(m.devices)-1)
	}
	m.history = nil
	if d := m.selected(); d != nil {
		m.history, _ = m.shared.store.History(d.MAC)
	}
}

func (m AppModel) selected() *bluetooth.Device {
	if m.cursor < 0 || m.cursor >= len(m.devices) {
		return nil
	}
	return m.devices[m.cursor]
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		m.stopScanner()
		return m, tea.Quit

	case "s", "S":
		m.scanning = true

	case "p", "P":
		m.scanning = false

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.devices)-1 {
			m.cursor++
		}

	case "home":
		m.cursor = 0

	case "end":
		if len(m.devices) > 0 {
			m.cursor = len(m.devices) - 1
		}

	case "+", "=":
		m.resize(config.WindowStep)

	case "-", "_":
		m.resize(-config.WindowStep)
	}

	m.refresh()
	return m, nil
}

func (m *AppModel) resize(delta int) {
	cur := m.shared.store.Window()
	next := min(config.MaxWindow, max(config.MinWindow, cur+delta))
	if next == cur {
		return
	}
	if err := m.shared.store.Resize(next); err != nil {
		m.lastErr = err.Error()
	}
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing signal filter..."
	}

	bodyH := max(5, m.height-2)
	listW := max(30, m.width*2/5)
	detailW := max(30, m.width-listW)

	menuBar := ui.RenderMenuBar(m.width, m.source, m.scanning)
	list := ui.RenderDeviceList(m.devices, listW, bodyH, m.cursor)
	detail := ui.RenderDetailPanel(m.selected(), detailW, bodyH, m.history)
	statusBar := ui.RenderStatusBar(m.width, m.scanning, m.shared.store.Count(),
		m.shared.store.Window(), m.lastErr)

	return ui.ComposeLayout(menuBar, list, detail, statusBar)
}

// StartScanner starts the scanner. Must be called before p.Run().
func (m *AppModel) StartScanner(p *tea.Program) error {
	return m.shared.scanner.Start(p)
}

func (m *AppModel) stopScanner() {
	if m.shared.scanner != nil {
		m.shared.scanner.Stop()
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(config.TargetFPS), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func evictCmd() tea.Cmd {
	return tea.Tick(config.EvictInterval, func(t time.Time) tea.Msg {
		return EvictMsg(t)
	})
}
