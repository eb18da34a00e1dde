package bluetooth

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"signal-filter.klederson.com/internal/config"
)

var mockDeviceNames = []string{
	"Soil Probe 01",
	"Soil Probe 02",
	"Greenhouse TH",
	"Door Sensor",
	"Tile Tracker",
	"Fitbit Charge 6",
	"AirPods Pro",
	"Beacon A3",
	"Weather Station",
	"",
}

type mockDevice struct {
	mac       string
	name      string
	baseRSSI  float64
	phase     float64
	amplitude float64
}

// MockScanner generates noisy readings for fake devices in demo mode.
// Occasional spikes stand in for multipath reflections.
type MockScanner struct {
	rng     *rand.Rand
	devices []mockDevice
	cancel  context.CancelFunc
}

// NewMockScanner creates a mock scanner with n fake devices.
func NewMockScanner(n int, seed int64) *MockScanner {
	rng := rand.New(rand.NewSource(seed))
	n = min(n, len(mockDeviceNames))
	perm := rng.Perm(len(mockDeviceNames))

	devices := make([]mockDevice, n)
	for i := range devices {
		devices[i] = mockDevice{
			mac:       randomMAC(rng),
			name:      mockDeviceNames[perm[i]],
			baseRSSI:  -40 - rng.Float64()*50, // -40 to -90 dBm
			phase:     rng.Float64() * 2 * math.Pi,
			amplitude: 2 + rng.Float64()*6,
		}
	}
	return &MockScanner{rng: rng, devices: devices}
}

// Start begins emitting readings to sink.
func (s *MockScanner) Start(sink Sink) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.loop(ctx, sink)
	return nil
}

func (s *MockScanner) loop(ctx context.Context, sink Sink) {
	ticker := time.NewTicker(config.DemoInterval)
	defer ticker.Stop()

	t := 0.0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t += config.DemoInterval.Seconds()
			for _, msg := range s.Emit(t) {
				sink.Send(msg)
			}
		}
	}
}

// Emit returns one reading per fake device at time t (seconds).
func (s *MockScanner) Emit(t float64) []DeviceDiscoveredMsg {
	out := make([]DeviceDiscoveredMsg, 0, len(s.devices))
	for _, d := range s.devices {
		rssi := d.baseRSSI + d.amplitude*math.Sin(t*0.5+d.phase) + (s.rng.Float64()-0.5)*4
		if s.rng.Float64() < config.DemoSpikeP {
			rssi += 25 * (s.rng.Float64()*2 - 1)
		}
		out = append(out, DeviceDiscoveredMsg{
			MAC:  d.mac,
			Name: d.name,
			RSSI: int16(math.Max(-127, math.Min(0, rssi))),
		})
	}
	return out
}

// Stop halts the mock scanner.
func (s *MockScanner) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func randomMAC(rng *rand.Rand) string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = byte(rng.Intn(256))
	}
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}
