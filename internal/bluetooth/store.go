package bluetooth

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"signal-filter.klederson.com/internal/config"
	"signal-filter.klederson.com/internal/filter"
	"signal-filter.klederson.com/internal/queue"
)

// ErrWindow reports a window size outside 1..queue.MaxCapacity.
var ErrWindow = errors.New("invalid filter window")

func checkWindow(n int) error {
	if n < 1 || n > queue.MaxCapacity {
		return fmt.Errorf("%w: %d", ErrWindow, n)
	}
	return nil
}

type tracked struct {
	dev    Device
	filter *filter.Filter
}

// Observe refreshes the derived fields after each accepted sample. It runs
// inline with Filter.Write, so the store lock is already held.
func (t *tracked) Observe(f *filter.Filter) {
	s, err := f.Stats()
	if err != nil {
		return
	}
	t.dev.Stats = s
	t.dev.Smoothed = s.Median
	t.dev.Distance = RSSIToDistance(float64(s.Median), config.MeasuredPower, config.PathLossExp)
}

// DeviceStore is a thread-safe store of devices, each with its own RSSI
// filter window. Every read of a window happens under the same lock as the
// writes so count and samples are always seen together.
type DeviceStore struct {
	mu      sync.RWMutex
	window  int
	devices map[string]*tracked
	log     logrus.FieldLogger
}

// NewDeviceStore creates an empty store whose devices keep window samples.
func NewDeviceStore(window int, log logrus.FieldLogger) (*DeviceStore, error) {
	if err := checkWindow(window); err != nil {
		return nil, err
	}
	return &DeviceStore{
		window:  window,
		devices: make(map[string]*tracked),
		log:     log,
	}, nil
}

// Upsert records one RSSI reading for mac.
func (s *DeviceStore) Upsert(mac, name string, rssi int16) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.devices[mac]
	if !ok {
		f, err := filter.New(s.window)
		if err != nil {
			return err
		}
		t = &tracked{dev: Device{MAC: mac}, filter: f}
		f.Attach(t)
		s.devices[mac] = t
		s.log.WithField("mac", mac).Debug("tracking new device")
	}

	t.dev.RSSI = rssi
	t.dev.LastSeen = time.Now()
	if name != "" {
		t.dev.Name = name
	}
	if err := t.filter.Write(int64(rssi)); err != nil {
		return fmt.Errorf("device %s: %w", mac, err)
	}
	return nil
}

// Evict removes devices not seen within the timeout duration.
// Returns the number of evicted devices.
func (s *DeviceStore) Evict(timeout time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-timeout)
	count := 0
	for mac, t := range s.devices {
		if t.dev.LastSeen.Before(cutoff) {
			s.log.WithField("mac", mac).Debugf("evicting stale device: %s", t.filter)
			delete(s.devices, mac)
			count++
		}
	}
	return count
}

// Resize changes the window of every device, dropping their oldest samples
// when shrinking.
func (s *DeviceStore) Resize(window int) error {
	if err := checkWindow(window); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for mac, t := range s.devices {
		if err := t.filter.Resize(window); err != nil {
			return fmt.Errorf("resize %s: %w", mac, err)
		}
		t.Observe(t.filter)
	}
	s.window = window
	s.log.WithField("window", window).Info("filter window changed")
	return nil
}

// Window returns the per-device sample window.
func (s *DeviceStore) Window() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window
}

// Snapshot returns a copy of all devices, strongest smoothed RSSI first.
func (s *DeviceStore) Snapshot() []*Device {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Device, 0, len(s.devices))
	for _, t := range s.devices {
		cp := t.dev
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Smoothed != result[j].Smoothed {
			return result[i].Smoothed > result[j].Smoothed
		}
		return result[i].MAC < result[j].MAC
	})
	return result
}

// History returns the samples in mac's window, oldest first.
func (s *DeviceStore) History(mac string) ([]int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.devices[mac]
	if !ok {
		return nil, false
	}
	out := make([]int64, 0, t.filter.Len())
	for i := 0; i < t.filter.Len(); i++ {
		v, err := t.filter.Peek(i)
		if err != nil {
			break
		}
		out = append(out, v)
	}
	return out, true
}

// Describe returns the diagnostic text for mac's window.
func (s *DeviceStore) Describe(mac string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.devices[mac]; ok {
		return t.filter.String()
	}
	return ""
}

// Count returns the total number of tracked devices.
func (s *DeviceStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devices)
}
