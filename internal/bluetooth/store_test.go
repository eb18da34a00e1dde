package bluetooth

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tea "github.com/charmbracelet/bubbletea"
	ble "tinygo.org/x/bluetooth"

	"signal-filter.klederson.com/internal/queue"
)

func newTestStore(t *testing.T, window int) *DeviceStore {
	t.Helper()
	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	s, err := NewDeviceStore(window, log)
	require.NoError(t, err)
	return s
}

func TestDeviceStoreSmoothsWithMedian(t *testing.T) {
	s := newTestStore(t, 5)
	for _, rssi := range []int16{-60, -61, -20, -59, -60} {
		require.NoError(t, s.Upsert("AA", "probe", rssi))
	}

	devs := s.Snapshot()
	require.Len(t, devs, 1)
	d := devs[0]
	assert.Equal(t, "probe", d.Name)
	assert.Equal(t, int16(-60), d.RSSI)
	assert.Equal(t, int64(-60), d.Smoothed, "spike must not move the median")
	assert.Equal(t, 5, d.Stats.Count)
	assert.Equal(t, int64(-20), d.Stats.Max)
	assert.InDelta(t, RSSIToDistance(-60, -59, 2.5), d.Distance, 1e-9)

	hist, ok := s.History("AA")
	require.True(t, ok)
	assert.Equal(t, []int64{-60, -61, -20, -59, -60}, hist)
	assert.Equal(t, "Filter 5/5 [-60 -61 -20 -59 -60]", s.Describe("AA"))
}

func TestDeviceStoreKeepsName(t *testing.T) {
	s := newTestStore(t, 3)
	require.NoError(t, s.Upsert("AA", "probe", -50))
	require.NoError(t, s.Upsert("AA", "", -51))
	assert.Equal(t, "probe", s.Snapshot()[0].Name)
}

func TestDeviceStoreWindowValidation(t *testing.T) {
	s := newTestStore(t, 3)
	require.NoError(t, s.Upsert("AA", "", -50))
	assert.ErrorIs(t, s.Resize(0), ErrWindow)
	assert.ErrorIs(t, s.Resize(queue.MaxCapacity+1), ErrWindow)
	assert.Equal(t, 3, s.Window())

	_, err := NewDeviceStore(0, logrus.New())
	assert.ErrorIs(t, err, ErrWindow)
}

func TestDeviceStoreResize(t *testing.T) {
	s := newTestStore(t, 4)
	for _, rssi := range []int16{-90, -80, -70, -60} {
		require.NoError(t, s.Upsert("AA", "", rssi))
	}
	require.NoError(t, s.Resize(2))
	assert.Equal(t, 2, s.Window())

	hist, _ := s.History("AA")
	assert.Equal(t, []int64{-70, -60}, hist)
	d := s.Snapshot()[0]
	assert.Equal(t, 2, d.Stats.Count)
	assert.Equal(t, int64(-65), d.Smoothed)

	// New devices pick up the new window.
	for _, rssi := range []int16{-1, -2, -3} {
		require.NoError(t, s.Upsert("BB", "", rssi))
	}
	hist, _ = s.History("BB")
	assert.Equal(t, []int64{-2, -3}, hist)
}

func TestDeviceStoreSnapshotOrder(t *testing.T) {
	s := newTestStore(t, 3)
	require.NoError(t, s.Upsert("weak", "", -90))
	require.NoError(t, s.Upsert("strong", "", -40))
	require.NoError(t, s.Upsert("mid", "", -60))

	var macs []string
	for _, d := range s.Snapshot() {
		macs = append(macs, d.MAC)
	}
	assert.Equal(t, []string{"strong", "mid", "weak"}, macs)
}

func TestDeviceStoreEvict(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	s, err := NewDeviceStore(3, log)
	require.NoError(t, err)

	require.NoError(t, s.Upsert("old", "", -70))
	require.NoError(t, s.Upsert("new", "", -70))
	s.devices["old"].dev.LastSeen = time.Now().Add(-time.Minute)

	assert.Equal(t, 1, s.Evict(30*time.Second))
	assert.Equal(t, 1, s.Count())
	_, ok := s.History("old")
	assert.False(t, ok)
	assert.Equal(t, "", s.Describe("old"))
	assert.Contains(t, hook.LastEntry().Message, "Filter 1/3 [-70]")
}

func TestDeviceStoreConcurrentUpsert(t *testing.T) {
	s := newTestStore(t, 8)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = s.Upsert("AA", "", int16(-40-i%20))
				_ = s.Snapshot()
			}
		}()
	}
	wg.Wait()
	d := s.Snapshot()[0]
	assert.Equal(t, 8, d.Stats.Count)
	assert.LessOrEqual(t, d.Stats.Min, d.Smoothed)
	assert.GreaterOrEqual(t, d.Stats.Max, d.Smoothed)
}

type collectSink struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (c *collectSink) Send(msg tea.Msg) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *collectSink) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func TestMockScannerEmit(t *testing.T) {
	m := NewMockScanner(4, 1)
	msgs := m.Emit(0.2)
	require.Len(t, msgs, 4)
	for _, msg := range msgs {
		assert.Len(t, msg.MAC, 17)
		assert.LessOrEqual(t, msg.RSSI, int16(0))
		assert.GreaterOrEqual(t, msg.RSSI, int16(-127))
	}
	assert.Len(t, NewMockScanner(100, 1).Emit(0), len(mockDeviceNames))
}

func TestMockScannerStartStop(t *testing.T) {
	m := NewMockScanner(2, 3)
	sink := &collectSink{}
	require.NoError(t, m.Start(sink))
	assert.Eventually(t, func() bool { return sink.len() >= 2 }, 2*time.Second, 10*time.Millisecond)
	m.Stop()
}

func TestStoreSink(t *testing.T) {
	s := newTestStore(t, 4)
	log, _ := test.NewNullLogger()
	sink := &StoreSink{Store: s, Log: log}

	sink.Send(DeviceDiscoveredMsg{MAC: "AA", Name: "probe", RSSI: -70})
	sink.Send("not a device")
	sink.Send(DeviceDiscoveredMsg{MAC: "AA", RSSI: -72})

	hist, ok := s.History("AA")
	require.True(t, ok)
	assert.Equal(t, []int64{-70, -72}, hist)
}

func TestStoreSinkLogsScanError(t *testing.T) {
	s := newTestStore(t, 4)
	log, hook := test.NewNullLogger()
	sink := &StoreSink{Store: s, Log: log}

	sink.Send(ScanErrorMsg{Err: errors.New("adapter powered off")})

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "scanner failed", hook.LastEntry().Message)
	assert.Equal(t, 0, s.Count())
}

func TestBLEScannerReportsScanError(t *testing.T) {
	sink := &collectSink{}
	sc := &BLEScanner{sink: sink}
	sc.running.Store(true)

	sc.run(func(func(*ble.Adapter, ble.ScanResult)) error {
		return errors.New("adapter powered off")
	})

	require.Len(t, sink.msgs, 1)
	msg, ok := sink.msgs[0].(ScanErrorMsg)
	require.True(t, ok)
	assert.ErrorContains(t, msg.Err, "adapter powered off")
}

func TestBLEScannerStoppedScanIsQuiet(t *testing.T) {
	sink := &collectSink{}
	sc := &BLEScanner{sink: sink}

	sc.run(func(func(*ble.Adapter, ble.ScanResult)) error {
		return errors.New("scan aborted")
	})

	assert.Empty(t, sink.msgs)
}
