package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-filter.klederson.com/internal/bluetooth"
)

func newSource(t *testing.T) *bluetooth.DeviceStore {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	s, err := bluetooth.NewDeviceStore(4, log)
	require.NoError(t, err)
	for _, rssi := range []int16{-60, -62, -64} {
		require.NoError(t, s.Upsert("AA:BB", "probe", rssi))
	}
	return s
}

func TestCollector(t *testing.T) {
	c := NewCollector(newSource(t))

	expected := `
# HELP signal_filter_rssi_median_dbm Median RSSI over the filter window
# TYPE signal_filter_rssi_median_dbm gauge
signal_filter_rssi_median_dbm{mac="AA:BB",name="probe"} -62
# HELP signal_filter_window_samples Samples currently held in the filter window
# TYPE signal_filter_window_samples gauge
signal_filter_window_samples{mac="AA:BB",name="probe"} 3
# HELP signal_filter_window_capacity Configured filter window
# TYPE signal_filter_window_capacity gauge
signal_filter_window_capacity 4
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"signal_filter_rssi_median_dbm", "signal_filter_window_samples", "signal_filter_window_capacity")
	assert.NoError(t, err)
	assert.Equal(t, 7, testutil.CollectAndCount(c))
}

func TestHandler(t *testing.T) {
	srv := httptest.NewServer(Handler(NewCollector(newSource(t))))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `signal_filter_rssi_mean_dbm{mac="AA:BB",name="probe"} -62`)
	assert.Contains(t, string(body), "signal_filter_devices 1")
}
