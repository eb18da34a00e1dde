// Package metrics exposes per-device filter statistics to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"signal-filter.klederson.com/internal/bluetooth"
)

// Source provides the devices to export.
type Source interface {
	Snapshot() []*bluetooth.Device
	Window() int
}

// Collector reads a fresh snapshot on every scrape.
type Collector struct {
	src Source

	raw     *prometheus.Desc
	median  *prometheus.Desc
	mean    *prometheus.Desc
	stdev   *prometheus.Desc
	samples *prometheus.Desc
	window  *prometheus.Desc
	devices *prometheus.Desc
}

func NewCollector(src Source) *Collector {
	labels := []string{"mac", "name"}
	return &Collector{
		src:     src,
		raw:     prometheus.NewDesc("signal_filter_rssi_raw_dbm", "Last raw RSSI reading", labels, nil),
		median:  prometheus.NewDesc("signal_filter_rssi_median_dbm", "Median RSSI over the filter window", labels, nil),
		mean:    prometheus.NewDesc("signal_filter_rssi_mean_dbm", "Mean RSSI over the filter window", labels, nil),
		stdev:   prometheus.NewDesc("signal_filter_rssi_stdev_dbm", "Population standard deviation of RSSI over the filter window", labels, nil),
		samples: prometheus.NewDesc("signal_filter_window_samples", "Samples currently held in the filter window", labels, nil),
		window:  prometheus.NewDesc("signal_filter_window_capacity", "Configured filter window", nil, nil),
		devices: prometheus.NewDesc("signal_filter_devices", "Devices currently tracked", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.raw
	ch <- c.median
	ch <- c.mean
	ch <- c.stdev
	ch <- c.samples
	ch <- c.window
	ch <- c.devices
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	devs := c.src.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.window, prometheus.GaugeValue, float64(c.src.Window()))
	ch <- prometheus.MustNewConstMetric(c.devices, prometheus.GaugeValue, float64(len(devs)))
	for _, d := range devs {
		lv := []string{d.MAC, d.Name}
		ch <- prometheus.MustNewConstMetric(c.raw, prometheus.GaugeValue, float64(d.RSSI), lv...)
		ch <- prometheus.MustNewConstMetric(c.median, prometheus.GaugeValue, float64(d.Stats.Median), lv...)
		ch <- prometheus.MustNewConstMetric(c.mean, prometheus.GaugeValue, float64(d.Stats.Mean), lv...)
		ch <- prometheus.MustNewConstMetric(c.stdev, prometheus.GaugeValue, float64(d.Stats.StdDev), lv...)
		ch <- prometheus.MustNewConstMetric(c.samples, prometheus.GaugeValue, float64(d.Stats.Count), lv...)
	}
}

// Handler serves the collector together with the Go runtime metrics on a
// private registry.
func Handler(c *Collector) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(c, collectors.NewGoCollector())
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
