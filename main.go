package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"signal-filter.klederson.com/internal/app"
	"signal-filter.klederson.com/internal/bluetooth"
	"signal-filter.klederson.com/internal/config"
	"signal-filter.klederson.com/internal/filter"
	"signal-filter.klederson.com/internal/logging"
	"signal-filter.klederson.com/internal/metrics"
	"signal-filter.klederson.com/internal/ui"
)

var (
	flagDemo    bool
	flagWindow  int
	flagLogFile string
	flagVerbose bool
	flagListen  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "signal-filter",
		Short: "Signal Filter - rolling-window RSSI smoothing for Bluetooth sensors",
		Long: `Signal Filter scans for Bluetooth Low Energy devices and smooths each
device's RSSI over a fixed window of recent readings, showing median, mean,
mode, spread and signal stability per device.

Requires sudo or CAP_NET_ADMIN capability for real Bluetooth scanning.
Use --demo flag for demonstration mode without Bluetooth hardware.`,
		RunE:         runTUI,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().IntVar(&flagWindow, "window", config.DefaultWindow, "Samples kept per device")
	rootCmd.PersistentFlags().BoolVar(&flagDemo, "demo", false, "Use fake devices (no Bluetooth required)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "signal-filter.log", "Log file for the interactive UI")

	statsCmd := &cobra.Command{
		Use:   "stats [values...]",
		Short: "Print window statistics for integers given as arguments or on stdin",
		RunE:  runStats,
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Scan headless and serve per-device filter statistics as Prometheus metrics",
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&flagListen, "listen", config.DefaultListen, "Address for /metrics and /health")

	rootCmd.AddCommand(statsCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newScanner() (bluetooth.Scanner, string) {
	if flagDemo {
		return bluetooth.NewMockScanner(8, time.Now().UnixNano()), "demo"
	}
	return bluetooth.NewBLEScanner(), "ble"
}

func runTUI(cmd *cobra.Command, args []string) error {
	log, closer, err := logging.Setup(flagLogFile, os.Stderr, flagVerbose)
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := bluetooth.NewDeviceStore(flagWindow, log)
	if err != nil {
		return err
	}
	scanner, source := newScanner()
	model := app.New(store, scanner, source, log)

	p := tea.NewProgram(model, tea.WithAltScreen())

	if err := model.StartScanner(p); err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
		fmt.Fprintln(os.Stderr, "Bluetooth scanning requires elevated permissions.")
		fmt.Fprintln(os.Stderr, "Try one of:")
		fmt.Fprintln(os.Stderr, "  sudo ./signal-filter")
		fmt.Fprintln(os.Stderr, "  sudo setcap cap_net_admin+ep ./signal-filter")
		fmt.Fprintln(os.Stderr, "  ./signal-filter --demo    (demo mode, no hardware needed)")
		return err
	}

	log.WithFields(logrus.Fields{"source": source, "window": flagWindow}).Info("started")
	_, err = p.Run()
	return err
}

func runStats(cmd *cobra.Command, args []string) error {
	log, _, err := logging.Setup("", cmd.ErrOrStderr(), flagVerbose)
	if err != nil {
		return err
	}

	vals, err := parseValues(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(vals) == 0 {
		return errors.New("no values given")
	}

	window := len(vals)
	if cmd.Flags().Changed("window") {
		window = flagWindow
	}
	f, err := filter.New(window)
	if err != nil {
		return err
	}
	for _, v := range vals {
		if err := f.Write(v); err != nil {
			return fmt.Errorf("write %d: %w", v, err)
		}
	}
	log.Debug(f.String())

	printStats(cmd.OutOrStdout(), f)
	return nil
}

func parseValues(args []string, stdin io.Reader) ([]int64, error) {
	if len(args) == 0 {
		sc := bufio.NewScanner(stdin)
		sc.Split(bufio.ScanWords)
		for sc.Scan() {
			args = append(args, sc.Text())
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	}
	vals := make([]int64, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", a, err)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func printStats(w io.Writer, f *filter.Filter) {
	line := func(label string, v int64, err error) {
		if err != nil {
			fmt.Fprintf(w, "%-10s n/a (%v)\n", label, err)
			return
		}
		fmt.Fprintf(w, "%-10s %d\n", label, v)
	}

	fmt.Fprintf(w, "%-10s %d/%d\n", "samples", f.Len(), f.Cap())
	v, err := f.Mean()
	line("mean", v, err)
	v, err = f.Median()
	line("median", v, err)
	if modes, err := f.Mode(); err != nil {
		fmt.Fprintf(w, "%-10s n/a (%v)\n", "mode", err)
	} else {
		fmt.Fprintf(w, "%-10s %s\n", "mode", ui.FormatMode(modes))
	}
	v, err = f.Min()
	line("min", v, err)
	v, err = f.Max()
	line("max", v, err)
	v, err = f.StdDev()
	line("stdev", v, err)
	v, err = f.SampleStdDev()
	line("stdev-s", v, err)
	v, err = f.SignalPercentage()
	line("signal%", v, err)
}

func runExport(cmd *cobra.Command, args []string) error {
	log, _, err := logging.Setup("", os.Stderr, flagVerbose)
	if err != nil {
		return err
	}

	store, err := bluetooth.NewDeviceStore(flagWindow, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sink := &bluetooth.StoreSink{Store: store, Log: log}
	scanner, source := newScanner()
	if err := scanner.Start(sink); err != nil {
		return err
	}
	defer scanner.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(metrics.NewCollector(store)))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{
		Addr:              flagListen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		ticker := time.NewTicker(config.EvictInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				store.Evict(config.DeviceTimeout)
			}
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("http shutdown")
		}
	}()

	log.WithFields(logrus.Fields{"listen": flagListen, "source": source, "window": flagWindow}).Info("exporter started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}
