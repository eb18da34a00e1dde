// Package logging configures the process logger. The terminal UI owns stdout,
// so interactive runs log to a file and headless runs log to stderr.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Setup returns a logger writing to path, or to fallback when path is empty.
// The returned closer releases the log file, if any.
func Setup(path string, fallback io.Writer, verbose bool) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: path != ""})
	log.SetLevel(logrus.InfoLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if path == "" {
		log.SetOutput(fallback)
		return log, io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return log, f, nil
}
