// Package logging writes the per-run deploy log: one timestamped line per
// pipeline event, appended to deploy_<YYYYMMDD_HHMMSS>.log in the directory
// the command was started from.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shipit-cli/shipit/internal/constants"
)

// RunLog is a logrus logger bound to a single deployment run's log file.
type RunLog struct {
	*logrus.Logger
	file *os.File
	path string
}

// NewRunLog creates the log file for a run starting at the given time.
func NewRunLog(dir string, start time.Time) (*RunLog, error) {
	path := filepath.Join(dir, constants.LogFileName(start))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(file)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})

	return &RunLog{Logger: logger, file: file, path: path}, nil
}

// Path returns the log file path.
func (l *RunLog) Path() string {
	return l.path
}

// Close flushes and closes the log file.
func (l *RunLog) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Discard returns a RunLog that drops everything, for callers that have no
// log file (status and logs commands, tests).
func Discard() *RunLog {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &RunLog{Logger: logger}
}
