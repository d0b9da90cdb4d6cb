package export

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/fwtrank/pkg/logger"
)

// File permission constants.
const (
	logFilePermission   = 0o600
	reportPermission    = 0o644
	directoryPermission = 0o750
)

// SetupLogging configures logging to stderr and, when logFile is set, to
// that file as well. It returns a function closing the log file.
func SetupLogging(logFile, format string, verbose bool) (func() error, error) {
	closer := func() error { return nil }
	var out io.Writer = os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return closer, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, file)
		closer = file.Close
	}
	if err := logger.Init(logger.WithWriter(out), logger.WithFormat(format)); err != nil {
		_ = closer()
		return func() error { return nil }, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return closer, nil
}

// ShowHelp prints usage information for the rankings tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `FWT Rankings Export
===================

Fetches the ranking history of every athlete entered in a Liveheats event
and writes it as a JSON report.

Usage:
  go run ./cmd/rankings -event <id> [options]

Options:
  -event string
        Liveheats event id (required)
  -out string
        Output directory (default from FWTRANK_REPORT_DIR, else "reports")
  -log string
        Also write logs to this file
  -verbose
        Enable verbose logging
  -help
        Show this help message

The report is written to <out>/<EventName>_Rankings_<YYYYMMDD_HHMM>.json.
Upstream settings (organisation, retries, workers) come from the same
FWTRANK_ environment and config file as the server.

Examples:
  go run ./cmd/rankings -event 218743
  go run ./cmd/rankings -event 218743 -out /tmp/reports -verbose
`)
}
