// Package export writes event reports to disk for the rankings CLI.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/okian/fwtrank/internal/domain/report"
	"github.com/okian/fwtrank/pkg/logger"
)

// ReportSource builds the report of an event.
type ReportSource interface {
	AthleteData(ctx context.Context, eventID string) (report.EventReport, error)
}

// SafeEventName keeps letters, digits, spaces, dashes and underscores of
// name, trims it and turns spaces into underscores.
func SafeEventName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
	if safe == "" {
		return "Event"
	}
	return safe
}

// FileName returns the report file name of eventName generated at t.
func FileName(eventName string, t time.Time) string {
	return fmt.Sprintf("%s_Rankings_%s.json", SafeEventName(eventName), t.Format("20060102_1504"))
}

// Write stores r as indented JSON in dir and returns the file path.
func Write(dir string, r report.EventReport, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteReport, err)
	}
	body, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteReport, err)
	}
	path := filepath.Join(dir, FileName(r.EventName, now))
	if err := os.WriteFile(path, append(body, '\n'), reportPermission); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteReport, err)
	}
	return path, nil
}

// Run builds the report of cfg.EventID and writes it to cfg.OutputDir.
func Run(ctx context.Context, cfg *Config, src ReportSource, now func() time.Time) (string, error) {
	if strings.TrimSpace(cfg.EventID) == "" {
		return "", ErrMissingEvent
	}
	if now == nil {
		now = time.Now
	}
	start := now()
	log := logger.Named("export")
	log.Info(ctx, "building rankings report",
		logger.String("event_id", cfg.EventID),
		logger.String("output_dir", cfg.OutputDir))

	r, err := src.AthleteData(ctx, cfg.EventID)
	if err != nil {
		return "", fmt.Errorf("build report: %w", err)
	}
	path, err := Write(cfg.OutputDir, r, start)
	if err != nil {
		return "", err
	}
	log.Info(ctx, "rankings report written",
		logger.String("event", r.EventName),
		logger.Int("athletes", len(r.Athletes)),
		logger.String("file", path),
		logger.Duration("took", now().Sub(start)))
	return path, nil
}
