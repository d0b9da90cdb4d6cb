package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/okian/fwtrank/internal/app"
	"github.com/okian/fwtrank/internal/config"
	"github.com/okian/fwtrank/internal/export"
	"github.com/okian/fwtrank/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rankings", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		eventID = fs.String("event", "", "Liveheats event id")
		outDir  = fs.String("out", "", "Output directory for the report")
		logFile = fs.String("log", "", "Also write logs to this file")
		verbose = fs.Bool("verbose", false, "Enable verbose logging")
		help    = fs.Bool("help", false, "Show help")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		export.ShowHelp(stdout)
		return 0
	}
	if *eventID == "" {
		fmt.Fprintln(stderr, "missing -event; see -help")
		return 2
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "failed to load config:", err)
		return 1
	}
	if *outDir == "" {
		*outDir = cfg.ReportDir
	}

	closeLog, err := export.SetupLogging(*logFile, cfg.LogFormat, *verbose)
	if err != nil {
		fmt.Fprintln(stderr, "failed to setup logging:", err)
		return 1
	}
	defer func() { _ = closeLog() }()
	if !*verbose {
		_ = logger.SetLevelString(cfg.LogLevel)
	}

	// one-shot run: nothing is reused, so skip the report cache
	cfg.ReportCacheTTL = 0
	svc, err := app.NewFromConfig(cfg, logger.Get())
	if err != nil {
		fmt.Fprintln(stderr, "failed to create service:", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	path, err := export.Run(ctx, &export.Config{
		EventID:   *eventID,
		OutputDir: *outDir,
		LogFile:   *logFile,
		Verbose:   *verbose,
	}, svc, time.Now)
	if err != nil {
		fmt.Fprintln(stderr, "export failed:", err)
		return 1
	}
	fmt.Fprintln(stdout, path)
	return 0
}
