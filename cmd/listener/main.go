package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"go.uber.org/zap"

	"github.com/omochice/tcp-listener/internal/config"
	"github.com/omochice/tcp-listener/internal/driver"
	"github.com/omochice/tcp-listener/internal/logging"
	"github.com/omochice/tcp-listener/internal/receiver"
	"github.com/omochice/tcp-listener/pkg/capture"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.Defaults()
	p, err := config.NewParser("listener", &cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := p.Parse(args); err != nil {
		if errors.Is(err, arg.ErrHelp) {
			p.WriteHelp(os.Stdout)
			return 0
		}
		p.WriteUsage(os.Stderr)
		fmt.Fprintln(os.Stderr, "error:", err)
		return 2
	}

	logger, err := logging.New(cfg.DebugEnabled())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return 1
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dcfg := driver.Config{Pretty: cfg.Pretty, Logger: logger}
	if !cfg.Quiet {
		dcfg.Stdout = os.Stdout
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			logger.Error("failed to open log file", zap.String("path", cfg.LogFile), zap.Error(err))
			return 1
		}
		defer closeFile(logger, f)
		dcfg.LogFile = f
	}
	if cfg.Capture != "" {
		f, err := os.OpenFile(cfg.Capture, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Error("failed to open capture file", zap.String("path", cfg.Capture), zap.Error(err))
			return 1
		}
		defer closeFile(logger, f)
		dcfg.Capture = capture.NewWriter(f)
	}

	r, err := receiver.New(cfg.Endpoint(), receiver.WithLogger(logger))
	if err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return 1
	}

	if err := r.Serve(ctx, driver.New(dcfg)); err != nil {
		logger.Error("listener stopped", zap.Error(err))
		return 1
	}

	logger.Info("shut down")
	return 0
}

func closeFile(logger *zap.Logger, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn("failed to close file", zap.Error(err))
	}
}
