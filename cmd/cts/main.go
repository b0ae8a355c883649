// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command cts runs the WebGPU conformance suite against the gpu package
// device.
//
// Usage:
//
//	cts [flags] [query...]
//
// Queries select cases, e.g. "webgpu:api,validation,createBuffer:*". With
// no query every case runs. Results, a summary, an expectations file and
// Prometheus metrics are written under -output. With -serve the status
// server keeps running after the run until interrupted.
//
// Exit status is 0 when no case failed unexpectedly, 1 when some did and
// 2 for usage errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/gputypes"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/gogpu/cts"
	"github.com/gogpu/cts/config"
	"github.com/gogpu/cts/devicepool"
	"github.com/gogpu/cts/gpu"
	"github.com/gogpu/cts/metrics"
	"github.com/gogpu/cts/query"
	"github.com/gogpu/cts/report"
	"github.com/gogpu/cts/runner"
	"github.com/gogpu/cts/server"
	"github.com/gogpu/cts/suites/webgpu"
	"github.com/gogpu/cts/testgroup"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "cts: %v\n", err)
		return exitUsage
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "cts: failed to init logger: %v\n", err)
		return exitUsage
	}
	defer func() { _ = logger.Sync() }()
	cts.SetLogger(slogFor(logger))
	defer cts.SetLogger(nil)

	queries := make([]query.Query, 0, len(cfg.Queries))
	for _, s := range cfg.Queries {
		q, err := query.Parse(s)
		if err != nil {
			fmt.Fprintf(stderr, "cts: %v\n", err)
			return exitUsage
		}
		queries = append(queries, q)
	}

	reg := testgroup.NewRegistry()
	webgpu.Register(reg)

	if cfg.ListOnly {
		return list(reg, queries, stdout, logger)
	}

	var expectations []report.Expectation
	if cfg.ExpectationsFile != "" {
		expectations, err = readExpectations(cfg.ExpectationsFile)
		if err != nil {
			logger.Error("failed to read expectations", zap.Error(err))
			return exitUsage
		}
	}

	adapter := describeAdapter(cfg, logger)

	pool := devicepool.New(devicepool.HeadlessFactory{
		Available: cfg.Features,
		Options:   []gpu.Option{gpu.WithBackend(cfg.BackendType())},
	}, devicepool.WithMaxDevices(cfg.Devices))
	defer pool.Close()

	collector := metrics.NewCollector()
	opts := []runner.Option{
		runner.WithRunID(cfg.RunID),
		runner.WithParallelism(cfg.Parallelism),
		runner.WithCaseTimeout(cfg.CaseTimeout),
		runner.WithDebug(cfg.Debug),
		runner.WithExpectations(expectations),
		runner.WithSink(collector.Observe),
	}

	var status *statusServer
	if cfg.ServeAddr != "" {
		status = startServer(cfg, collector, logger)
		defer status.shutdown(logger)
		opts = append(opts, runner.WithSink(status.srv.Publish))
	}

	result, runErr := runner.New(reg, pool, opts...).Run(ctx, queries...)
	if result == nil {
		logger.Error("run failed", zap.Error(runErr))
		return exitFail
	}
	if runErr != nil {
		logger.Warn("run interrupted", zap.Error(runErr))
	}
	result.Adapter = adapter
	collector.ObserveRun(result)

	if err := writeArtifacts(cfg, result, collector); err != nil {
		logger.Error("failed to write artifacts", zap.Error(err))
		return exitFail
	}

	summary := result.Summary()
	logger.Info("run complete",
		zap.String("run", result.RunID),
		zap.Int("cases", summary.Total),
		zap.Int("failed", summary.Fail),
		zap.Duration("duration", result.Duration),
		zap.String("artifacts", cfg.OutputDir))
	if err := summary.Print(stdout, language.English); err != nil {
		logger.Warn("failed to print summary", zap.Error(err))
	}

	if status != nil && runErr == nil {
		logger.Info("serving results until interrupted", zap.String("addr", cfg.ServeAddr))
		<-ctx.Done()
	}

	if runErr != nil || result.Failed() {
		return exitFail
	}
	return exitOK
}

func list(reg *testgroup.Registry, queries []query.Query, stdout io.Writer, logger *zap.Logger) int {
	for cs, err := range reg.Cases(queries...) {
		if err != nil {
			logger.Error("failed to expand cases", zap.Error(err))
			return exitFail
		}
		fmt.Fprintln(stdout, cs.ID.String())
	}
	return exitOK
}

func readExpectations(path string) ([]report.Expectation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return report.ReadExpectations(f)
}

// describeAdapter returns the adapter devices will be opened on, or nil if
// there is none.
func describeAdapter(cfg *config.Config, logger *zap.Logger) *report.Adapter {
	var (
		info gputypes.AdapterInfo
		err  error
	)
	if backend := cfg.BackendType(); backend == gputypes.BackendEmpty {
		info, err = openedAdapter(backend)
	} else {
		info, err = gpu.ProbeAdapter()
	}
	if err != nil {
		logger.Warn("no adapter", zap.String("backend", cfg.Backend), zap.Error(err))
		return nil
	}
	return &report.Adapter{
		Name:    info.Name,
		Vendor:  info.Vendor,
		Type:    info.DeviceType.String(),
		Backend: cfg.Backend,
	}
}

// openedAdapter opens a throwaway device to read its adapter info.
func openedAdapter(b gputypes.Backend) (gputypes.AdapterInfo, error) {
	dev, err := gpu.Open(gpu.WithBackend(b), gpu.WithLabel("probe"))
	if err != nil {
		return gputypes.AdapterInfo{}, err
	}
	defer dev.Destroy()
	return dev.AdapterInfo(), nil
}

func writeArtifacts(cfg *config.Config, result *report.Run, collector *metrics.Collector) error {
	w, err := report.NewWriter(cfg.OutputDir)
	if err != nil {
		return err
	}
	if err := w.WriteRun(result); err != nil {
		return err
	}
	if cfg.MetricsEnabled {
		return collector.Write(cfg.MetricsPath)
	}
	return nil
}

type statusServer struct {
	srv  *server.Server
	http *http.Server
}

func startServer(cfg *config.Config, collector *metrics.Collector, logger *zap.Logger) *statusServer {
	srv := server.New(collector)
	srv.Begin(cfg.RunID)
	hs := &http.Server{
		Addr:              cfg.ServeAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server failed", zap.Error(err))
		}
	}()
	logger.Info("status server listening", zap.String("addr", cfg.ServeAddr))
	return &statusServer{srv: srv, http: hs}
}

func (s *statusServer) shutdown(logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.srv.Close()
	if err := s.http.Shutdown(ctx); err != nil {
		logger.Warn("status server shutdown", zap.Error(err))
	}
}
