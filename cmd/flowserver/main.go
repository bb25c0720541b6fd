//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Command flowserver serves the workflow canvas API and runs workflows.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trpc.group/trpc-go/trpc-flow-go/config"
	"trpc.group/trpc-go/trpc-flow-go/executor"
	"trpc.group/trpc-go/trpc-flow-go/graph"
	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/logic"
	"trpc.group/trpc-go/trpc-flow-go/model"
	"trpc.group/trpc-go/trpc-flow-go/model/provider"
	"trpc.group/trpc-go/trpc-flow-go/server"
	"trpc.group/trpc-go/trpc-flow-go/telemetry/metric"
	"trpc.group/trpc-go/trpc-flow-go/telemetry/trace"
	"trpc.group/trpc-go/trpc-flow-go/workspace"
)

const shutdownTimeout = 10 * time.Second

var configPath = flag.String("config", "", "Path to the YAML configuration file")

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Errorf("flowserver: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	log.SetLevel(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup, err := startTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer cleanup()

	exec, err := executor.New(
		logic.New(newModel(cfg.Model)),
		executor.WithPacingDelay(cfg.Executor.PacingDelay),
		executor.WithCyclePolicy(cfg.Executor.CyclePolicy),
	)
	if err != nil {
		return err
	}
	snap, err := initialWorkflow(cfg.WorkflowFile)
	if err != nil {
		return err
	}
	ws := workspace.New(graph.New(snap.Nodes, snap.Edges), exec)
	defer ws.Close()

	srv := server.New(ws, server.WithAllowedOrigins(cfg.Server.AllowedOrigins...))
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("flowserver listening on %s", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("flowserver shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	ws.Wait()
	return nil
}

// newModel builds the configured backend. Without an API key, AI nodes
// report the missing key in their output instead of the server refusing to
// start.
func newModel(cfg config.ModelConfig) model.Model {
	if cfg.APIKey == "" {
		log.Warnf("no API key for provider %s, AI nodes will report errors", cfg.Provider)
		return model.NewUnavailable(cfg.Provider, "API key is not configured")
	}
	opts := []provider.Option{provider.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, provider.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, provider.WithTimeout(cfg.Timeout))
	}
	m, err := provider.Model(cfg.Provider, cfg.Name, opts...)
	if err != nil {
		log.Errorf("create %s model: %v", cfg.Provider, err)
		return model.NewUnavailable(cfg.Provider, err.Error())
	}
	return m
}

func initialWorkflow(path string) (*graph.Snapshot, error) {
	if path == "" {
		return graph.Default(), nil
	}
	snap, err := graph.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load workflow: %w", err)
	}
	return snap, nil
}

func startTelemetry(ctx context.Context, cfg config.TelemetryConfig) (func(), error) {
	var cleans []func() error
	if cfg.TraceEndpoint != "" {
		clean, err := trace.Start(ctx,
			trace.WithEndpoint(cfg.TraceEndpoint),
			trace.WithProtocol(cfg.Protocol),
		)
		if err != nil {
			return nil, fmt.Errorf("start tracing: %w", err)
		}
		cleans = append(cleans, clean)
	}
	if cfg.MetricEndpoint != "" {
		clean, err := metric.Start(ctx,
			metric.WithEndpoint(cfg.MetricEndpoint),
			metric.WithProtocol(cfg.Protocol),
		)
		if err != nil {
			for _, c := range cleans {
				_ = c()
			}
			return nil, fmt.Errorf("start metrics: %w", err)
		}
		cleans = append(cleans, clean)
	}
	return func() {
		for _, c := range cleans {
			if err := c(); err != nil {
				log.Warnf("telemetry shutdown: %v", err)
			}
		}
	}, nil
}
